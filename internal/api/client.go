// File: internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
)

const (
	PathToken    = "/api/auth/token"
	PathRegister = "/api/auth/register"
	PathMe       = "/api/users/me"
	PathChat     = "/api/chat"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Client speaks the four HTTP contracts of the Asha backend.
type Client struct {
	config *Config
	client *http.Client
	logger logging.Logger
}

func NewClient(config *Config, logger logging.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, &APIError{Type: ErrTypeConfig, Operation: "config", Cause: err}
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}, nil
}

// Login exchanges credentials for a bearer token. The backend expects the
// email in the OAuth2 "username" form field.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out TokenResponse
	err := c.do(ctx, "login", http.MethodPost, PathToken, contentTypeForm,
		strings.NewReader(form.Encode()), "", &out)
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &APIError{Type: ErrTypeDecoding, Operation: "login", StatusCode: http.StatusOK,
			Cause: fmt.Errorf("response carried no access_token")}
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return &APIError{Type: ErrTypeDecoding, Operation: "register", Cause: err}
	}
	return c.do(ctx, "register", http.MethodPost, PathRegister, contentTypeJSON, bytes.NewReader(body), "", nil)
}

// CurrentUser calls GET /api/users/me. A 401 comes back as an APIError with IsUnauthorized.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, "current_user", http.MethodGet, PathMe, "", nil, token, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Messages == nil {
		req.Messages = []domain.Message{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &APIError{Type: ErrTypeDecoding, Operation: "chat", Cause: err}
	}
	var out ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, PathChat, contentTypeJSON, bytes.NewReader(body), "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader, bearer string, result interface{}) error {
	reqURL, err := url.JoinPath(c.config.BaseURL, path)
	if err != nil {
		return &APIError{Type: ErrTypeConfig, Operation: op, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return &APIError{Type: ErrTypeNetwork, Operation: op, Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "operation", op, "error", err)
		return &APIError{Type: ErrTypeNetwork, Operation: op, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Type: ErrTypeNetwork, Operation: op, StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Type:       ErrTypeHTTP,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(respBody),
		}
		c.logger.Warn("api request rejected", "operation", op, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	c.logger.Debug("api request ok", "operation", op, "status", resp.StatusCode)
	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return &APIError{Type: ErrTypeDecoding, Operation: op, StatusCode: resp.StatusCode, Cause: err}
	}
	return nil
}
