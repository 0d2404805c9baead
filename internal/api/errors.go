// File: internal/api/errors.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeNetwork  ErrorType = "NETWORK"
	ErrTypeHTTP     ErrorType = "HTTP"
	ErrTypeDecoding ErrorType = "DECODING"
)

// APIError describes any failed call against the remote API.
type APIError struct {
	Type       ErrorType
	Operation  string
	StatusCode int
	// Detail is the server's "detail" message when one was sent.
	Detail string
	Cause  error
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("API %s error in %s: %s (status %d)", e.Type, e.Operation, e.Detail, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("API %s error in %s (caused by: %v)", e.Type, e.Operation, e.Cause)
	default:
		return fmt.Sprintf("API %s error in %s: status %d", e.Type, e.Operation, e.StatusCode)
	}
}

func (e *APIError) Unwrap() error { return e.Cause }

// IsUnauthorized reports a 401 from the server.
func (e *APIError) IsUnauthorized() bool {
	return e.Type == ErrTypeHTTP && e.StatusCode == http.StatusUnauthorized
}

// Message is the text shown to a user: the server detail if any, else a generic line.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Type == ErrTypeNetwork {
		return "Could not reach the server."
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("Request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "Request failed."
}

// parseDetail extracts {"detail": ...}. The server sends either a string or a
// list of validation objects carrying "msg".
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(payload.Detail)
}
