// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
)

// OpenAIProvider talks to any OpenAI-compatible chat completion endpoint.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
	logger logging.Logger
}

func NewOpenAIProvider(config *Config, logger logging.Logger) (*OpenAIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

func (p *OpenAIProvider) Reply(ctx context.Context, history []domain.Message, userInput string) (string, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", newEmptyInputError("reply")
	}
	req := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    p.buildMessages(history, userInput),
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
	}

	var reply string
	err := p.retryWithTimeout(ctx, func(ctx context.Context) error {
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return newUpstreamError("completion", p.config.Model, err)
		}
		if len(resp.Choices) > 0 && resp.Choices[0].FinishReason == openai.FinishReasonContentFilter {
			return &AIError{Type: ErrTypeRefused, Operation: "completion", Model: p.config.Model, Message: "stopped by content filter"}
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return &AIError{Type: ErrTypeEmptyReply, Operation: "completion", Model: p.config.Model, Message: "empty completion response"}
		}
		reply = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	return reply, err
}

func (p *OpenAIProvider) buildMessages(history []domain.Message, userInput string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if p.config.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.config.SystemPrompt})
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userInput})
}

func (p *OpenAIProvider) retryWithTimeout(ctx context.Context, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		err := call(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		var aiErr *AIError
		if errors.As(err, &aiErr) && !aiErr.Retryable() {
			return err
		}
		p.logger.Warn("[OpenAIProvider] completion attempt failed", "attempt", attempt, "max", p.config.MaxRetries, "error", err)
		if attempt < p.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * p.config.RetryDelay):
			}
		}
	}
	return lastErr
}
