// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "nvidia/llama-3.3-nemotron-super-49b-v1:free"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// SystemPrompt opens every conversation sent to the model.
	SystemPrompt string

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	Temperature float32
	TopP        float32
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		Model:        DefaultModel,
		SystemPrompt: defaultSystemPrompt,
		Timeout:      60 * time.Second,
		MaxRetries:   3,
		RetryDelay:   time.Second,
		Temperature:  0.7,
		TopP:         0.9,
	}
}

const defaultSystemPrompt = `You are Asha, a career assistant. Give friendly, professional and actionable career guidance.
Ask a follow-up question when the request is ambiguous and keep the context of the conversation.
Use gender-neutral language.`
