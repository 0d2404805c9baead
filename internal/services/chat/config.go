// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// RequestTimeout bounds a single /api/chat call.
	RequestTimeout time.Duration
	// RollbackOnFailure removes the optimistic user message when a send fails.
	// Off by default: the message stays so RetryLastTurn can resend it.
	RollbackOnFailure bool
	// AutoTitle renames a "New Chat" session after its first user message.
	AutoTitle     bool
	TitleMaxRunes int
}

func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.AutoTitle && c.TitleMaxRunes < 4 {
		return fmt.Errorf("title_max_runes must be at least 4")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		RequestTimeout:    60 * time.Second,
		RollbackOnFailure: false,
		AutoTitle:         true,
		TitleMaxRunes:     40,
	}
}
