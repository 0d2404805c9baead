// File: internal/services/ai/interface.go
package ai

import (
	"context"

	"github.com/iyunix/asha-chat/internal/domain"
)

// Responder produces the assistant reply for one chat turn.
type Responder interface {
	Reply(ctx context.Context, history []domain.Message, userInput string) (string, error)
}
