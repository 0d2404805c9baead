package chat

import (
	"context"

	"github.com/iyunix/asha-chat/internal/domain"
)

// SessionRepository persists the whole chat-session collection as one value.
type SessionRepository interface {
	Load(ctx context.Context) ([]domain.ChatSession, error)
	Save(ctx context.Context, sessions []domain.ChatSession) error
	Clear(ctx context.Context) error
}
