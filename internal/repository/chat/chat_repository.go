// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/storage"
)

var ErrCorruptSessions = errors.New("stored chat sessions are corrupt")

type storeSessionRepository struct {
	store  storage.Store
	logger logging.Logger
}

func NewSessionRepository(store storage.Store, logger logging.Logger) SessionRepository {
	return &storeSessionRepository{store: store, logger: logger}
}

// Load returns an empty collection when nothing was saved yet.
func (r *storeSessionRepository) Load(ctx context.Context) ([]domain.ChatSession, error) {
	raw, err := r.store.Get(ctx, storage.KeyChatSessions)
	if errors.Is(err, storage.ErrNotFound) {
		return []domain.ChatSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load chat sessions: %w", err)
	}

	var sessions []domain.ChatSession
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		r.logger.Warn("[SessionRepository] discarding unreadable chat sessions", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCorruptSessions, err)
	}
	for i := range sessions {
		if sessions[i].Messages == nil {
			sessions[i].Messages = []domain.Message{}
		}
	}
	return sessions, nil
}

// Save serializes every session with attachments stripped.
func (r *storeSessionRepository) Save(ctx context.Context, sessions []domain.ChatSession) error {
	out := make([]domain.ChatSession, len(sessions))
	for i, s := range sessions {
		out[i] = s
		out[i].Messages = domain.StripFiles(s.Messages)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode chat sessions: %w", err)
	}
	if err := r.store.Set(ctx, storage.KeyChatSessions, string(raw)); err != nil {
		r.logger.Error("[SessionRepository] failed to persist chat sessions", "error", err, "count", len(sessions))
		return err
	}
	r.logger.Debug("[SessionRepository] chat sessions saved", "count", len(sessions))
	return nil
}

func (r *storeSessionRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, storage.KeyChatSessions)
}
