// File: internal/repository/token/token_repository.go
package token

import (
	"context"
	"errors"

	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/storage"
)

// Repository persists the bearer token under the authToken key.
// The token is opaque; no shape validation happens here.
type Repository interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type storeTokenRepository struct {
	store  storage.Store
	logger logging.Logger
}

func NewTokenRepository(store storage.Store, logger logging.Logger) Repository {
	return &storeTokenRepository{store: store, logger: logger}
}

// Get fails open: an unreadable store reports "no token".
func (r *storeTokenRepository) Get(ctx context.Context) (string, bool) {
	value, err := r.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("token storage unavailable, treating as logged out", "error", err)
		}
		return "", false
	}
	if value == "" {
		return "", false
	}
	return value, true
}

func (r *storeTokenRepository) Set(ctx context.Context, token string) error {
	if err := r.store.Set(ctx, storage.KeyAuthToken, token); err != nil {
		r.logger.Error("failed to persist auth token", "error", err)
		return err
	}
	return nil
}

func (r *storeTokenRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, storage.KeyAuthToken); err != nil {
		r.logger.Error("failed to clear auth token", "error", err)
		return err
	}
	return nil
}
