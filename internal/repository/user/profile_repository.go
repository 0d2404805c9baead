// File: internal/repository/user/profile_repository.go
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/storage"
)

var ErrNoProfile = errors.New("no cached profile")

type storeProfileRepository struct {
	store storage.Store
}

func NewProfileRepository(store storage.Store) ProfileRepository {
	return &storeProfileRepository{store: store}
}

func (r *storeProfileRepository) Save(ctx context.Context, user *domain.User) error {
	if user == nil {
		return r.Clear(ctx)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return r.store.Set(ctx, storage.KeyUser, string(raw))
}

func (r *storeProfileRepository) Load(ctx context.Context) (*domain.User, error) {
	raw, err := r.store.Get(ctx, storage.KeyUser)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &u, nil
}

func (r *storeProfileRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, storage.KeyUser)
}
