package user

import (
	"context"

	"github.com/iyunix/asha-chat/internal/domain"
)

// ProfileRepository caches the last fetched profile under the user key.
// It is a cache only; GET /api/users/me stays the authority.
type ProfileRepository interface {
	Save(ctx context.Context, user *domain.User) error
	Load(ctx context.Context) (*domain.User, error)
	Clear(ctx context.Context) error
}

// AccountRepository handles account records for the reference backend.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
}
