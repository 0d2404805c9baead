// File: internal/middleware/constants.go
package middleware

import (
	"context"

	"github.com/iyunix/asha-chat/internal/domain"
)

// Context keys for middleware communication
type contextKey string

const UserKey contextKey = "user"

// UserFromContext returns the user set by RequireBearer.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok && u != nil
}
