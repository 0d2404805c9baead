package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
)

// TokenResolver maps a bearer token to its user.
type TokenResolver interface {
	UserForToken(ctx context.Context, token string) (*domain.User, error)
}

// RequireBearer rejects requests without a valid "Authorization: Bearer" header
// with 401 and stores the resolved user in the request context.
func RequireBearer(resolver TokenResolver, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				logger.Debug("[AuthMiddleware] missing bearer token", "path", r.URL.Path)
				unauthorized(w)
				return
			}

			user, err := resolver.UserForToken(r.Context(), token)
			if err != nil {
				logger.Info("[AuthMiddleware] invalid token", "path", r.URL.Path, "error", err)
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
