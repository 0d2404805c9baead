// File: internal/services/user_services/auth_session.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/repository/token"
	"github.com/iyunix/asha-chat/internal/repository/user"
)

// AuthSession owns the bearer token and the derived current user.
//
// Every token change (login, logout) bumps an epoch. A user fetch remembers the
// token and epoch it was issued for and only applies its result if both still
// match when it resolves, so Logout always wins over an in-flight fetch.
type AuthSession struct {
	mu        sync.Mutex
	state     AuthState
	token     string
	user      *domain.User
	isLoading bool
	epoch     uint64

	tokens   token.Repository
	profiles user.ProfileRepository
	fetcher  UserFetcher
	config   Config
	logger   Logger
	group    singleflight.Group
}

func NewAuthSession(tokens token.Repository, profiles user.ProfileRepository, fetcher UserFetcher, config Config, logger Logger) *AuthSession {
	return &AuthSession{
		state:     StateUninitialized,
		isLoading: true,
		tokens:    tokens,
		profiles:  profiles,
		fetcher:   fetcher,
		config:    config,
		logger:    logger,
	}
}

// Initialize reads the persisted token. Without one the session goes straight
// to Anonymous; with one it checks the token against the server.
func (s *AuthSession) Initialize(ctx context.Context) error {
	stored, ok := s.tokens.Get(ctx)

	s.mu.Lock()
	if !ok {
		s.state = StateAnonymous
		s.isLoading = false
		s.mu.Unlock()
		s.logger.Debug("no stored auth token")
		return nil
	}
	s.token = stored
	s.epoch++
	s.state = StateChecking
	s.isLoading = true
	s.mu.Unlock()

	s.logger.Debug("stored auth token found, verifying")
	return s.FetchUser(ctx)
}

// Login stores a freshly issued token and verifies it.
func (s *AuthSession) Login(ctx context.Context, newToken string) error {
	if newToken == "" {
		return NewValidationError("login", "token", "token is required")
	}
	if err := s.tokens.Set(ctx, newToken); err != nil {
		// The in-memory session still proceeds; it just won't survive a restart.
		s.logger.Warn("auth token not persisted", "error", err)
	}

	s.mu.Lock()
	s.token = newToken
	s.user = nil
	s.epoch++
	s.state = StateChecking
	s.isLoading = true
	s.mu.Unlock()

	return s.FetchUser(ctx)
}

// FetchUser asks GET /api/users/me who the current token belongs to.
func (s *AuthSession) FetchUser(ctx context.Context) error {
	s.mu.Lock()
	tok, epoch := s.token, s.epoch
	if tok == "" {
		s.user = nil
		s.isLoading = false
		s.state = StateAnonymous
		s.mu.Unlock()
		return nil
	}
	s.isLoading = true
	s.state = StateChecking
	s.mu.Unlock()

	key := fmt.Sprintf("%d:%s", epoch, tok)
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		return s.fetcher.CurrentUser(ctx, tok)
	})
	if shared {
		s.logger.Debug("user fetch coalesced with an in-flight request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch || s.token != tok {
		s.logger.Debug("discarding stale user fetch result")
		return ErrFetchSuperseded
	}

	if err == nil {
		u := v.(*domain.User)
		s.user = u
		s.state = StateAuthenticated
		s.isLoading = false
		if perr := s.profiles.Save(ctx, u); perr != nil {
			s.logger.Warn("profile cache not updated", "error", perr)
		}
		s.logger.Info("user authenticated", "user_id", u.ID, "email", logging.MaskEmail(u.Email))
		return nil
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
		s.logger.Warn("auth token invalid, logging out")
		s.logoutLocked(ctx)
		return &AuthError{Type: ErrTypeAuthInvalid, Operation: "fetch_user", Message: "session expired or invalid", Cause: err}
	}

	if s.config.KeepTokenOnTransportError {
		s.logger.Warn("user fetch failed, keeping token for a later retry", "error", err)
		s.user = nil
		s.state = StateAnonymous
		s.isLoading = false
	} else {
		s.logger.Warn("user fetch failed, logging out", "error", err)
		s.logoutLocked(ctx)
	}
	return &AuthError{Type: ErrTypeAuthTransport, Operation: "fetch_user", Message: "could not confirm the session", Cause: err}
}

// Logout clears token and user synchronously. Safe to call repeatedly.
func (s *AuthSession) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked(ctx)
}

func (s *AuthSession) logoutLocked(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Warn("stored auth token not cleared", "error", err)
	}
	if err := s.profiles.Clear(ctx); err != nil {
		s.logger.Warn("profile cache not cleared", "error", err)
	}
	if s.token != "" {
		s.epoch++
	}
	s.token = ""
	s.user = nil
	s.isLoading = false
	s.state = StateAnonymous
}

// Snapshot returns a copy of the current state.
func (s *AuthSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var u *domain.User
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	return Snapshot{State: s.state, Token: s.token, User: u, IsLoading: s.isLoading}
}

// Token returns the current bearer token, empty when logged out.
func (s *AuthSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CachedProfile returns the last confirmed profile, which may be stale.
func (s *AuthSession) CachedProfile(ctx context.Context) (*domain.User, error) {
	return s.profiles.Load(ctx)
}
