package user_services

import (
	"context"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
)

// Logger interface for all user services
type Logger = logging.Logger

// UserFetcher resolves a bearer token to the current user.
type UserFetcher interface {
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// Authenticator covers the credential endpoints.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.TokenResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) error
}

// AuthState is the lifecycle of an AuthSession.
type AuthState int

const (
	StateUninitialized AuthState = iota
	StateChecking
	StateAuthenticated
	StateAnonymous
)

func (s AuthState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Config tunes the session.
type Config struct {
	// KeepTokenOnTransportError keeps the stored token when the user fetch
	// fails for any reason other than 401. Default false: every failure logs out.
	KeepTokenOnTransportError bool
}

// Snapshot is a copy of the session state at one instant.
type Snapshot struct {
	State     AuthState
	Token     string
	User      *domain.User
	IsLoading bool
}

// Authenticated reports a confirmed user.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}
