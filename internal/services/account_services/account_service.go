// File: internal/services/account_services/account_service.go
package account_services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iyunix/asha-chat/internal/auth"
	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/repository/user"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrInvalidInput       = errors.New("invalid registration data")
)

// DefaultTokenTTL is the access-token lifetime when none is configured.
const DefaultTokenTTL = 30 * time.Minute

// AccountService backs the reference server's auth endpoints.
type AccountService struct {
	accounts  user.AccountRepository
	secretKey []byte
	tokenTTL  time.Duration
	logger    logging.Logger
	validate  *validator.Validate
}

func NewAccountService(accounts user.AccountRepository, secretKey string, tokenTTL time.Duration, logger logging.Logger) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AccountService{
		accounts:  accounts,
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
		logger:    logger,
		validate:  validator.New(),
	}
}

// Register creates an account. Email format and password length are checked
// again here; the client checks them too but the server is the authority.
func (s *AccountService) Register(ctx context.Context, email, password string, fullName *string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	account := &domain.Account{Email: email, FullName: fullName}
	if err := account.HashPassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.accounts.Create(ctx, account)
	if errors.Is(err, user.ErrEmailTaken) {
		s.logger.Warn("registration failed - email already registered", "email", logging.MaskEmail(email))
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return created.ToUser(), nil
}

// Login verifies the password and issues a bearer token.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed - account not found", "email", logging.MaskEmail(email))
		return "", ErrInvalidCredentials
	}
	if err := account.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "account_id", account.ID)
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(account.ID, s.secretKey, s.tokenTTL)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "account_id", account.ID)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	s.logger.Info("login successful", "account_id", account.ID)
	return token, nil
}

// UserForToken resolves a bearer token to its account.
func (s *AccountService) UserForToken(ctx context.Context, token string) (*domain.User, error) {
	id, err := auth.ValidateToken(token, s.secretKey)
	if err != nil {
		s.logger.Debug("token rejected", "error", err)
		return nil, ErrUnauthenticated
	}
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return account.ToUser(), nil
}
