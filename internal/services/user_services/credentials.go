// File: internal/services/user_services/credentials.go
package user_services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/logging"
)

// LoginInput mirrors the login form.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// RegisterInput mirrors the registration form. FullName is optional.
type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	FullName string `validate:"omitempty,max=120"`
}

// CredentialService drives the login and registration forms.
type CredentialService struct {
	authn    Authenticator
	session  *AuthSession
	validate *validator.Validate
	logger   Logger
}

func NewCredentialService(authn Authenticator, session *AuthSession, logger Logger) *CredentialService {
	return &CredentialService{
		authn:    authn,
		session:  session,
		validate: validator.New(),
		logger:   logger,
	}
}

// Login validates the form, trades the credentials for a token, and hands the
// token to the AuthSession.
func (s *CredentialService) Login(ctx context.Context, in LoginInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.check("login", in); err != nil {
		return err
	}

	s.logger.Info("user login attempt", "email", logging.MaskEmail(in.Email))
	resp, err := s.authn.Login(ctx, in.Email, in.Password)
	if err != nil {
		s.logger.Warn("login failed", "email", logging.MaskEmail(in.Email), "error", err)
		return rejected("login", "Login failed", err)
	}
	return s.session.Login(ctx, resp.AccessToken)
}

// Register creates an account. It does not log in; the caller does that next.
func (s *CredentialService) Register(ctx context.Context, in RegisterInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.check("register", in); err != nil {
		return err
	}

	req := api.RegisterRequest{Email: in.Email, Password: in.Password}
	if in.FullName != "" {
		name := in.FullName
		req.FullName = &name
	}

	s.logger.Info("user registration attempt", "email", logging.MaskEmail(in.Email))
	if err := s.authn.Register(ctx, req); err != nil {
		s.logger.Warn("registration failed", "email", logging.MaskEmail(in.Email), "error", err)
		return rejected("register", "Registration failed", err)
	}
	s.logger.Info("user registered successfully", "email", logging.MaskEmail(in.Email))
	return nil
}

func (s *CredentialService) check(operation string, in interface{}) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return NewValidationError(operation, strings.ToLower(fe.Field()), fieldMessage(fe))
	}
	return NewValidationError(operation, "", err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() + "." + fe.Tag() {
	case "Email.required", "Email.email":
		return "Invalid email address."
	case "Password.required":
		return "Password is required."
	case "Password.min":
		return "Password must be at least 8 characters."
	case "FullName.max":
		return "Full name is too long."
	}
	return fe.Error()
}

func rejected(operation, fallback string, err error) *AuthError {
	msg := fallback
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message()
	}
	return &AuthError{Type: ErrTypeRejected, Operation: operation, Message: msg, Cause: err}
}
