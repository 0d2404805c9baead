// File: internal/services/user_services/errors.go
package user_services

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	// ErrTypeAuthInvalid: 401 on user fetch, forced logout.
	ErrTypeAuthInvalid ErrorType = "AUTH_INVALID"
	// ErrTypeAuthTransport: any other user-fetch failure.
	ErrTypeAuthTransport ErrorType = "AUTH_TRANSPORT"
	// ErrTypeValidation: malformed login/register input, never sent.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeRejected: the server refused login or registration.
	ErrTypeRejected ErrorType = "REJECTED"
)

// ErrFetchSuperseded is returned by FetchUser when the token changed while the
// request was in flight; the result was discarded.
var ErrFetchSuperseded = errors.New("user fetch superseded by a newer auth state")

type AuthError struct {
	Type      ErrorType
	Operation string
	Field     string
	Message   string
	Cause     error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Auth %s error in %s: %s (caused by: %v)", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Auth %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Cause }

func NewValidationError(operation, field, msg string) *AuthError {
	return &AuthError{Type: ErrTypeValidation, Operation: operation, Field: field, Message: msg}
}

// IsAuthErrorType reports whether err is an AuthError of the given type.
func IsAuthErrorType(err error, t ErrorType) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Type == t
}
