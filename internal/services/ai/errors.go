// File: internal/services/ai/errors.go
package ai

import "fmt"

type ErrorType string

const (
	ErrTypeConfig ErrorType = "CONFIG"
	// ErrTypeUpstream: the completion endpoint failed or was unreachable.
	ErrTypeUpstream ErrorType = "UPSTREAM"
	// ErrTypeEmptyInput: nothing to answer; never sent upstream.
	ErrTypeEmptyInput ErrorType = "EMPTY_INPUT"
	// ErrTypeEmptyReply: the model answered with no text.
	ErrTypeEmptyReply ErrorType = "EMPTY_REPLY"
	// ErrTypeRefused: the model stopped on its content filter.
	ErrTypeRefused ErrorType = "REFUSED"
)

// AIError is returned by every Responder.
type AIError struct {
	Type      ErrorType
	Operation string
	Message   string
	Model     string
	Cause     error
}

func (e *AIError) Error() string {
	model := ""
	if e.Model != "" {
		model = " [" + e.Model + "]"
	}
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s%s: %s (caused by: %v)", e.Type, e.Operation, model, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s%s: %s", e.Type, e.Operation, model, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

// Retryable reports whether asking again may give a different outcome.
func (e *AIError) Retryable() bool {
	return e.Type == ErrTypeUpstream || e.Type == ErrTypeEmptyReply
}

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Operation: "config", Message: msg}
}

func newEmptyInputError(operation string) *AIError {
	return &AIError{Type: ErrTypeEmptyInput, Operation: operation, Message: "user input is empty"}
}

func newUpstreamError(operation, model string, cause error) *AIError {
	return &AIError{Type: ErrTypeUpstream, Operation: operation, Model: model, Message: "completion request failed", Cause: cause}
}
