// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeBusy           ErrorType = "BUSY"
	ErrTypeContentBlocked ErrorType = "CONTENT_BLOCKED"
	ErrTypeSendFailure    ErrorType = "SEND_FAILURE"
)

// Sentinels for errors.Is; every ChatError unwraps to the one matching its Type.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrSendInProgress = errors.New("a message is already being sent")
	ErrContentBlocked = errors.New("message blocked by content gate")
	ErrSendFailure    = errors.New("message could not be delivered")
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	// Advisory is the text shown to the user for CONTENT_BLOCKED.
	Advisory  string
	SessionID string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func (e *ChatError) sentinel() error {
	switch e.Type {
	case ErrTypeBusy:
		return ErrSendInProgress
	case ErrTypeContentBlocked:
		return ErrContentBlocked
	case ErrTypeSendFailure:
		return ErrSendFailure
	}
	return nil
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func newEmptyMessageError(operation string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: "message is empty", Cause: ErrEmptyMessage}
}

func newBusyError(operation string) *ChatError {
	return &ChatError{Type: ErrTypeBusy, Operation: operation, Message: "wait for the current reply"}
}

func newBlockedError(operation, advisory string) *ChatError {
	return &ChatError{Type: ErrTypeContentBlocked, Operation: operation, Message: "message not sent", Advisory: advisory}
}

func newSendFailure(operation, sessionID string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeSendFailure, Operation: operation, Message: "the assistant did not answer", SessionID: sessionID, Cause: cause}
}

var errSessionGone = errors.New("chat session no longer exists")
