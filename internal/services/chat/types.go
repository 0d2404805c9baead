package chat

import (
	"context"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
)

// Logger interface for the chat services
type Logger = logging.Logger

// ChatSender delivers one turn to the assistant backend.
type ChatSender interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}

// Phase is where the flow controller is within one send attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseGating
	PhaseSending
	PhaseDelivered
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseGating:
		return "gating"
	case PhaseSending:
		return "sending"
	case PhaseDelivered:
		return "delivered"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FlowState is a copy of the controller state.
type FlowState struct {
	Phase     Phase
	IsLoading bool
	Typing    bool
	LastError error
	Advisory  string
}

// SubmitResult describes a delivered turn.
type SubmitResult struct {
	SessionID string
	User      domain.Message
	Reply     domain.Message
}
