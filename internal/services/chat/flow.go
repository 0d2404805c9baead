// File: internal/services/chat/flow.go
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/services/analytics"
)

// FlowController runs one send attempt at a time against the active session:
// gate, optimistic append, network call, reply append.
//
// isLoading doubles as the send lock. It is taken before gating and released
// only once the attempt has settled, so two submissions never interleave their
// optimistic appends. The network call runs without holding mu.
type FlowController struct {
	mu        sync.Mutex
	phase     Phase
	isLoading bool
	typing    bool
	lastErr   error
	advisory  string

	registry *Registry
	sender   ChatSender
	tracker  analytics.Tracker
	config   *Config
	logger   Logger
	now      func() time.Time
}

func NewFlowController(registry *Registry, sender ChatSender, tracker analytics.Tracker, config *Config, logger Logger) (*FlowController, error) {
	if registry == nil {
		return nil, NewValidationError("constructor", "registry is required")
	}
	if sender == nil {
		return nil, NewValidationError("constructor", "chat sender is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, NewValidationError("config", err.Error())
	}
	if tracker == nil {
		tracker = analytics.NopTracker{}
	}
	return &FlowController{
		phase:    PhaseIdle,
		registry: registry,
		sender:   sender,
		tracker:  tracker,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// State returns a copy of the controller state.
func (f *FlowController) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FlowState{
		Phase:     f.phase,
		IsLoading: f.isLoading,
		Typing:    f.typing,
		LastError: f.lastErr,
		Advisory:  f.advisory,
	}
}

// Submit sends text as the next user turn of the active session, creating a
// session first when none is active.
func (f *FlowController) Submit(ctx context.Context, text string, file *domain.Attachment) (*SubmitResult, error) {
	const op = "submit"
	if strings.TrimSpace(text) == "" {
		return nil, newEmptyMessageError(op)
	}
	if _, err := f.acquire(op); err != nil {
		return nil, err
	}

	if blocked := f.gate(op, text); blocked != nil {
		return nil, blocked
	}

	sessionID := f.registry.CurrentID()
	session, ok := f.registry.Session(sessionID)
	if !ok {
		sessionID = f.registry.CreateSession(ctx)
		session, _ = f.registry.Session(sessionID)
		f.tracker.Track(analytics.EventChatStarted, map[string]interface{}{"session_id": sessionID})
	}

	msg := domain.Message{
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: f.timestamp(),
		File:      file,
	}
	if !f.registry.AppendMessage(ctx, sessionID, msg) {
		// Only reachable if the session vanished between lookup and append.
		err := newSendFailure(op, sessionID, errSessionGone)
		f.settle(PhaseFailed, err)
		return nil, err
	}
	f.tracker.Track(analytics.EventMessageSent, map[string]interface{}{
		"session_id": sessionID, "role": msg.Role, "length": len(msg.Content),
	})

	return f.send(ctx, op, sessionID, session.Messages, msg)
}

// RetryLastTurn drops everything after the last user message of the active
// session and sends that message again. Without a user message it does nothing
// and returns (nil, nil).
func (f *FlowController) RetryLastTurn(ctx context.Context) (*SubmitResult, error) {
	const op = "retry_last_turn"

	// session is read under the send lock; idx must name the newest user turn
	prev, err := f.acquire(op)
	if err != nil {
		return nil, err
	}
	session, ok := f.registry.Current()
	if !ok {
		f.release(prev)
		return nil, nil
	}
	idx := session.LastUserIndex()
	if idx < 0 {
		f.release(prev)
		f.logger.Debug("[FlowController] nothing to retry", "session_id", session.ID)
		return nil, nil
	}

	msg := session.Messages[idx]
	if blocked := f.gate(op, msg.Content); blocked != nil {
		return nil, blocked
	}

	if !f.registry.TruncateAfter(ctx, session.ID, idx) {
		err := newSendFailure(op, session.ID, errSessionGone)
		f.settle(PhaseFailed, err)
		return nil, err
	}
	f.logger.Info("[FlowController] retrying last turn", "session_id", session.ID, "dropped", len(session.Messages)-idx-1)

	return f.send(ctx, op, session.ID, session.Messages[:idx], msg)
}

// Feedback records a reaction to message index of the active session. It never
// changes messages or flow state.
func (f *FlowController) Feedback(index int, kind domain.FeedbackKind) {
	msgs := f.registry.DisplayedMessages()
	if index < 0 || index >= len(msgs) {
		f.logger.Warn("[FlowController] feedback for unknown message ignored", "index", index, "count", len(msgs))
		return
	}
	f.tracker.Track(analytics.EventMessageFeedback, map[string]interface{}{
		"session_id": f.registry.CurrentID(),
		"index":      index,
		"feedback":   string(kind),
		"role":       msgs[index].Role,
	})
}

// acquire takes the send lock and returns the phase it replaced.
func (f *FlowController) acquire(op string) (Phase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.isLoading {
		f.logger.Debug("[FlowController] submission rejected, send in progress", "operation", op)
		return f.phase, newBusyError(op)
	}
	prev := f.phase
	f.isLoading = true
	f.phase = PhaseGating
	return prev, nil
}

// release gives the send lock back without a send having happened.
func (f *FlowController) release(prev Phase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.isLoading = false
	f.phase = prev
}

// gate releases the send lock and returns the error when text is blocked.
func (f *FlowController) gate(op, text string) error {
	result := Gate(text)

	f.mu.Lock()
	defer f.mu.Unlock()
	if !result.Blocked {
		f.advisory = ""
		return nil
	}
	f.advisory = result.Advisory
	f.isLoading = false
	f.phase = PhaseIdle
	f.tracker.Track(analytics.EventBiasDetected, map[string]interface{}{"term": result.Term})
	f.logger.Info("[FlowController] message blocked by content gate", "operation", op, "term", result.Term)
	return newBlockedError(op, result.Advisory)
}

func (f *FlowController) send(ctx context.Context, op, sessionID string, history []domain.Message, msg domain.Message) (*SubmitResult, error) {
	f.mu.Lock()
	f.phase = PhaseSending
	f.typing = true
	f.lastErr = nil
	f.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, f.config.RequestTimeout)
	defer cancel()

	stamp := f.timestamp()
	req := api.ChatRequest{
		Messages:  withTimestamps(history, stamp),
		UserInput: msg.Content,
	}
	start := f.now()
	resp, err := f.sender.Chat(reqCtx, req)
	if err != nil {
		if f.config.RollbackOnFailure {
			f.registry.TruncateAfter(ctx, sessionID, len(history)-1)
		}
		chatErr := newSendFailure(op, sessionID, err)
		f.settle(PhaseFailed, chatErr)
		f.logger.Error("[FlowController] chat request failed", "session_id", sessionID, "error", err,
			"rolled_back", f.config.RollbackOnFailure)
		return nil, chatErr
	}

	reply := domain.Message{
		Role:      domain.RoleAssistant,
		Content:   resp.Response,
		Timestamp: f.timestamp(),
	}
	if f.registry.AppendMessage(ctx, sessionID, reply) {
		f.tracker.Track(analytics.EventMessageSent, map[string]interface{}{
			"session_id": sessionID, "role": reply.Role, "length": len(reply.Content),
		})
	}
	f.settle(PhaseDelivered, nil)
	f.logger.Info("[FlowController] reply delivered", "session_id", sessionID,
		"history", len(history), "duration", f.now().Sub(start))

	return &SubmitResult{SessionID: sessionID, User: msg, Reply: reply}, nil
}

func (f *FlowController) settle(phase Phase, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = phase
	f.typing = false
	f.isLoading = false
	f.lastErr = err
}

func (f *FlowController) timestamp() string {
	return f.now().UTC().Format(time.RFC3339)
}

// withTimestamps copies history and stamps messages that have no timestamp.
func withTimestamps(history []domain.Message, stamp string) []domain.Message {
	out := domain.StripFiles(history)
	for i := range out {
		if out[i].Timestamp == "" {
			out[i].Timestamp = stamp
		}
	}
	return out
}
