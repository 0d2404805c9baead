// File: internal/services/chat/registry.go
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iyunix/asha-chat/internal/domain"
	chatrepo "github.com/iyunix/asha-chat/internal/repository/chat"
)

// Registry holds the chat sessions (newest first) and the active session id.
// Every structural change is written through to the repository before the
// method returns; persistence failures are logged, never returned.
type Registry struct {
	mu        sync.RWMutex
	sessions  []domain.ChatSession
	currentID string

	repo   chatrepo.SessionRepository
	config *Config
	logger Logger
	newID  func() string
	now    func() time.Time
}

func NewRegistry(repo chatrepo.SessionRepository, config *Config, logger Logger) *Registry {
	if config == nil {
		config = DefaultConfig()
	}
	return &Registry{
		sessions: []domain.ChatSession{},
		repo:     repo,
		config:   config,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Load replaces the in-memory collection with the persisted one. Unreadable
// data is dropped and the registry starts empty.
func (r *Registry) Load(ctx context.Context) error {
	sessions, err := r.repo.Load(ctx)
	if errors.Is(err, chatrepo.ErrCorruptSessions) {
		r.logger.Warn("[Registry] stored sessions unreadable, starting empty", "error", err)
		sessions, err = []domain.ChatSession{}, nil
	}
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = sessions
	if r.indexLocked(r.currentID) < 0 {
		r.currentID = ""
	}
	r.logger.Debug("[Registry] sessions loaded", "count", len(sessions))
	return nil
}

// CreateSession prepends an empty session and makes it active.
func (r *Registry) CreateSession(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := domain.NewChatSession(r.newID(), r.now())
	r.sessions = append([]domain.ChatSession{s}, r.sessions...)
	r.currentID = s.ID
	r.persistLocked(ctx)
	r.logger.Info("[Registry] session created", "session_id", s.ID)
	return s.ID
}

// SelectSession makes id active. An unknown id is accepted and simply shows
// no messages.
func (r *Registry) SelectSession(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexLocked(id) < 0 {
		r.logger.Debug("[Registry] selected unknown session", "session_id", id)
	}
	r.currentID = id
}

// DeleteSession removes id. Deleting the active session leaves no session active.
func (r *Registry) DeleteSession(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentID == id {
		r.currentID = ""
	}
	i := r.indexLocked(id)
	if i < 0 {
		return
	}
	r.sessions = append(r.sessions[:i:i], r.sessions[i+1:]...)
	r.persistLocked(ctx)
	r.logger.Info("[Registry] session deleted", "session_id", id)
}

// AppendMessage adds msg at the end of session id. It reports false, and
// drops the message, when the session no longer exists.
func (r *Registry) AppendMessage(ctx context.Context, id string, msg domain.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		r.logger.Warn("[Registry] message dropped, session gone", "session_id", id, "role", msg.Role)
		return false
	}
	s := &r.sessions[i]
	s.Messages = append(s.Messages, msg)
	if msg.Role == domain.RoleUser && r.config.AutoTitle && s.Title == domain.DefaultChatTitle {
		if title := makeTitle(msg.Content, r.config.TitleMaxRunes); title != "" {
			s.Title = title
		}
	}
	r.persistLocked(ctx)
	return true
}

// TruncateAfter keeps messages[0..index] of session id. index -1 empties it.
func (r *Registry) TruncateAfter(ctx context.Context, id string, index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 || index < -1 || index >= len(r.sessions[i].Messages) {
		return false
	}
	r.sessions[i].Messages = domain.CloneMessages(r.sessions[i].Messages[:index+1])
	r.persistLocked(ctx)
	return true
}

// ClearMessages empties session id but keeps it and its title.
func (r *Registry) ClearMessages(ctx context.Context, id string) bool {
	return r.TruncateAfter(ctx, id, -1)
}

func (r *Registry) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return NewValidationError("rename", "title is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return NewValidationError("rename", "no such session: "+id)
	}
	r.sessions[i].Title = title
	r.persistLocked(ctx)
	return nil
}

// Reset forgets every session and removes the persisted collection.
func (r *Registry) Reset(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = []domain.ChatSession{}
	r.currentID = ""
	if err := r.repo.Clear(ctx); err != nil {
		r.logger.Error("[Registry] failed to clear stored sessions", "error", err)
	}
}

// Sessions returns a copy of every session, newest first.
func (r *Registry) Sessions() []domain.ChatSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ChatSession, len(r.sessions))
	for i, s := range r.sessions {
		out[i] = s.Clone()
	}
	return out
}

func (r *Registry) Session(id string) (domain.ChatSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(id)
	if i < 0 {
		return domain.ChatSession{}, false
	}
	return r.sessions[i].Clone(), true
}

// CurrentID is empty when no session is active.
func (r *Registry) CurrentID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentID
}

// Current returns the active session, if it exists.
func (r *Registry) Current() (domain.ChatSession, bool) {
	return r.Session(r.CurrentID())
}

// DisplayedMessages are the messages of the active session, or none.
func (r *Registry) DisplayedMessages() []domain.Message {
	s, ok := r.Current()
	if !ok {
		return []domain.Message{}
	}
	return s.Messages
}

func (r *Registry) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) persistLocked(ctx context.Context) {
	if err := r.repo.Save(ctx, r.sessions); err != nil {
		r.logger.Error("[Registry] sessions not persisted", "error", err, "count", len(r.sessions))
	}
}

// makeTitle turns the first user message into a one-line title of at most
// max runes, ending in "..." when cut.
const titleEllipsis = "..."

func makeTitle(content string, max int) string {
	title := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(title) <= max {
		return title
	}
	if max <= 0 {
		return ""
	}
	runes := []rune(title)
	if max <= len(titleEllipsis) {
		return string(runes[:max])
	}
	return strings.TrimSpace(string(runes[:max-len(titleEllipsis)])) + titleEllipsis
}
