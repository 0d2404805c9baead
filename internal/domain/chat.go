// File: internal/domain/chat.go
package domain

import "time"

const (
	DefaultChatTitle = "New Chat"
	// ChatDateLayout mirrors an en-US locale date, e.g. 10/15/2026.
	ChatDateLayout = "1/2/2006"
)

// ChatSession represents a single conversation thread kept on the client.
type ChatSession struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Date     string    `json:"date" yaml:"date"`
	Messages []Message `json:"messages" yaml:"messages"`
}

// NewChatSession returns an empty session titled "New Chat".
func NewChatSession(id string, now time.Time) ChatSession {
	return ChatSession{
		ID:       id,
		Title:    DefaultChatTitle,
		Date:     now.Format(ChatDateLayout),
		Messages: []Message{},
	}
}

// Clone deep-copies the message slice so callers cannot mutate registry state.
func (c ChatSession) Clone() ChatSession {
	out := c
	out.Messages = CloneMessages(c.Messages)
	return out
}

// LastUserIndex returns the index of the last user message, or -1.
func (c ChatSession) LastUserIndex() int {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return i
		}
	}
	return -1
}
