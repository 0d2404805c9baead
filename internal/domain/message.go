// File: internal/domain/message.go
package domain

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Attachment is a file picked alongside a message. It lives in memory only.
type Attachment struct {
	Name string
	Data []byte
}

// Message represents a single message within a chat.
type Message struct {
	Role      string      `json:"role" yaml:"role"`
	Content   string      `json:"content" yaml:"content"`
	Timestamp string      `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	File      *Attachment `json:"-" yaml:"-"`
}

// CloneMessages copies a message slice; attachments are shared, they are never mutated.
func CloneMessages(in []Message) []Message {
	out := make([]Message, len(in))
	copy(out, in)
	return out
}

// StripFiles drops attachments before persistence.
func StripFiles(in []Message) []Message {
	out := CloneMessages(in)
	for i := range out {
		out[i].File = nil
	}
	return out
}
