package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iyunix/asha-chat/internal/domain"
)

// MarkdownExporter writes a readable transcript. Message bodies are written
// as-is since assistant replies are already Markdown.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(session *domain.ChatSession, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# %s\n\n", session.Title); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "**Date:** %s  \n", session.Date)
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range session.Messages {
		stamp := ""
		if msg.Timestamp != "" {
			stamp = fmt.Sprintf(" (%s)", msg.Timestamp)
		}
		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", speaker(msg.Role), stamp, strings.TrimSpace(msg.Content))

		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}
	return nil
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}

func speaker(role string) string {
	switch role {
	case domain.RoleUser:
		return "You"
	case domain.RoleAssistant:
		return "Asha"
	default:
		return role
	}
}
