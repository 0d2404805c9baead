package export

import (
	"encoding/json"
	"io"

	"github.com/iyunix/asha-chat/internal/domain"
)

// JSONExporter writes the session as indented JSON, the same shape it is stored in.
type JSONExporter struct{}

func (e *JSONExporter) Export(session *domain.ChatSession, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(session)
}

func (e *JSONExporter) Extension() string {
	return "json"
}
