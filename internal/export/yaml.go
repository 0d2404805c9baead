package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/iyunix/asha-chat/internal/domain"
)

type YAMLExporter struct{}

func (e *YAMLExporter) Export(session *domain.ChatSession, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(session)
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
