package export

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iyunix/asha-chat/internal/domain"
)

// HTMLExporter renders the Markdown transcript to a standalone HTML page.
// Raw HTML inside messages is not passed through.
type HTMLExporter struct{}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func (e *HTMLExporter) Export(session *domain.ChatSession, w io.Writer) error {
	var src bytes.Buffer
	if err := (&MarkdownExporter{}).Export(session, &src); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := markdown.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	_, err := fmt.Fprintf(w, htmlPage, html.EscapeString(session.Title), body.String())
	return err
}

func (e *HTMLExporter) Extension() string {
	return "html"
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`
