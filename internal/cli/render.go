package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/iyunix/asha-chat/internal/domain"
)

// printer styles output for w. Colors drop out when w is not a terminal.
type printer struct {
	w        io.Writer
	user     lipgloss.Style
	asha     lipgloss.Style
	dim      lipgloss.Style
	warn     lipgloss.Style
	selected lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:        w,
		user:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		asha:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		dim:      r.NewStyle().Foreground(lipgloss.Color("243")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("214")),
		selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
	}
}

func (p *printer) message(index int, m domain.Message) {
	label := p.asha.Render("Asha:")
	if m.Role == domain.RoleUser {
		label = p.user.Render("You:")
	}
	_, _ = fmt.Fprintf(p.w, "%s %s %s\n", p.dim.Render(fmt.Sprintf("[%d]", index)), label, m.Content)
}

func (p *printer) messages(msgs []domain.Message) {
	if len(msgs) == 0 {
		p.line(p.dim.Render("(no messages)"))
		return
	}
	for i, m := range msgs {
		p.message(i, m)
	}
}

func (p *printer) session(s domain.ChatSession, active bool) {
	marker := "  "
	title := s.Title
	if active {
		marker = "* "
		title = p.selected.Render(title)
	}
	_, _ = fmt.Fprintf(p.w, "%s%s  %s  %s\n", marker, s.ID, title,
		p.dim.Render(fmt.Sprintf("%s, %d messages", s.Date, len(s.Messages))))
}

func (p *printer) advisory(text string) {
	p.line(p.warn.Render(text))
}

func (p *printer) line(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}

func (p *printer) linef(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}
