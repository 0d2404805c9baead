package cli

import (
	"bufio"
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iyunix/asha-chat/internal/app"
)

const replHelp = `Commands: /new  /retry  /clear  /show  /help  /quit`

func newReplCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Chat interactively in the active conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				return repl(ctx, cmd, a)
			})
		},
	}
}

func repl(ctx context.Context, cmd *cobra.Command, a *app.Application) error {
	p := newPrinter(cmd.OutOrStdout())
	if s, ok := a.Sessions.Current(); ok {
		p.line(p.selected.Render(s.Title))
		p.messages(s.Messages)
	}
	p.line(p.dim.Render(replHelp))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if ctx.Err() != nil {
			return nil
		}
		_, _ = cmd.OutOrStdout().Write([]byte(p.user.Render("> ")))
		if !scanner.Scan() {
			p.line("")
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			p.line(replHelp)
		case "/new":
			p.linef("Started %s", a.NewChat(ctx))
		case "/clear":
			if a.Sessions.ClearMessages(ctx, a.Sessions.CurrentID()) {
				p.line("Cleared")
			}
		case "/show":
			p.messages(a.Sessions.DisplayedMessages())
		case "/retry":
			if err := retry(ctx, p, a); err != nil {
				p.advisory(err.Error())
			}
		default:
			if err := submit(ctx, p, a, line, nil); err != nil {
				p.advisory(err.Error())
			}
		}
		// keep the active chat across a crash mid-session
		a.RememberActiveChat(ctx)
	}
}
