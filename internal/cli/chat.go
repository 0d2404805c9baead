// File: internal/cli/chat.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iyunix/asha-chat/internal/app"
	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/export"
	"github.com/iyunix/asha-chat/internal/services/chat"
)

func newChatCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chat",
		Aliases: []string{"c"},
		Short:   "Manage conversations and talk to Asha",
	}
	cmd.AddCommand(
		newChatNewCmd(r),
		newChatListCmd(r),
		newChatSelectCmd(r),
		newChatDeleteCmd(r),
		newChatRenameCmd(r),
		newChatShowCmd(r),
		newChatSendCmd(r),
		newChatRetryCmd(r),
		newChatClearCmd(r),
		newChatFeedbackCmd(r),
		newChatExportCmd(r),
	)
	return cmd
}

func newChatNewCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start an empty conversation and make it active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				id := a.NewChat(ctx)
				newPrinter(cmd.OutOrStdout()).linef("Started %s", id)
				return nil
			})
		},
	}
}

func newChatListCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List conversations, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				p := newPrinter(cmd.OutOrStdout())
				sessions := a.Sessions.Sessions()
				if len(sessions) == 0 {
					p.line(p.dim.Render("No conversations yet. Start one with `asha chat new`."))
					return nil
				}
				current := a.Sessions.CurrentID()
				for _, s := range sessions {
					p.session(s, s.ID == current)
				}
				return nil
			})
		},
	}
}

func newChatSelectCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a conversation active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				id, err := resolveSession(a, args[0])
				if err != nil {
					return err
				}
				a.Sessions.SelectSession(id)
				s, _ := a.Sessions.Session(id)
				newPrinter(cmd.OutOrStdout()).linef("Active: %s", s.Title)
				return nil
			})
		},
	}
}

func newChatDeleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				id, err := resolveSession(a, args[0])
				if err != nil {
					return err
				}
				a.Sessions.DeleteSession(ctx, id)
				newPrinter(cmd.OutOrStdout()).linef("Deleted %s", id)
				return nil
			})
		},
	}
}

func newChatRenameCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change a conversation title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				id, err := resolveSession(a, args[0])
				if err != nil {
					return err
				}
				if err := a.Sessions.Rename(ctx, id, strings.Join(args[1:], " ")); err != nil {
					return friendly(err)
				}
				s, _ := a.Sessions.Session(id)
				newPrinter(cmd.OutOrStdout()).linef("Renamed to %s", s.Title)
				return nil
			})
		},
	}
}

func newChatShowCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print the messages of a conversation (the active one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				s, err := targetSession(a, args)
				if err != nil {
					return err
				}
				p := newPrinter(cmd.OutOrStdout())
				p.line(p.selected.Render(s.Title))
				p.messages(s.Messages)
				return nil
			})
		},
	}
}

func newChatSendCmd(r *runner) *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message in the active conversation",
		Long: `Send a message in the active conversation and print Asha's reply.

A conversation is started automatically when none is active. Messages that
use gendered stereotypes are held back with an advisory instead of being sent.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file *domain.Attachment
			if filePath != "" {
				data, err := os.ReadFile(filePath)
				if err != nil {
					return fmt.Errorf("read attachment: %w", err)
				}
				file = &domain.Attachment{Name: filepath.Base(filePath), Data: data}
			}
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				return submit(ctx, newPrinter(cmd.OutOrStdout()), a, strings.Join(args, " "), file)
			})
		},
	}
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "attach a file to the message")
	return cmd
}

func newChatRetryCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Resend the last message of the active conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				return retry(ctx, newPrinter(cmd.OutOrStdout()), a)
			})
		},
	}
}

func newChatClearCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every message from the active conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				if !a.Sessions.ClearMessages(ctx, a.Sessions.CurrentID()) {
					return errNoActiveChat
				}
				newPrinter(cmd.OutOrStdout()).line("Cleared")
				return nil
			})
		},
	}
}

func newChatFeedbackCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "feedback <index> <helpful|not_helpful|biased>",
		Short: "Rate a message of the active conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid message index %q", args[0])
			}
			kind, err := domain.ParseFeedbackKind(args[1])
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				if index < 0 || index >= len(a.Sessions.DisplayedMessages()) {
					return fmt.Errorf("no message %d in the active conversation", index)
				}
				a.Flow.Feedback(index, kind)
				newPrinter(cmd.OutOrStdout()).line("Thanks for the feedback")
				return nil
			})
		},
	}
}

func newChatExportCmd(r *runner) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Write a conversation as json, yaml, markdown or html",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := export.NewExporter(format)
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				s, err := targetSession(a, args)
				if err != nil {
					return err
				}
				if output == "" {
					return exporter.Export(&s, cmd.OutOrStdout())
				}
				if filepath.Ext(output) == "" {
					output += "." + exporter.Extension()
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				if err := exporter.Export(&s, f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).linef("Exported to %s", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "md", "output format: json, yaml, md or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

var errNoActiveChat = errors.New("no active conversation, start one with `asha chat new`")

func submit(ctx context.Context, p *printer, a *app.Application, text string, file *domain.Attachment) error {
	res, err := a.Flow.Submit(ctx, text, file)
	if err != nil {
		if errors.Is(err, chat.ErrContentBlocked) {
			p.advisory(a.Flow.State().Advisory)
			return errors.New("message not sent")
		}
		return friendly(err)
	}
	p.message(lastIndex(a, res.SessionID), res.Reply)
	return nil
}

func retry(ctx context.Context, p *printer, a *app.Application) error {
	res, err := a.Flow.RetryLastTurn(ctx)
	if err != nil {
		return friendly(err)
	}
	if res == nil {
		p.line(p.dim.Render("Nothing to retry"))
		return nil
	}
	p.message(lastIndex(a, res.SessionID), res.Reply)
	return nil
}

func lastIndex(a *app.Application, id string) int {
	s, ok := a.Sessions.Session(id)
	if !ok {
		return 0
	}
	return len(s.Messages) - 1
}

// resolveSession accepts a full session id or an unambiguous prefix of one.
func resolveSession(a *app.Application, ref string) (string, error) {
	if _, ok := a.Sessions.Session(ref); ok {
		return ref, nil
	}
	var matches []string
	for _, s := range a.Sessions.Sessions() {
		if strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no conversation matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d conversations", ref, len(matches))
	}
}

func targetSession(a *app.Application, args []string) (domain.ChatSession, error) {
	if len(args) == 0 {
		s, ok := a.Sessions.Current()
		if !ok {
			return domain.ChatSession{}, errNoActiveChat
		}
		return s, nil
	}
	id, err := resolveSession(a, args[0])
	if err != nil {
		return domain.ChatSession{}, err
	}
	s, _ := a.Sessions.Session(id)
	return s, nil
}
