// File: internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/iyunix/asha-chat/internal/app"
	"github.com/iyunix/asha-chat/internal/config"
	"github.com/iyunix/asha-chat/internal/logging"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Opener builds the application for one command run.
type Opener func(ctx context.Context, opts *Options) (*app.Application, error)

// Options are the persistent flags.
type Options struct {
	APIBaseURL string
	DBPath     string
	Verbose    bool
}

// OpenFromEnv loads configuration from the environment and .env, lets the
// flags override it and opens the SQLite-backed application.
func OpenFromEnv(ctx context.Context, opts *Options) (*app.Application, error) {
	cfg := config.Load()
	if opts.APIBaseURL != "" {
		cfg.APIBaseURL = opts.APIBaseURL
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	level := "WARN"
	if opts.Verbose {
		level = "DEBUG"
	}
	logger, err := logging.New("asha", cfg.Environment, level)
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg, logger)
}

// NewRootCmd assembles the asha command tree.
func NewRootCmd(open Opener) *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:   "asha",
		Short: "Chat with the Asha career assistant from the terminal",
		Long: `A terminal client for the Asha career assistant.

Sessions, the login token and the cached profile live in a local SQLite
file, so conversations survive between runs.

Quick Start:
  asha register --email you@example.com --password '...'
  asha login --email you@example.com --password '...'
  asha chat send "How do I prepare for a product interview?"
  asha repl`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.PersistentFlags().StringVar(&opts.APIBaseURL, "api", "", "API base URL (overrides ASHA_API_BASE_URL)")
	root.PersistentFlags().StringVar(&opts.DBPath, "db", "", "local database file (overrides ASHA_DB_PATH)")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	r := &runner{open: open, opts: opts}
	root.AddCommand(
		newLoginCmd(r),
		newRegisterCmd(r),
		newLogoutCmd(r),
		newWhoamiCmd(r),
		newChatCmd(r),
		newReplCmd(r),
	)
	return root
}

// Execute runs the command tree and returns the error for the exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCmd(OpenFromEnv)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

type runner struct {
	open Opener
	opts *Options
}

// with opens the application, restores the active chat, runs fn and saves
// the active chat again before closing.
func (r *runner) with(cmd *cobra.Command, fn func(ctx context.Context, a *app.Application) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := r.open(ctx, r.opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	a.RestoreActiveChat(ctx)
	err = fn(ctx, a)
	a.RememberActiveChat(ctx)
	return err
}
