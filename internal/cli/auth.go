package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iyunix/asha-chat/internal/app"
	"github.com/iyunix/asha-chat/internal/services/user_services"
)

type credentialFlags struct {
	email         string
	password      string
	passwordStdin bool
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "account password")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("email")
}

func (f *credentialFlags) resolvePassword(cmd *cobra.Command) (string, error) {
	if !f.passwordStdin {
		return f.password, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(r *runner) *cobra.Command {
	var flags credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := flags.resolvePassword(cmd)
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				err := a.Credentials.Login(ctx, user_services.LoginInput{Email: flags.email, Password: password})
				if err != nil {
					return friendly(err)
				}
				p := newPrinter(cmd.OutOrStdout())
				p.linef("Signed in as %s", displayName(a))
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newRegisterCmd(r *runner) *cobra.Command {
	var (
		flags    credentialFlags
		fullName string
		noLogin  bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := flags.resolvePassword(cmd)
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				in := user_services.RegisterInput{Email: flags.email, Password: password, FullName: fullName}
				if err := a.Credentials.Register(ctx, in); err != nil {
					return friendly(err)
				}
				p := newPrinter(cmd.OutOrStdout())
				p.linef("Account created for %s", strings.TrimSpace(flags.email))
				if noLogin {
					return nil
				}
				if err := a.Credentials.Login(ctx, user_services.LoginInput{Email: flags.email, Password: password}); err != nil {
					return friendly(err)
				}
				p.linef("Signed in as %s", displayName(a))
				return nil
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&fullName, "name", "", "full name (optional)")
	cmd.Flags().BoolVar(&noLogin, "no-login", false, "do not sign in after registering")
	return cmd
}

func newLogoutCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget every local conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				a.SignOut(ctx)
				newPrinter(cmd.OutOrStdout()).line("Signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, a *app.Application) error {
				snap := a.Auth.Snapshot()
				if !snap.Authenticated() {
					return errors.New("not signed in")
				}
				p := newPrinter(cmd.OutOrStdout())
				p.linef("%s <%s>", snap.User.DisplayName(), snap.User.Email)
				p.linef("id: %s", snap.User.ID)
				return nil
			})
		},
	}
}

func displayName(a *app.Application) string {
	if u := a.Auth.Snapshot().User; u != nil {
		return u.DisplayName()
	}
	return "unknown user"
}
