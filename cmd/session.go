package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/pkg/logger"
)

var errNotLoggedIn = errors.New("not logged in; run `crm login`")

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session in ~/.crm_token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cliContext(cmd.Context())
		deps, err := initializeDependencies(ctx, Options{SessionFile: true})
		if err != nil {
			return err
		}
		defer deps.Close()

		if session, err := deps.Auth.Restore(ctx); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Already logged in as %s (%s)\n", session.Actor.Email, session.Actor.Role)
			return nil
		}

		session, err := interactiveLogin(ctx, deps.Auth, newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()), loginEmail)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome %s, logged in as %s\n", session.Actor.FullName, session.Actor.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cliContext(cmd.Context())
		deps, err := initializeDependencies(ctx, Options{SessionFile: true})
		if err != nil {
			return err
		}
		defer deps.Close()

		var actor *auth.Actor
		if session, err := deps.Auth.Restore(ctx); err == nil {
			actor = session.Actor
		}
		if err := deps.Auth.Logout(ctx, actor); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user and their permissions",
	RunE: withSession(func(cmd *cobra.Command, _ []string, deps *Dependencies, actor *auth.Actor) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\nEmployee: %s\nRole: %s\nPermissions:\n", actor.FullName, actor.Email, actor.EmployeeID, actor.Role)
		for _, p := range auth.PermissionsFor(actor.Role).Slice() {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		return nil
	}),
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email to log in with (prompted when empty)")
}

func cliContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return internal.ContextWithSource(ctx, "cli")
}

type sessionRunE func(cmd *cobra.Command, args []string, deps *Dependencies, actor *auth.Actor) error

// withSession restores the stored session before running fn. Token problems
// never surface as such; the user is told to log in.
func withSession(fn sessionRunE) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cliContext(cmd.Context())
		deps, err := initializeDependencies(ctx, Options{SessionFile: true})
		if err != nil {
			return err
		}
		defer deps.Close()

		session, err := deps.Auth.Restore(ctx)
		if err != nil {
			return errNotLoggedIn
		}

		ctx = auth.ContextWithActor(ctx, session.Actor)
		ctx = logger.With(ctx, "user_id", session.Actor.ID, "role", session.Actor.Role)
		cmd.SetContext(ctx)
		return fn(cmd, args, deps, session.Actor)
	}
}

// prompter reads credentials, hiding the password when stdin is a terminal.
type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	fd          int
	interactive bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.interactive = true
	}
	return p
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) password(label string) (string, error) {
	if !p.interactive {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	raw, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

// interactiveLogin prompts until the login succeeds or the throttle locks
// the identity out. Non-interactive input gets a single attempt.
func interactiveLogin(ctx context.Context, svc auth.ServiceAPI, p *prompter, email string) (*auth.Session, error) {
	for {
		identity := email
		if identity == "" {
			var err error
			if identity, err = p.line("Email: "); err != nil {
				return nil, err
			}
		}

		if err := svc.CheckThrottle(ctx, identity); err != nil {
			return nil, err
		}

		password, err := p.password("Password: ")
		if err != nil {
			return nil, err
		}

		session, err := svc.Login(ctx, identity, password)
		if err == nil {
			return session, nil
		}
		if !internal.IsType(err, internal.ErrorTypeUnauthorized) && !internal.IsType(err, internal.ErrorTypeValidation) {
			return nil, err
		}
		if !p.interactive {
			return nil, err
		}
		fmt.Fprintln(p.out, describe(err))
	}
}
