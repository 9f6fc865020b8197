package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"brickpress/pkg/client"
)

type credentialOptions struct {
	email    string
	password string
	name     string
}

// NewSignupCommand creates the signup command.
func NewSignupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &credentialOptions{}
	cmd := &cobra.Command{
		Use:           "signup",
		Short:         "Create an account and sign in",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCredentials(cmd, rootOpts, opts, true)
		},
	}
	addCredentialFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.name, "name", "", "display name (default: email local part)")
	return cmd
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &credentialOptions{}
	cmd := &cobra.Command{
		Use:           "login",
		Short:         "Sign in and save the session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCredentials(cmd, rootOpts, opts, false)
		},
	}
	addCredentialFlags(cmd, opts)
	return cmd
}

func addCredentialFlags(cmd *cobra.Command, opts *credentialOptions) {
	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.password, "password", "", "password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
}

func runCredentials(cmd *cobra.Command, rootOpts *RootOptions, opts *credentialOptions, signup bool) error {
	f := rootOpts.formatter(cmd)
	password := opts.password
	if password == "" {
		if env := os.Getenv("BRICKPRESS_PASSWORD"); env != "" {
			password = env
		} else {
			fmt.Fprint(f.errWriter(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return f.Fail(WrapExitError(ExitCommandError, "read password", err))
			}
			password = strings.TrimRight(line, "\r\n")
		}
	}

	api := client.New(rootOpts.Server, "")
	var (
		sess client.Session
		err  error
	)
	if signup {
		sess, err = api.SignUp(cmd.Context(), opts.email, password, opts.name)
	} else {
		sess, err = api.Login(cmd.Context(), opts.email, password)
	}
	if err != nil {
		return f.Fail(err)
	}
	if err := SaveSession(rootOpts.ConfigDir, SavedSession{Server: rootOpts.Server, Token: sess.Token, User: sess.User}); err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "save session", err))
	}
	return f.Success(sess.User, func(w io.Writer) {
		fmt.Fprintf(w, "Signed in as %s (%s)\n", sess.User.Name, sess.User.Email)
	})
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "logout",
		Short:         "Revoke and forget the saved session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			api, sess, err := rootOpts.client()
			if err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "load session", err))
			}
			if sess != nil {
				// The local session is dropped even if the server cannot be reached.
				if err := api.Logout(cmd.Context()); err != nil {
					f.VerboseLog("server logout failed: %v", err)
				}
			}
			if err := ClearSession(rootOpts.ConfigDir); err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "clear session", err))
			}
			return f.Success(map[string]bool{"signedOut": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Signed out")
			})
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "whoami",
		Short:         "Show the signed-in user",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			api, _, err := rootOpts.client()
			if err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "load session", err))
			}
			user, err := api.Me(cmd.Context())
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(user, func(w io.Writer) {
				fmt.Fprintf(w, "%s <%s>\n", user.Name, user.Email)
			})
		},
	}
}
