package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inventory-server-go/internal/platform/errors"
)

func signUpCmd(opts *options) *cobra.Command {
	var (
		username string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pass, err := resolvePassword(cmd, password)
			if err != nil {
				return err
			}

			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			session, err := c.SignUp(cmd.Context(), username, email, pass)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created and signed in (access token valid %s).\n",
				username, tokenLifetime(session.ExpiresIn))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func signInCmd(opts *options) *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pass, err := resolvePassword(cmd, password)
			if err != nil {
				return err
			}

			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			session, err := c.SignIn(cmd.Context(), username, pass)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (access token valid %s).\n",
				username, tokenLifetime(session.ExpiresIn))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func signOutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Revoke the session and clear stored credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			if err := c.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func whoAmICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			account, err := c.WhoAmI(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %d\n", account.ID)
			fmt.Fprintf(out, "Username: %s\n", account.Username)
			if account.Email != "" {
				fmt.Fprintf(out, "Email:    %s\n", account.Email)
			}
			return nil
		},
	}
}

func refreshCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rotate the stored session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			session, err := c.RefreshSession(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Session refreshed (access token valid %s).\n",
				tokenLifetime(session.ExpiresIn))
			return nil
		},
	}
}

// resolvePassword returns the flag value or prompts on stdin. The prompt
// echoes; the terminal is not switched to raw mode.
func resolvePassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(errors.KindDomain, "cli.password", "cannot read password", err)
	}

	password := strings.TrimSpace(line)
	if password == "" {
		return "", errors.New(errors.KindDomain, "cli.password", "password is required")
	}
	return password, nil
}

func tokenLifetime(expiresIn int64) time.Duration {
	return time.Duration(expiresIn) * time.Second
}
