// Package cli implements the inventory-cli command tree. Commands build a
// configured API client from the persistent flags and render results for
// terminal use; all state lives in the credentials file and on the server.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"inventory-server-go/internal/client"
	"inventory-server-go/internal/client/credentials"
)

const (
	defaultAPIURL = "http://127.0.0.1:8080/api"
	apiURLEnv     = "INVENTORY_API_URL"
)

// options carries the persistent flag values shared by every command.
type options struct {
	apiURL          string
	credentialsPath string
}

// Root builds the inventory-cli command tree.
func Root() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "inventory-cli",
		Short: "Command line client for the inventory server",
		Long: `inventory-cli talks to the inventory server API: manage the signed-in
session, create and browse items, and follow live item changes.

The session token triple is stored in a credentials file and attached to
every request automatically. A rejected token clears the file, so the next
command starts signed out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", defaultAPIURLFromEnv(),
		"Base URL of the inventory API (env "+apiURLEnv+")")
	cmd.PersistentFlags().StringVar(&opts.credentialsPath, "credentials", "",
		"Credentials file path (default: OS config dir)")

	cmd.AddCommand(
		signUpCmd(opts),
		signInCmd(opts),
		signOutCmd(opts),
		whoAmICmd(opts),
		refreshCmd(opts),
		itemsCmd(opts),
	)
	return cmd
}

func defaultAPIURLFromEnv() string {
	if v := os.Getenv(apiURLEnv); v != "" {
		return v
	}
	return defaultAPIURL
}

// newClient wires an API client from the persistent flags. The
// session-invalidated hint goes to stderr so piped output stays clean.
func (o *options) newClient(cmd *cobra.Command) (*client.Client, error) {
	store, err := credentials.NewFile(o.credentialsPath)
	if err != nil {
		return nil, err
	}

	return client.New(client.Config{
		BaseURL:     o.apiURL,
		Credentials: store,
		OnSessionInvalidated: func() {
			fmt.Fprintln(cmd.ErrOrStderr(),
				"Session expired or revoked. Run `inventory-cli signin` to sign in again.")
		},
	})
}
