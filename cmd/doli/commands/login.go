package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/dolibarr-client/pkg/doliclient"
)

// newLoginCommand creates the login command.
func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to Dolibarr",
		Long:  "Exchange a username and password for an API key and cache it in the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(cmd, doliclient.WithAPIKey(""), doliclient.WithRefresh())
			if err != nil {
				return fmt.Errorf("failed to log in: %w", err)
			}

			out := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(out, "Login successful")

			if a.v.GetBool(flagCache) {
				_, _ = fmt.Fprintln(out, "API key cached for later runs")
			} else {
				_, _ = fmt.Fprintf(out, "API key: %s\n", client.APIKey())
			}

			return nil
		},
	}
}
