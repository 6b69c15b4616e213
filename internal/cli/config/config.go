package config

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"devdash/internal/cli/remote"
)

var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
	Long:  "View and change where the devdash CLI connects and the saved session",
}

var setServerCmd = &cobra.Command{
	Use:   "set-server <url>",
	Short: "Point the CLI at a devdash server",
	Long: `Save the base URL of the devdash HTTP API, for example http://clinic.local:8080.
The saved session is cleared because it was issued by the previous server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := url.Parse(args[0])
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid server URL %q: expected http(s)://host[:port]", args[0])
		}
		path, err := remote.Persist(map[string]interface{}{
			"server.url":    u.Scheme + "://" + u.Host,
			"session.token": "",
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Server set to %s://%s\n", u.Scheme, u.Host)
		fmt.Fprintf(cmd.OutOrStdout(), "  Saved to %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "  Run 'devdash access login' to enter the access code")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved server and session",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := remote.Persist(map[string]interface{}{
			"server.url":    "",
			"session.token": "",
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration reset (%s)\n", path)
		return nil
	},
}

func init() {
	ConfigCmd.AddCommand(setServerCmd)
	ConfigCmd.AddCommand(resetCmd)
}
