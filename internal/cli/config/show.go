package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"devdash/internal/cli/remote"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the devdash CLI configuration and connection settings",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "devdash Configuration:")
		fmt.Fprintln(w, "")
		fmt.Fprintf(w, "Server:\n")
		fmt.Fprintf(w, "  URL: %s\n", remote.BaseURL())
		fmt.Fprintf(w, "  gRPC: %s:%d\n", viper.GetString("server.host"), viper.GetInt("server.grpc_port"))
		fmt.Fprintf(w, "  Config file: %s\n", remote.ConfigFile())
		fmt.Fprintln(w, "")

		token := viper.GetString("session.token")
		if token == "" {
			fmt.Fprintf(w, "Session: none\n")
			fmt.Fprintf(w, "  Run 'devdash access login' to enter the access code\n")
			return
		}
		fmt.Fprintf(w, "Session:\n")
		if len(token) > 20 {
			fmt.Fprintf(w, "  Token: %s...\n", token[:20])
		} else {
			fmt.Fprintf(w, "  Token: %s\n", token)
		}
		fmt.Fprintf(w, "  Status: ✓ Saved\n")
	},
}

func init() {
	ConfigCmd.AddCommand(showCmd)
}
