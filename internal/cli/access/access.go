package access

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"devdash/internal/cli/remote"
)

var AccessCmd = &cobra.Command{
	Use:   "access",
	Short: "Access code commands",
	Long:  "Enter the shared access code and manage the saved session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Enter the access code",
	Long:  "Exchange the shared access code for a session and save it to the CLI config",
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("code")
		if code == "" {
			fmt.Print("Access code: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("read access code: %w", err)
			}
			code = strings.TrimSpace(string(raw))
		}
		if code == "" {
			return fmt.Errorf("access code is required")
		}

		client := remote.Client()
		ctx, cancel := remote.Context()
		defer cancel()

		token, err := client.Access(ctx, code)
		if err != nil {
			return fmt.Errorf("access denied: %w", err)
		}

		path, err := remote.SaveSession(token)
		if err != nil {
			return err
		}
		fmt.Println("✓ Access granted")
		fmt.Printf("  Session saved to: %s\n", path)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := remote.Client()
		if client.Session() != "" {
			ctx, cancel := remote.Context()
			defer cancel()
			// the server only clears its cookie, the local copy is what matters
			_ = client.Logout(ctx)
		}
		if _, err := remote.SaveSession(""); err != nil {
			return err
		}
		fmt.Println("✓ Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("code", "", "Access code (prompted when omitted)")
	AccessCmd.AddCommand(loginCmd)
	AccessCmd.AddCommand(logoutCmd)
}
