package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"devdash/internal/tui"
	"devdash/internal/tui/config"
)

var TUICmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("tui-config")

		cfg, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error loading config: %v\nUsing default configuration...\n", err)
			cfg = config.Default()
		}
		if path == "" {
			path = config.DefaultPath()
		}

		p := tea.NewProgram(tui.New(cfg, path), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run TUI: %w", err)
		}
		return nil
	},
}

func init() {
	TUICmd.Flags().String("tui-config", "", "TUI config file (default ~/.config/devdash/tui.yaml)")
}
