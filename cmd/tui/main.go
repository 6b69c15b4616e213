package main

import (
	"os"

	"devdash/internal/cli/tui"
)

func main() {
	tui.TUICmd.Use = "devdash-tui"
	if err := tui.TUICmd.Execute(); err != nil {
		os.Exit(1)
	}
}
