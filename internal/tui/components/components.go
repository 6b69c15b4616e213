// Package components holds small widgets shared by the views
package components

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"devdash/internal/tui/api"
	"devdash/internal/tui/styles"
)

// Spinner is a loading spinner component
type Spinner struct {
	spinner spinner.Model
	message string
}

// NewSpinner creates a new spinner
func NewSpinner(message string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle
	return Spinner{spinner: s, message: message}
}

// Tick starts the animation
func (s Spinner) Tick() tea.Msg {
	return s.spinner.Tick()
}

// Update advances the animation
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the spinner
func (s Spinner) View() string {
	return s.spinner.View() + " " + styles.InfoStyle.Render(s.message)
}

// ErrorView renders a failed load with a retry hint
func ErrorView(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, api.ErrSessionRequired) {
		return styles.WarningStyle.Render("Session expired.") + " " +
			styles.HelpStyle.Render("Press a to enter the access code again")
	}
	return styles.ErrorStyle.Render("Error: "+err.Error()) + "\n" +
		styles.HelpStyle.Render("Press r to retry")
}
