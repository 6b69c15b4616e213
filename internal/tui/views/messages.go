// Package views holds the screens of the terminal dashboard
package views

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"devdash/internal/tui/api"
)

const requestTimeout = 15 * time.Second

// AccessGrantedMsg is sent when the access code was accepted
type AccessGrantedMsg struct {
	Token string
}

// SessionExpiredMsg is sent when the server asks for the access code again
type SessionExpiredMsg struct{}

// OpenChatMsg asks the app to open the chat view for a parent
type OpenChatMsg struct {
	UserID   string
	UserName string
}

// Typer is implemented by views that capture free text input
type Typer interface {
	Typing() bool
}

// fetch runs fn with a timeout and turns a missing session into SessionExpiredMsg
func fetch(fn func(ctx context.Context) tea.Msg, onErr func(error) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		msg := fn(ctx)
		if e, ok := msg.(errMsg); ok {
			if errors.Is(e.err, api.ErrSessionRequired) {
				return SessionExpiredMsg{}
			}
			return onErr(e.err)
		}
		return msg
	}
}

// errMsg is the internal failure result of a fetch function
type errMsg struct{ err error }

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func asAPIError(err error, target **api.APIError) bool {
	return errors.As(err, target)
}
