package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the global key bindings
type KeyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Access key.Binding
	Logout key.Binding
	Back   key.Binding

	Dashboard key.Binding
	Videos    key.Binding
	Users     key.Binding
	Activity  key.Binding
	Chat      key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Access: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "access code"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logout"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Videos: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "videos"),
		),
		Users: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "parents"),
		),
		Activity: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "activity"),
		),
		Chat: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "chat"),
		),
	}
}

// ShortHelp returns a short help message
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Dashboard, k.Videos, k.Users, k.Activity, k.Chat, k.Quit}
}

// FullHelp returns the full help message
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Dashboard, k.Videos, k.Users},
		{k.Activity, k.Chat, k.Back},
		{k.Access, k.Logout, k.Help, k.Quit},
	}
}
