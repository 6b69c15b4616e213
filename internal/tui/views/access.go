package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"devdash/internal/tui/api"
	"devdash/internal/tui/styles"
)

// AccessModel asks for the shared access code
type AccessModel struct {
	apiClient *api.Client
	input     textinput.Model
	loading   bool
	err       error
}

type accessFailedMsg struct{ err error }

// NewAccessModel creates the code entry view
func NewAccessModel(apiClient *api.Client) AccessModel {
	input := textinput.New()
	input.Placeholder = "Access code"
	input.CharLimit = 200
	input.Width = 30
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.Focus()

	return AccessModel{apiClient: apiClient, input: input}
}

func (m AccessModel) Init() tea.Cmd {
	return textinput.Blink
}

// Typing is always true, the view is a single input
func (m AccessModel) Typing() bool { return true }

func (m AccessModel) Update(msg tea.Msg) (AccessModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}

	case accessFailedMsg:
		m.loading = false
		m.err = msg.err
		m.input.SetValue("")
		return m, nil

	case AccessGrantedMsg:
		m.loading = false
		m.err = nil
		m.input.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m AccessModel) submit() (AccessModel, tea.Cmd) {
	code := m.input.Value()
	if strings.TrimSpace(code) == "" {
		return m, nil
	}
	m.loading = true
	m.err = nil
	client := m.apiClient
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		token, err := client.Access(ctx, code)
		if err != nil {
			return accessFailedMsg{err: err}
		}
		return AccessGrantedMsg{Token: token}
	}
}

func (m AccessModel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Doctor Dashboard"))
	b.WriteString("\n\n")
	b.WriteString(styles.SubtitleStyle.Render("Enter the access code to continue"))
	b.WriteString("\n\n")
	b.WriteString(styles.InputFocusedStyle.Render(m.input.View()))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(styles.InfoStyle.Render("Checking..."))
	case m.err != nil:
		var apiErr *api.APIError
		if asAPIError(m.err, &apiErr) && apiErr.Message != "" {
			b.WriteString(styles.ErrorStyle.Render(apiErr.Message))
		} else {
			b.WriteString(styles.ErrorStyle.Render(m.err.Error()))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("enter submit • ctrl+c quit"))
	return b.String()
}
