package views

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"devdash/internal/tui/api"
	"devdash/internal/tui/components"
	"devdash/internal/tui/styles"
	"devdash/pkg/models"
	"devdash/pkg/utils"
)

const activityLimit = 20

// ActivityModel shows the recent activity feed
type ActivityModel struct {
	apiClient *api.Client
	items     []models.ActivityItem
	loaded    bool
	spinner   components.Spinner
	err       error
}

// ActivityLoadedMsg is sent when the feed arrives
type ActivityLoadedMsg struct {
	Items []models.ActivityItem
}

// ActivityErrorMsg is sent on feed errors
type ActivityErrorMsg struct{ Err error }

func NewActivityModel(apiClient *api.Client) ActivityModel {
	return ActivityModel{apiClient: apiClient, spinner: components.NewSpinner("Loading activity...")}
}

func (m ActivityModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m ActivityModel) Typing() bool { return false }

func (m ActivityModel) Update(msg tea.Msg) (ActivityModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ActivityLoadedMsg:
		m.loaded = true
		m.err = nil
		m.items = msg.Items
		return m, nil
	case ActivityErrorMsg:
		m.err = msg.Err
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.load()
		}
		return m, nil
	}
	if !m.loaded {
		return m, m.spinner.Update(msg)
	}
	return m, nil
}

func (m ActivityModel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Recent activity"))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(components.ErrorView(m.err))
		return b.String()
	case !m.loaded:
		b.WriteString(m.spinner.View())
		return b.String()
	case len(m.items) == 0:
		b.WriteString(styles.HelpStyle.Render("Nothing yet"))
		b.WriteString("\n")
	}

	for _, it := range m.items {
		b.WriteString(activityIcon(it.Type))
		b.WriteString(" ")
		b.WriteString(styles.Pad(it.UserName, 22))
		b.WriteString(" ")
		b.WriteString(styles.Truncate(it.Description, 60))
		b.WriteString("  ")
		b.WriteString(styles.TimestampStyle.Render(utils.TimeAgo(it.Timestamp)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("r refresh"))
	return b.String()
}

func activityIcon(t models.ActivityType) string {
	switch t {
	case models.ActivityApprove:
		return styles.SuccessStyle.Render("+")
	case models.ActivityDisapprove:
		return styles.ErrorStyle.Render("!")
	case models.ActivityRegistration:
		return styles.InfoStyle.Render("*")
	default:
		return styles.HelpStyle.Render(">")
	}
}

func (m ActivityModel) load() tea.Cmd {
	client := m.apiClient
	return fetch(func(ctx context.Context) tea.Msg {
		items, err := client.RecentActivity(ctx, activityLimit)
		if err != nil {
			return errMsg{err}
		}
		return ActivityLoadedMsg{Items: items}
	}, func(err error) tea.Msg { return ActivityErrorMsg{Err: err} })
}
