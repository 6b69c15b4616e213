package views

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"devdash/internal/tui/api"
	"devdash/internal/tui/components"
	"devdash/internal/tui/styles"
	"devdash/pkg/models"
)

const dashboardTopVideos = 5

// DashboardModel shows the headline numbers, the best videos and open concerns
type DashboardModel struct {
	apiClient *api.Client

	stats         *models.DashboardStats
	overview      *models.AnalyticsOverview
	notifications []models.Notification

	loading bool
	spinner components.Spinner
	err     error
	width   int
}

// DashboardLoadedMsg carries everything the dashboard renders
type DashboardLoadedMsg struct {
	Stats         *models.DashboardStats
	Overview      *models.AnalyticsOverview
	Notifications []models.Notification
}

// DashboardErrorMsg is sent on dashboard errors
type DashboardErrorMsg struct{ Err error }

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(apiClient *api.Client) DashboardModel {
	return DashboardModel{apiClient: apiClient, spinner: components.NewSpinner("Loading dashboard...")}
}

// Init loads the data
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m DashboardModel) Typing() bool { return false }

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.load()
		}

	case DashboardLoadedMsg:
		m.loading = false
		m.err = nil
		m.stats = msg.Stats
		m.overview = msg.Overview
		m.notifications = msg.Notifications
		return m, nil

	case DashboardErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	if m.loading || m.stats == nil {
		return m, m.spinner.Update(msg)
	}
	return m, nil
}

func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Dashboard"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(components.ErrorView(m.err))
		return b.String()
	}
	if m.stats == nil {
		b.WriteString(m.spinner.View())
		return b.String()
	}

	s := m.stats
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.RenderCard("Parents", s.TotalUsers),
		styles.RenderCard("Active today", s.ActiveUsersToday),
		styles.RenderCard("Videos", s.TotalVideos),
		styles.RenderCard("Total views", s.TotalViews),
		styles.RenderCard("Engagements", s.TotalEngagements),
		styles.RenderCard("Approval", fmt.Sprintf("%.1f%%", s.AverageVideoRating)),
	))
	b.WriteString("\n\n")

	b.WriteString(styles.SubtitleStyle.Render("Top videos by engagement"))
	b.WriteString("\n")
	if m.overview == nil || len(m.overview.TopVideos) == 0 {
		b.WriteString(styles.HelpStyle.Render("  No video data yet"))
		b.WriteString("\n")
	} else {
		for i, v := range m.overview.TopVideos {
			line := fmt.Sprintf("%d. %s %s %5.1f%%  %s",
				i+1,
				styles.Pad(v.VideoName, 40),
				styles.RenderPercentBar(v.EngagementRate, 20),
				v.EngagementRate,
				styles.HelpStyle.Render(v.Category),
			)
			b.WriteString(styles.ListItemStyle.Render(line))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(styles.SubtitleStyle.Render("Concerns raised"))
	b.WriteString("\n")
	if len(m.notifications) == 0 {
		b.WriteString(styles.HelpStyle.Render("  None"))
		b.WriteString("\n")
	}
	for _, n := range m.notifications {
		line := fmt.Sprintf("%s (%s) %s",
			n.UserName, n.UserPhone,
			styles.BadgeDangerStyle.Render(fmt.Sprintf("%d", len(n.Disapprovals))))
		b.WriteString(styles.ListItemStyle.Render(line))
		b.WriteString("\n")
		for _, d := range n.Disapprovals {
			b.WriteString(styles.HelpStyle.Render("    " + styles.Truncate(d.VideoName, 60)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("r refresh"))
	return b.String()
}

func (m DashboardModel) load() tea.Cmd {
	client := m.apiClient
	return fetch(func(ctx context.Context) tea.Msg {
		stats, err := client.Dashboard(ctx)
		if err != nil {
			return errMsg{err}
		}
		overview, err := client.Analytics(ctx, dashboardTopVideos)
		if err != nil {
			return errMsg{err}
		}
		notifications, err := client.Notifications(ctx)
		if err != nil {
			return errMsg{err}
		}
		return DashboardLoadedMsg{Stats: stats, Overview: overview, Notifications: notifications}
	}, func(err error) tea.Msg { return DashboardErrorMsg{Err: err} })
}
