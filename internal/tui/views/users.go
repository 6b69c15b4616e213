package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"devdash/internal/analytics"
	"devdash/internal/tui/api"
	"devdash/internal/tui/components"
	"devdash/internal/tui/styles"
	"devdash/pkg/models"
	"devdash/pkg/utils"
)

var userSortOrder = []string{
	analytics.SortUsersByName,
	analytics.SortUsersByActivity,
	analytics.SortUsersByEngagements,
}

// UsersModel lists parents and opens their analytics
type UsersModel struct {
	apiClient *api.Client

	users    []models.UserWithStats
	cursor   int
	sortIdx  int
	search   textinput.Model
	query    string
	pageSize int

	detail  *models.UserAnalytics
	loading bool
	spinner components.Spinner
	err     error
}

// UsersLoadedMsg is sent when the parent list arrives
type UsersLoadedMsg struct {
	Users []models.UserWithStats
}

// UserAnalyticsLoadedMsg is sent when one parent's analytics arrive
type UserAnalyticsLoadedMsg struct {
	Analytics *models.UserAnalytics
}

// UsersErrorMsg is sent on user list or detail errors
type UsersErrorMsg struct{ Err error }

// NewUsersModel creates the parent list view
func NewUsersModel(apiClient *api.Client, pageSize int) UsersModel {
	search := textinput.New()
	search.Placeholder = "Search by name, phone or email"
	search.CharLimit = 100
	search.Width = 40
	if pageSize <= 0 {
		pageSize = 15
	}
	return UsersModel{
		apiClient: apiClient,
		search:    search,
		pageSize:  pageSize,
		loading:   true,
		spinner:   components.NewSpinner("Loading parents..."),
	}
}

func (m UsersModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m UsersModel) Typing() bool { return m.search.Focused() }

// SortBy returns the active sort key
func (m UsersModel) SortBy() string { return userSortOrder[m.sortIdx] }

func (m UsersModel) Update(msg tea.Msg) (UsersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case UsersLoadedMsg:
		m.loading = false
		m.err = nil
		m.users = msg.Users
		m.cursor = clamp(m.cursor, 0, len(m.users)-1)
		return m, nil

	case UserAnalyticsLoadedMsg:
		m.loading = false
		m.err = nil
		m.detail = msg.Analytics
		return m, nil

	case UsersErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		if m.detail != nil {
			switch msg.String() {
			case "esc", "backspace":
				m.detail = nil
			case "c":
				u := m.detail.User
				return m, func() tea.Msg { return OpenChatMsg{UserID: u.ID, UserName: u.Name} }
			}
			return m, nil
		}
		return m.updateList(msg)
	}

	if m.loading {
		return m, m.spinner.Update(msg)
	}
	return m, nil
}

func (m UsersModel) updateSearch(msg tea.KeyMsg) (UsersModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		m.query = strings.TrimSpace(m.search.Value())
		m.loading = true
		m.cursor = 0
		return m, m.load()
	case tea.KeyEsc:
		m.search.Blur()
		m.search.SetValue(m.query)
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m UsersModel) updateList(msg tea.KeyMsg) (UsersModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, len(m.users)-1)
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, len(m.users)-1)
	case "/":
		m.search.Focus()
		return m, textinput.Blink
	case "s":
		m.sortIdx = (m.sortIdx + 1) % len(userSortOrder)
		m.loading = true
		return m, m.load()
	case "r":
		m.loading = true
		return m, m.load()
	case "c":
		if len(m.users) == 0 {
			return m, nil
		}
		u := m.users[m.cursor]
		return m, func() tea.Msg { return OpenChatMsg{UserID: u.ID, UserName: u.Name} }
	case "enter":
		if len(m.users) == 0 {
			return m, nil
		}
		m.loading = true
		return m, m.loadDetail(m.users[m.cursor].ID)
	}
	return m, nil
}

func (m UsersModel) View() string {
	if m.detail != nil {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Parents"))
	b.WriteString("  ")
	b.WriteString(styles.BadgeMutedStyle.Render("sort: " + m.SortBy()))
	if m.query != "" {
		b.WriteString(" ")
		b.WriteString(styles.BadgeMutedStyle.Render("q: " + m.query))
	}
	b.WriteString("\n\n")

	if m.search.Focused() {
		b.WriteString(styles.InputFocusedStyle.Render(m.search.View()))
		b.WriteString("\n\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(components.ErrorView(m.err))
		return b.String()
	case m.loading && m.users == nil:
		b.WriteString(m.spinner.View())
		return b.String()
	case len(m.users) == 0:
		b.WriteString(styles.HelpStyle.Render("No parents match"))
		b.WriteString("\n")
	}

	if len(m.users) > 0 {
		header := fmt.Sprintf("  %s %s %7s %8s  %s",
			styles.Pad("Name", 24), styles.Pad("Phone", 16), "Videos", "Approve", "Last active")
		b.WriteString(styles.TableHeaderStyle.Render(header))
		b.WriteString("\n")
	}

	start, end := window(m.cursor, len(m.users), m.pageSize)
	for i := start; i < end; i++ {
		u := m.users[i]
		lastActive := "never"
		if u.LastActive != nil {
			lastActive = utils.TimeAgo(*u.LastActive)
		}
		line := fmt.Sprintf("%s %s %7d %7.0f%%  %s",
			styles.Pad(u.Name, 24), styles.Pad(u.PhoneNumber, 16), u.TotalEngagements, u.ApprovalRate, lastActive)
		if i == m.cursor {
			b.WriteString(styles.ListItemSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(styles.ListItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("↑/↓ move • enter analytics • c chat • / search • s sort • r refresh"))
	return b.String()
}

func (m UsersModel) detailView() string {
	a := m.detail
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(a.User.Name))
	b.WriteString("\n\n")
	b.WriteString(styles.RenderKeyValue("Phone", a.User.PhoneNumber))
	b.WriteString("\n")
	if a.User.Email != nil {
		b.WriteString(styles.RenderKeyValue("Email", *a.User.Email))
		b.WriteString("\n")
	}
	if a.Profile != nil {
		if a.Profile.ChildName != nil {
			b.WriteString(styles.RenderKeyValue("Child", *a.Profile.ChildName))
			b.WriteString("\n")
		}
		if a.Profile.ChildAgeMonths != nil {
			b.WriteString(styles.RenderKeyValue("Child age", fmt.Sprintf("%d months", *a.Profile.ChildAgeMonths)))
			b.WriteString("\n")
		}
	}
	b.WriteString(styles.RenderKeyValue("Age group", a.DevelopmentProgress.AgeGroup))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("Total views", fmt.Sprintf("%d", a.TotalWatchTime)))
	b.WriteString("\n")
	if len(a.FavoriteCategories) > 0 {
		b.WriteString(styles.RenderKeyValue("Favourite topics", strings.Join(a.FavoriteCategories, ", ")))
		b.WriteString("\n")
	}
	if len(a.DevelopmentProgress.Concerns) > 0 {
		b.WriteString(styles.RenderKeyValue("Concerns", fmt.Sprintf("%d", len(a.DevelopmentProgress.Concerns))))
		b.WriteString("\n")
		for _, c := range a.DevelopmentProgress.Concerns {
			b.WriteString(styles.WarningStyle.Render("  ! " + c))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(styles.SubtitleStyle.Render("Watched videos"))
	b.WriteString("\n")
	if len(a.VideoEngagements) == 0 {
		b.WriteString(styles.HelpStyle.Render("  No videos watched yet"))
		b.WriteString("\n")
	}
	for _, e := range a.VideoEngagements {
		line := fmt.Sprintf("%s %3d views  %s  %s",
			styles.Pad(e.VideoID, 28), e.ViewCount, voteBadge(e.Vote),
			styles.TimestampStyle.Render(utils.TimeAgo(e.LastViewed)))
		b.WriteString(styles.ListItemStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("c chat • esc back"))
	return b.String()
}

func (m UsersModel) load() tea.Cmd {
	client, query, sortBy := m.apiClient, m.query, m.SortBy()
	return fetch(func(ctx context.Context) tea.Msg {
		users, err := client.Users(ctx, query, sortBy)
		if err != nil {
			return errMsg{err}
		}
		if users == nil {
			users = []models.UserWithStats{}
		}
		return UsersLoadedMsg{Users: users}
	}, func(err error) tea.Msg { return UsersErrorMsg{Err: err} })
}

func (m UsersModel) loadDetail(id string) tea.Cmd {
	client := m.apiClient
	return fetch(func(ctx context.Context) tea.Msg {
		a, err := client.UserAnalytics(ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return UserAnalyticsLoadedMsg{Analytics: a}
	}, func(err error) tea.Msg { return UsersErrorMsg{Err: err} })
}
