// Package tui is the terminal dashboard for the doctor
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"devdash/internal/tui/api"
	"devdash/internal/tui/config"
	"devdash/internal/tui/grpc"
	"devdash/internal/tui/styles"
	"devdash/internal/tui/views"
)

// View represents different screens in the TUI
type View int

const (
	ViewAccess View = iota
	ViewDashboard
	ViewVideos
	ViewUsers
	ViewActivity
	ViewChat
)

func (v View) String() string {
	switch v {
	case ViewAccess:
		return "Access"
	case ViewDashboard:
		return "Dashboard"
	case ViewVideos:
		return "Videos"
	case ViewUsers:
		return "Parents"
	case ViewActivity:
		return "Activity"
	case ViewChat:
		return "Chat"
	}
	return "Unknown"
}

const healthTimeout = 3 * time.Second

// healthMsg carries the result of a server probe
type healthMsg struct {
	httpUp bool
	grpcUp bool
}

type healthTickMsg struct{}

// logoutDoneMsg is sent after the server cleared the session
type logoutDoneMsg struct{}

// Model is the root Bubble Tea model
type Model struct {
	config     *config.Config
	configPath string

	apiClient  *api.Client
	grpcClient *grpc.Client

	currentView  View
	previousView View

	keys     KeyMap
	help     help.Model
	showHelp bool

	width  int
	height int

	httpUp bool
	grpcUp bool
	// saveErr is shown in the status bar when the session could not be persisted
	saveErr error

	accessModel    views.AccessModel
	dashboardModel views.DashboardModel
	videosModel    views.VideosModel
	usersModel     views.UsersModel
	activityModel  views.ActivityModel
	chatModel      views.ChatModel
}

// New creates the TUI. The session token saved in cfg is reused; configPath
// is where a new one is written after the access code is entered.
func New(cfg *config.Config, configPath string) *Model {
	apiClient := api.NewClient(cfg.GetHTTPBaseURL())
	apiClient.SetSession(cfg.Session.Token)

	// the probe is optional, a nil client shows gRPC as down
	grpcClient, _ := grpc.NewClient(cfg.GetGRPCAddr())

	m := &Model{
		config:     cfg,
		configPath: configPath,
		apiClient:  apiClient,
		grpcClient: grpcClient,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		currentView: func() View {
			if cfg.Session.Token == "" {
				return ViewAccess
			}
			return ViewDashboard
		}(),
	}

	m.accessModel = views.NewAccessModel(apiClient)
	m.dashboardModel = views.NewDashboardModel(apiClient)
	m.videosModel = views.NewVideosModel(apiClient, cfg.UI.PageSize)
	m.usersModel = views.NewUsersModel(apiClient, cfg.UI.PageSize)
	m.activityModel = views.NewActivityModel(apiClient)
	m.chatModel = views.NewChatModel(apiClient)
	return m
}

// Init starts the first view and the health probe
func (m Model) Init() tea.Cmd {
	first := m.accessModel.Init()
	if m.currentView == ViewDashboard {
		first = m.dashboardModel.Init()
	}
	return tea.Batch(first, m.probe())
}

// CurrentView returns the active screen
func (m Model) CurrentView() View { return m.currentView }

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.dashboardModel, _ = m.dashboardModel.Update(msg)
		m.chatModel, _ = m.chatModel.Update(msg)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && (msg.String() == "ctrl+c" || !m.typing()) {
			m.chatModel.Close()
			if m.grpcClient != nil {
				_ = m.grpcClient.Close()
			}
			return m, tea.Quit
		}
		if m.currentView == ViewAccess && key.Matches(msg, m.keys.Back) && m.apiClient.Session() != "" {
			return m.switchTo(m.previousView)
		}
		if !m.typing() && m.currentView != ViewAccess {
			if next, cmd, ok := m.handleGlobalKey(msg); ok {
				return next, cmd
			}
		}

	case views.AccessGrantedMsg:
		m.config.Session.Token = msg.Token
		m.saveErr = m.config.Save(m.configPath)
		m.accessModel, _ = m.accessModel.Update(msg)
		return m.switchTo(ViewDashboard)

	case views.SessionExpiredMsg:
		return m.expireSession()

	case logoutDoneMsg:
		return m.expireSession()

	case views.OpenChatMsg:
		m.previousView = m.currentView
		m.currentView = ViewChat
		var cmd tea.Cmd
		m.chatModel, cmd = m.chatModel.Open(msg.UserID, msg.UserName)
		return m, cmd

	case healthTickMsg:
		return m, m.probe()

	case healthMsg:
		m.httpUp = msg.httpUp
		m.grpcUp = msg.grpcUp
		return m, m.scheduleProbe()

	// chat stream messages belong to the chat view wherever the user is
	case views.ChatConnectedMsg, views.ChatFrameMsg, views.ChatDisconnectedMsg, views.ChatErrorMsg:
		var cmd tea.Cmd
		m.chatModel, cmd = m.chatModel.Update(msg)
		return m, cmd
	}

	return m.updateCurrentView(msg)
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil, true
	case key.Matches(msg, m.keys.Dashboard):
		next, cmd := m.switchTo(ViewDashboard)
		return next, cmd, true
	case key.Matches(msg, m.keys.Videos):
		next, cmd := m.switchTo(ViewVideos)
		return next, cmd, true
	case key.Matches(msg, m.keys.Users):
		next, cmd := m.switchTo(ViewUsers)
		return next, cmd, true
	case key.Matches(msg, m.keys.Activity):
		next, cmd := m.switchTo(ViewActivity)
		return next, cmd, true
	case key.Matches(msg, m.keys.Chat):
		next, cmd := m.switchTo(ViewChat)
		return next, cmd, true
	case key.Matches(msg, m.keys.Access):
		next, cmd := m.switchTo(ViewAccess)
		return next, cmd, true
	case key.Matches(msg, m.keys.Logout):
		client := m.apiClient
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
			defer cancel()
			_ = client.Logout(ctx)
			return logoutDoneMsg{}
		}, true
	case key.Matches(msg, m.keys.Back) && m.currentView == ViewChat:
		next, cmd := m.switchTo(m.previousView)
		return next, cmd, true
	}
	return m, nil, false
}

// switchTo activates v and reloads its data
func (m Model) switchTo(v View) (Model, tea.Cmd) {
	if v != m.currentView {
		m.previousView = m.currentView
	}
	m.currentView = v

	switch v {
	case ViewAccess:
		return m, m.accessModel.Init()
	case ViewDashboard:
		return m, m.dashboardModel.Init()
	case ViewVideos:
		return m, m.videosModel.Init()
	case ViewUsers:
		return m, m.usersModel.Init()
	case ViewActivity:
		return m, m.activityModel.Init()
	case ViewChat:
		return m, m.chatModel.Init()
	}
	return m, nil
}

func (m Model) expireSession() (Model, tea.Cmd) {
	m.chatModel.Close()
	m.apiClient.SetSession("")
	if m.config.Session.Token != "" {
		m.config.Session.Token = ""
		m.saveErr = m.config.Save(m.configPath)
	}
	return m.switchTo(ViewAccess)
}

// typing reports whether the active view is capturing text
func (m Model) typing() bool {
	var t views.Typer
	switch m.currentView {
	case ViewAccess:
		t = m.accessModel
	case ViewDashboard:
		t = m.dashboardModel
	case ViewVideos:
		t = m.videosModel
	case ViewUsers:
		t = m.usersModel
	case ViewActivity:
		t = m.activityModel
	case ViewChat:
		t = m.chatModel
	default:
		return false
	}
	return t.Typing()
}

// updateCurrentView routes updates to the active view
func (m Model) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAccess:
		m.accessModel, cmd = m.accessModel.Update(msg)
	case ViewDashboard:
		m.dashboardModel, cmd = m.dashboardModel.Update(msg)
	case ViewVideos:
		m.videosModel, cmd = m.videosModel.Update(msg)
	case ViewUsers:
		m.usersModel, cmd = m.usersModel.Update(msg)
	case ViewActivity:
		m.activityModel, cmd = m.activityModel.Update(msg)
	case ViewChat:
		m.chatModel, cmd = m.chatModel.Update(msg)
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.currentView {
	case ViewAccess:
		content = m.accessModel.View()
	case ViewDashboard:
		content = m.dashboardModel.View()
	case ViewVideos:
		content = m.videosModel.View()
	case ViewUsers:
		content = m.usersModel.View()
	case ViewActivity:
		content = m.activityModel.View()
	case ViewChat:
		content = m.chatModel.View()
	}

	var footer string
	if m.currentView != ViewAccess {
		footer = "\n\n" + m.renderStatusBar()
		if m.showHelp {
			footer += "\n" + m.help.FullHelpView(m.keys.FullHelp())
		}
	}
	return styles.AppStyle.Render(content + footer)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, 5)
	for v := ViewDashboard; v <= ViewChat; v++ {
		label := fmt.Sprintf("%d %s", int(v), v)
		if v == m.currentView {
			tabs = append(tabs, styles.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, styles.TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderStatusBar renders the bottom status bar
func (m Model) renderStatusBar() string {
	left := m.renderTabs()

	status := []string{serverBadge("api", m.httpUp), serverBadge("grpc", m.grpcUp)}
	if m.saveErr != nil {
		status = append(status, styles.WarningStyle.Render("session not saved"))
	}
	right := styles.StatusBarStyle.Render(strings.Join(status, " ") + " | ? help | q quit")

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + right
}

func serverBadge(name string, up bool) string {
	if up {
		return styles.SuccessStyle.Render("● " + name)
	}
	return styles.ErrorStyle.Render("○ " + name)
}

// probe checks the HTTP health endpoint and the gRPC health service
func (m Model) probe() tea.Cmd {
	client, grpcClient := m.apiClient, m.grpcClient
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()

		var out healthMsg
		out.httpUp = client.Health(ctx) == nil
		if grpcClient != nil {
			serving, err := grpcClient.Serving(ctx)
			out.grpcUp = err == nil && serving
		}
		return out
	}
}

func (m Model) scheduleProbe() tea.Cmd {
	every := time.Duration(m.config.UI.RefreshRate) * time.Millisecond
	if every <= 0 {
		return nil
	}
	return tea.Tick(every, func(time.Time) tea.Msg { return healthTickMsg{} })
}
