package views

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devdash/internal/analytics"
	"devdash/internal/broker"
	"devdash/internal/catalog"
	"devdash/internal/core"
	httpProtocol "devdash/internal/protocols/http"
	wsProtocol "devdash/internal/protocols/websocket"
	"devdash/internal/repository/memrepo"
	"devdash/internal/tui/api"
	"devdash/pkg/models"
)

func newClient(t *testing.T, login bool) *api.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memrepo.New()
	seen := time.Now().Add(-time.Hour)
	store.Users = []models.User{
		{ID: "u1", Name: "Asha", PhoneNumber: "+911", LastActive: &seen},
		{ID: "u2", Name: "Ravi", PhoneNumber: "+912"},
	}
	store.Stats = []models.VideoStats{{VideoID: "v1", TotalViews: 12, TotalApprovals: 3, TotalDisapprovals: 1}}
	store.Engagements = []models.VideoEngagement{
		{VideoID: "v1", UserID: "u1", Vote: models.VoteApprove, ViewCount: 4, LastViewed: seen},
	}
	users, videos, chats, notifications := store.Repositories()
	b := broker.NewMemory()

	chatSvc := core.NewChatService(chats, b, "doctor-1")
	srv := httpProtocol.NewServer(httpProtocol.Options{
		Access:    core.NewAccessService(core.AccessOptions{Code: "1234", SessionSecret: "s"}),
		Dashboard: core.NewDashboardService(users, videos, notifications, catalog.Default(), core.DashboardOptions{}),
		Chat:      chatSvc,
	})
	hub := wsProtocol.NewHub(chatSvc)
	wsProtocol.NewHandler(hub, wsProtocol.Options{}).Register(srv.Router())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		hub.Stop()
		ts.Close()
		_ = b.Close()
	})

	client := api.NewClient(ts.URL)
	if login {
		_, err := client.Access(context.Background(), "1234")
		require.NoError(t, err)
	}
	return client
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFetchMapsMissingSession(t *testing.T) {
	onErr := func(err error) tea.Msg { return DashboardErrorMsg{Err: err} }

	msg := fetch(func(context.Context) tea.Msg { return errMsg{api.ErrSessionRequired} }, onErr)()
	assert.IsType(t, SessionExpiredMsg{}, msg)

	boom := errors.New("boom")
	msg = fetch(func(context.Context) tea.Msg { return errMsg{boom} }, onErr)()
	assert.Equal(t, DashboardErrorMsg{Err: boom}, msg)

	msg = fetch(func(context.Context) tea.Msg { return ActivityLoadedMsg{} }, onErr)()
	assert.IsType(t, ActivityLoadedMsg{}, msg)
}

func TestAccessModelGrantsSession(t *testing.T) {
	client := newClient(t, false)
	m := NewAccessModel(client)
	assert.True(t, m.Typing())

	for _, r := range "1234" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	msg := cmd()
	granted, ok := msg.(AccessGrantedMsg)
	require.True(t, ok, "got %T", msg)
	assert.NotEmpty(t, granted.Token)
	assert.Equal(t, granted.Token, client.Session())
}

func TestAccessModelShowsRejection(t *testing.T) {
	m := NewAccessModel(newClient(t, false))
	m, _ = m.Update(key("x"))
	_, cmd := m.Update(key("enter"))
	msg := cmd()
	m, _ = m.Update(msg)

	assert.Contains(t, m.View(), "Invalid code")
	assert.Empty(t, m.input.Value())
}

func TestDashboardLoad(t *testing.T) {
	m := NewDashboardModel(newClient(t, true))
	msg := m.load()()
	loaded, ok := msg.(DashboardLoadedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, 2, loaded.Stats.TotalUsers)

	m, _ = m.Update(loaded)
	view := m.View()
	assert.Contains(t, view, "Parents")
	assert.Contains(t, view, "Top videos")
}

func TestDashboardWithoutSession(t *testing.T) {
	m := NewDashboardModel(newClient(t, false))
	assert.IsType(t, SessionExpiredMsg{}, m.load()())
}

func TestVideosKeys(t *testing.T) {
	m := NewVideosModel(newClient(t, true), 10)
	assert.Equal(t, analytics.SortVideosByViews, m.SortBy())

	m, _ = m.Update(m.load()())
	require.Len(t, m.videos, 1)
	assert.False(t, m.loading)

	m, cmd := m.Update(key("s"))
	assert.NotNil(t, cmd)
	assert.Equal(t, analytics.SortVideosByApprovals, m.SortBy())

	m, _ = m.Update(key("/"))
	assert.True(t, m.Typing())
	m, _ = m.Update(key("v1"))
	m, cmd = m.Update(key("enter"))
	assert.False(t, m.Typing())
	assert.Equal(t, "v1", m.query)
	require.NotNil(t, cmd)

	_, cmd = m.Update(key("enter"))
	detail, ok := cmd().(VideoDetailLoadedMsg)
	require.True(t, ok)
	m, _ = m.Update(detail)
	assert.Contains(t, m.View(), "Asha")

	m, _ = m.Update(key("esc"))
	assert.Nil(t, m.detail)
}

func TestUsersOpenChat(t *testing.T) {
	m := NewUsersModel(newClient(t, true), 10)
	m, _ = m.Update(m.load()())
	require.Len(t, m.users, 2)
	assert.Equal(t, "Asha", m.users[0].Name)

	m, _ = m.Update(key("j"))
	_, cmd := m.Update(key("c"))
	require.NotNil(t, cmd)
	assert.Equal(t, OpenChatMsg{UserID: "u2", UserName: "Ravi"}, cmd())
}

func TestUsersDetail(t *testing.T) {
	m := NewUsersModel(newClient(t, true), 10)
	m, _ = m.Update(m.load()())
	_, cmd := m.Update(key("enter"))
	msg := cmd()
	require.IsType(t, UserAnalyticsLoadedMsg{}, msg)
	m, _ = m.Update(msg)

	view := m.View()
	assert.Contains(t, view, "Asha")
	assert.Contains(t, view, "v1")
}

func TestActivityView(t *testing.T) {
	m := NewActivityModel(newClient(t, true))
	m, _ = m.Update(m.load()())
	require.NotEmpty(t, m.items)
	assert.Contains(t, m.View(), "Asha")
}

func TestChatIgnoresStaleFrames(t *testing.T) {
	m := NewChatModel(nil)
	m.userID = "u1"
	m.connGen = 2

	m, _ = m.Update(ChatFrameMsg{Gen: 1, Frame: models.ChatStreamFrame{
		Type:     "snapshot",
		Messages: []models.ChatMessage{{Message: "old"}},
	}})
	assert.Empty(t, m.messages)

	now := time.Now()
	m, _ = m.Update(ChatFrameMsg{Gen: 2, Frame: models.ChatStreamFrame{
		Type: "snapshot",
		Messages: []models.ChatMessage{
			{Message: "second", Timestamp: now, SenderType: models.SenderDoctor},
			{Message: "first", Timestamp: now.Add(-time.Minute), SenderType: models.SenderUser},
		},
	}})
	require.Len(t, m.messages, 2)
	assert.Equal(t, "first", m.messages[0].Message)

	view := m.View()
	assert.Less(t, strings.Index(view, "first"), strings.Index(view, "second"))
	assert.Contains(t, view, "Doctor:")

	m, _ = m.Update(ChatFrameMsg{Gen: 2, Frame: models.ChatStreamFrame{Type: "error", Error: "slow down"}})
	assert.Contains(t, m.View(), "slow down")
}

func TestChatWithoutThread(t *testing.T) {
	m := NewChatModel(nil)
	assert.False(t, m.Typing())
	assert.Contains(t, m.View(), "No conversation open")
}

func TestChatStreamRoundTrip(t *testing.T) {
	client := newClient(t, true)
	m := NewChatModel(client)

	m, cmd := m.Open("u1", "Asha")
	require.NotNil(t, cmd)
	assert.True(t, m.connecting)
	assert.True(t, m.Typing())

	msg := dial(client, "u1", m.connGen)()
	connected, ok := msg.(ChatConnectedMsg)
	require.True(t, ok, "got %T", msg)
	m, cmd = m.Update(connected)
	require.True(t, m.connected)
	t.Cleanup(m.Close)

	m, _ = m.Update(cmd())
	assert.Empty(t, m.messages)

	for _, r := range "hello" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd = m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Empty(t, m.input.Value())

	frame, ok := listen(m.conn, m.connGen)().(ChatFrameMsg)
	require.True(t, ok)
	m, _ = m.Update(frame)
	require.Len(t, m.messages, 1)
	assert.Equal(t, "hello", m.messages[0].Message)
	assert.Equal(t, models.SenderDoctor, m.messages[0].SenderType)
}

func TestChatDialWithoutSession(t *testing.T) {
	client := newClient(t, false)
	assert.IsType(t, SessionExpiredMsg{}, dial(client, "u1", 1)())
}

func TestWindow(t *testing.T) {
	start, end := window(0, 5, 10)
	assert.Equal(t, []int{0, 5}, []int{start, end})

	start, end = window(19, 20, 10)
	assert.Equal(t, []int{10, 20}, []int{start, end})

	start, end = window(8, 20, 10)
	assert.Equal(t, []int{3, 13}, []int{start, end})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-1, 0, 4))
	assert.Equal(t, 4, clamp(9, 0, 4))
	assert.Equal(t, 0, clamp(3, 0, -1))
}
