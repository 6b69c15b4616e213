package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devdash/internal/broker"
	"devdash/internal/catalog"
	"devdash/internal/core"
	httpProtocol "devdash/internal/protocols/http"
	"devdash/internal/repository/memrepo"
	"devdash/pkg/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memrepo.New()
	store.Users = []models.User{{ID: "u1", Name: "Asha", PhoneNumber: "+911"}}
	store.Stats = []models.VideoStats{{VideoID: "v1", TotalViews: 12, TotalApprovals: 3}}
	users, videos, chats, notifications := store.Repositories()
	b := broker.NewMemory()

	srv := httpProtocol.NewServer(httpProtocol.Options{
		Access:    core.NewAccessService(core.AccessOptions{Code: "1234", SessionSecret: "s"}),
		Dashboard: core.NewDashboardService(users, videos, notifications, catalog.Default(), core.DashboardOptions{}),
		Chat:      core.NewChatService(chats, b, "doctor-1"),
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = b.Close()
	})
	return ts
}

func TestClientRequiresSession(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.URL)

	_, err := client.Dashboard(context.Background())
	assert.ErrorIs(t, err, ErrSessionRequired)

	_, err = client.Access(context.Background(), "nope")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "Invalid code", apiErr.Message)
}

func TestClientFlow(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.URL + "/")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Health(ctx))

	token, err := client.Access(ctx, "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, client.Session())

	stats, err := client.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 12, stats.TotalViews)

	videos, err := client.Videos(ctx, "v", "views")
	require.NoError(t, err)
	require.Len(t, videos, 1)

	_, err = client.UserAnalytics(ctx, "missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)

	msg, err := client.SendMessage(ctx, "u1", "Hello")
	require.NoError(t, err)
	assert.Equal(t, models.SenderDoctor, msg.SenderType)

	history, err := client.Messages(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	require.NoError(t, client.Logout(ctx))
	assert.Empty(t, client.Session())
}

func TestChatStreamURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8080/ws/chats/u1", NewClient("http://localhost:8080").ChatStreamURL("u1"))
	assert.Equal(t, "wss://dash.example.org/ws/chats/a%2Fb", NewClient("https://dash.example.org/").ChatStreamURL("a/b"))

	c := NewClient("http://x")
	assert.Empty(t, c.SessionHeader().Get("Cookie"))
	c.SetSession("tok")
	assert.Equal(t, "access_granted=tok", c.SessionHeader().Get("Cookie"))
}
