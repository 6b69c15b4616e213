package websocket

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devdash/internal/broker"
	"devdash/internal/core"
	"devdash/internal/repository/memrepo"
	"devdash/pkg/models"
)

func newStreamServer(t *testing.T, opts Options) (*httptest.Server, *Hub, *memrepo.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memrepo.New()
	_, _, chats, _ := store.Repositories()
	b := broker.NewMemory()
	hub := NewHub(core.NewChatService(chats, b, "doctor-1"))

	router := gin.New()
	NewHandler(hub, opts).Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Stop()
		srv.Close()
		_ = b.Close()
	})
	return srv, hub, store
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chats/" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) models.ChatStreamFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame models.ChatStreamFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestChatStreamSnapshotAndSend(t *testing.T) {
	srv, hub, store := newStreamServer(t, Options{})
	conn := dial(t, srv, "u1")

	first := readFrame(t, conn)
	assert.Equal(t, FrameSnapshot, first.Type)
	assert.Equal(t, "u1", first.UserID)
	assert.Empty(t, first.Messages)
	assert.Equal(t, 1, hub.ThreadClientCount("u1"))

	require.NoError(t, conn.WriteJSON(models.ChatStreamInbound{Message: "Try tummy time daily"}))
	next := readFrame(t, conn)
	assert.Equal(t, FrameSnapshot, next.Type)
	require.Len(t, next.Messages, 1)
	assert.Equal(t, "Try tummy time daily", next.Messages[0].Message)
	assert.Equal(t, models.SenderDoctor, next.Messages[0].SenderType)
	assert.Len(t, store.ChatMessages(), 1)
}

func TestChatStreamRejectsInvalidFrames(t *testing.T) {
	srv, _, store := newStreamServer(t, Options{})
	conn := dial(t, srv, "u1")
	readFrame(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	frame := readFrame(t, conn)
	assert.Equal(t, FrameError, frame.Type)

	require.NoError(t, conn.WriteJSON(models.ChatStreamInbound{Message: "   "}))
	frame = readFrame(t, conn)
	assert.Equal(t, FrameError, frame.Type)
	assert.Equal(t, models.ErrEmptyMessage.Error(), frame.Error)
	assert.Empty(t, store.ChatMessages())
}

func TestChatStreamRateLimit(t *testing.T) {
	srv, _, store := newStreamServer(t, Options{SendRatePerSec: 0.001, SendBurst: 1})
	conn := dial(t, srv, "u1")
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(models.ChatStreamInbound{Message: "one"}))
	require.Equal(t, FrameSnapshot, readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(models.ChatStreamInbound{Message: "two"}))
	frame := readFrame(t, conn)
	assert.Equal(t, FrameError, frame.Type)
	assert.Equal(t, models.ErrChatRateLimited.Error(), frame.Error)
	assert.Len(t, store.ChatMessages(), 1)
}

func TestChatStreamUnregistersOnClose(t *testing.T) {
	srv, hub, _ := newStreamServer(t, Options{})
	conn := dial(t, srv, "u1")
	readFrame(t, conn)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ThreadClientCount("u1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://dash.example.org"})
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws/chats/u1", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}
	assert.True(t, check(req("")))
	assert.True(t, check(req("https://dash.example.org")))
	assert.True(t, check(req("http://localhost:3000")))
	assert.False(t, check(req("https://evil.example.com")))
}

func TestCloseError(t *testing.T) {
	code, reason := closeError(errors.New("redis down")).ToWebSocketError()
	assert.Equal(t, websocket.CloseInternalServerErr, code)
	assert.Equal(t, "subscribe failed", reason)

	notFound := models.NewHTTPError(models.ErrCodeNotFound, "resource not found", 404, models.ErrNotFound)
	code, _ = closeError(notFound).ToWebSocketError()
	assert.Equal(t, websocket.CloseNormalClosure, code)
}
