package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devdash/internal/broker"
	"devdash/internal/catalog"
	"devdash/internal/core"
	"devdash/internal/repository/memrepo"
	"devdash/pkg/logger"
	"devdash/pkg/models"
)

const testCode = "open-sesame"

type testEnv struct {
	server *Server
	store  *memrepo.Store
	access core.AccessService
}

func newTestEnv(t *testing.T, code string) *testEnv {
	t.Helper()
	return newTestEnvWithClock(t, code, nil)
}

// newTestEnvWithClock builds the server with an access service reading clock
func newTestEnvWithClock(t *testing.T, code string, clock func() time.Time) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memrepo.New()
	store.Users = []models.User{{ID: "u1", Name: "Asha", PhoneNumber: "+911", LastActive: &now}}
	store.Stats = []models.VideoStats{{VideoID: "v1", TotalViews: 100, TotalApprovals: 40, TotalDisapprovals: 10}}
	store.Engagements = []models.VideoEngagement{
		{VideoID: "v1", UserID: "u1", Vote: models.VoteApprove, ViewCount: 3, LastViewed: now.Add(-time.Hour)},
	}

	users, videos, chats, notifications := store.Repositories()
	b := broker.NewMemory()
	t.Cleanup(func() { _ = b.Close() })

	access := core.NewAccessService(core.AccessOptions{Code: code, SessionSecret: "secret", Issuer: "devdash", Now: clock})
	srv := NewServer(Options{
		Access: access,
		Dashboard: core.NewDashboardService(users, videos, notifications, catalog.Default(), core.DashboardOptions{
			Now: func() time.Time { return now },
		}),
		Chat: core.NewChatService(chats, b, "doctor-1"),
	})
	return &testEnv{server: srv, store: store, access: access}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.server.Router().ServeHTTP(w, req)
	return w
}

func (e *testEnv) session(t *testing.T) *http.Cookie {
	t.Helper()
	grant, err := e.access.Verify(testCode)
	require.NoError(t, err)
	return &http.Cookie{Name: core.SessionCookieName, Value: grant.Token}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) models.APIResponse {
	t.Helper()
	var raw struct {
		models.APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.APIResponse
}

func TestIsPublicPath(t *testing.T) {
	public := []string{"/access", "/access/help", "/_next/static/app.js", "/favicon.ico", "/api/access", "/api/access/logout", "/robots.txt", "/sitemap.xml", "/health"}
	for _, p := range public {
		assert.True(t, IsPublicPath(p), p)
	}
	gated := []string{"/", "/users", "/api/v1/dashboard", "/robots.txt/x", "/ws/chats/u1"}
	for _, p := range gated {
		assert.False(t, IsPublicPath(p), p)
	}
}

func TestGateRedirectsWithoutSession(t *testing.T) {
	env := newTestEnv(t, testCode)

	w := env.do(t, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/access?next=%2Fusers", w.Header().Get("Location"))

	w = env.do(t, http.MethodGet, "/api/v1/dashboard", "", &http.Cookie{Name: core.SessionCookieName, Value: "true"})
	assert.Equal(t, http.StatusFound, w.Code)

	w = env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/access", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/access")
}

func TestGateRedirectsExpiredSession(t *testing.T) {
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	env := newTestEnvWithClock(t, testCode, func() time.Time { return clock })
	session := env.session(t)

	w := env.do(t, http.MethodGet, "/api/v1/dashboard", "", session)
	require.Equal(t, http.StatusOK, w.Code)

	clock = clock.Add(core.DefaultSessionTTL + time.Minute)
	w = env.do(t, http.MethodGet, "/api/v1/dashboard?range=today", "", session)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/access?next=%2Fapi%2Fv1%2Fdashboard", w.Header().Get("Location"))
}

func TestAccessEndpoint(t *testing.T) {
	env := newTestEnv(t, testCode)

	w := env.do(t, http.MethodPost, "/api/access", `{"code":"`+testCode+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == core.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(core.DefaultSessionTTL.Seconds()), cookie.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	w = env.do(t, http.MethodGet, "/users", "", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code, "gate passes, no page route exists")

	w = env.do(t, http.MethodPost, "/api/access", `{"code":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid code"}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/access", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Bad request"}`, w.Body.String())

	for _, body := range []string{`{}`, `{"code":""}`} {
		w = env.do(t, http.MethodPost, "/api/access", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, body)
		assert.JSONEq(t, `{"success":false,"message":"Invalid code"}`, w.Body.String(), body)
	}
}

func TestAccessEndpointNotConfigured(t *testing.T) {
	env := newTestEnv(t, "")

	for _, body := range []string{`{"code":"anything"}`, `{}`, `{"code":""}`} {
		w := env.do(t, http.MethodPost, "/api/access", body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, body)
		assert.JSONEq(t, `{"success":false,"message":"Server not configured"}`, w.Body.String(), body)
	}

	w := env.do(t, http.MethodPost, "/api/access", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t, testCode)

	w := env.do(t, http.MethodPost, "/api/access/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, core.SessionCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestDashboardEndpoints(t *testing.T) {
	env := newTestEnv(t, testCode)
	session := env.session(t)

	w := env.do(t, http.MethodGet, "/api/v1/dashboard", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.DashboardStats
	resp := decodeEnvelope(t, w, &stats)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 100, stats.TotalViews)
	assert.Equal(t, 1, stats.ActiveUsersToday)

	w = env.do(t, http.MethodGet, "/api/v1/videos/summary", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	var summaries []models.VideoEngagementSummary
	decodeEnvelope(t, w, &summaries)
	require.Len(t, summaries, 1)
	assert.InDelta(t, 1.0, summaries[0].EngagementRate, 1e-9)

	w = env.do(t, http.MethodGet, "/api/v1/videos?sort=engagement", "", session)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/videos/v1", "", session)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/videos/nope", "", session)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/analytics?limit=5", "", session)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/users?q=ash&sort=name", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	var users []models.UserWithStats
	decodeEnvelope(t, w, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/analytics", "", session)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/ghost/analytics", "", session)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp = decodeEnvelope(t, w, nil)
	assert.False(t, resp.Success)

	w = env.do(t, http.MethodGet, "/api/v1/activity/recent?limit=3", "", session)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/notifications", "", session)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatEndpoints(t *testing.T) {
	env := newTestEnv(t, testCode)
	session := env.session(t)

	w := env.do(t, http.MethodPost, "/api/v1/chats/u1/messages", `{"message":"How is the crawling going?"}`, session)
	require.Equal(t, http.StatusCreated, w.Code)
	var msg models.ChatMessage
	decodeEnvelope(t, w, &msg)
	assert.Equal(t, models.SenderDoctor, msg.SenderType)

	w = env.do(t, http.MethodPost, "/api/v1/chats/u1/messages", `{"message":"   "}`, session)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	long := bytes.Repeat([]byte("a"), models.MaxChatMessageLength+1)
	w = env.do(t, http.MethodPost, "/api/v1/chats/u1/messages", `{"message":"`+string(long)+`"}`, session)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/chats/u1/messages", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	var history []models.ChatMessage
	decodeEnvelope(t, w, &history)
	require.Len(t, history, 1)

	w = env.do(t, http.MethodPost, "/api/v1/chats/u1/read", "", session)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, testCode)

	w := env.do(t, http.MethodGet, "/health", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "trace-7")
	w = httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)
	assert.Equal(t, "trace-7", w.Header().Get(RequestIDHeader))
}

func TestServerErrorLogCarriesRequestID(t *testing.T) {
	env := newTestEnv(t, testCode)
	session := env.session(t)
	env.store.ChatErr = errors.New("connection reset")

	var buf bytes.Buffer
	logger.Init(logger.Config{Format: "json"})
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.Init(logger.Config{}) })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/u1/messages", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "trace-500")
	req.AddCookie(session)
	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), `"request_id":"trace-500"`)
	assert.Contains(t, buf.String(), "connection reset")
}
