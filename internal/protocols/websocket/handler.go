package websocket

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"devdash/pkg/logger"
	"devdash/pkg/models"
	"devdash/pkg/utils"
)

// Options configure the chat stream handler
type Options struct {
	// AllowedOrigins lists browser origins allowed to connect; "*" allows any.
	// Localhost origins and requests without an Origin header are always allowed.
	AllowedOrigins []string
	SendRatePerSec float64
	SendBurst      int
}

// Handler upgrades chat stream requests
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	rate     rate.Limit
	burst    int
}

// NewHandler creates a handler serving streams through hub
func NewHandler(hub *Hub, opts Options) *Handler {
	h := &Handler{
		hub:   hub,
		rate:  rate.Limit(opts.SendRatePerSec),
		burst: opts.SendBurst,
	}
	if opts.SendRatePerSec <= 0 {
		h.rate = rate.Inf
	}
	if h.burst <= 0 {
		h.burst = 1
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return h
}

// Register mounts the stream routes on router
func (h *Handler) Register(router gin.IRoutes) {
	router.GET("/ws/chats/:user_id", h.HandleChat)
	router.GET("/ws/chats/:user_id/status", h.ThreadStatus)
}

// HandleChat upgrades the request into a chat stream for :user_id
func (h *Handler) HandleChat(c *gin.Context) {
	userID := c.Param("user_id")
	if !utils.ValidUserID(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		logrus.Warnf("chat stream upgrade failed: user_id=%s err=%v", userID, err)
		return
	}

	if err := h.hub.ServeClient(conn, userID, rate.NewLimiter(h.rate, h.burst)); err != nil {
		logrus.Errorf("chat stream subscribe failed: user_id=%s err=%v", userID, err)
		code, reason := closeError(err).ToWebSocketError()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
		_ = conn.Close()
		return
	}
	logger.WebSocket(userID, "connected", c.ClientIP())
}

// ThreadStatus reports how many dashboards are watching a thread
func (h *Handler) ThreadStatus(c *gin.Context) {
	userID := c.Param("user_id")
	count := h.hub.ThreadClientCount(userID)
	c.JSON(http.StatusOK, gin.H{
		"user_id":        userID,
		"client_count":   count,
		"active":         count > 0,
		"active_threads": h.hub.ActiveThreads(),
		"server_time":    time.Now().UTC(),
	})
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set["*"] || set[origin] {
			return true
		}
		if u, err := url.Parse(origin); err == nil {
			host := strings.ToLower(u.Hostname())
			if host == "localhost" || host == "127.0.0.1" {
				return true
			}
		}
		return false
	}
}

// closeError keeps an AppError from the data layer, else reports a failed subscribe
func closeError(err error) *models.AppError {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewWebSocketError(websocket.CloseInternalServerErr, models.ErrCodeInternal, "subscribe failed", err)
}
