// Package websocket streams chat threads to the dashboard and accepts doctor
// replies over the same connection
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"devdash/internal/core"
	"devdash/pkg/models"
)

const (
	maxMessageSize = 16 * 1024
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendTimeout    = 5 * time.Second
)

// Frame types pushed to clients
const (
	FrameSnapshot = "snapshot"
	FrameError    = "error"
)

// Hub tracks the open chat streams per parent thread
type Hub struct {
	chatSvc core.ChatService

	mu      sync.RWMutex
	threads map[string]map[*Client]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Client is one dashboard connection watching a thread
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	userID  string
	limiter *rate.Limiter
	errs    chan models.ChatStreamFrame
	cancel  context.CancelFunc
}

// NewHub creates a hub whose streams read and write through chatSvc
func NewHub(chatSvc core.ChatService) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		chatSvc: chatSvc,
		threads: make(map[string]map[*Client]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// ServeClient subscribes conn to userID's thread and starts its pumps. The
// connection is closed when the client leaves or the hub stops.
func (h *Hub) ServeClient(conn *websocket.Conn, userID string, limiter *rate.Limiter) error {
	ctx, cancel := context.WithCancel(h.ctx)
	batches, err := h.chatSvc.Subscribe(ctx, userID)
	if err != nil {
		cancel()
		return err
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		userID:  userID,
		limiter: limiter,
		errs:    make(chan models.ChatStreamFrame, 8),
		cancel:  cancel,
	}
	h.register(client)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump(ctx, batches)
	}()
	go func() {
		defer h.wg.Done()
		client.readPump(ctx)
	}()
	return nil
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.threads[c.userID] == nil {
		h.threads[c.userID] = make(map[*Client]struct{})
	}
	h.threads[c.userID][c] = struct{}{}
	logrus.Debugf("chat stream opened: user_id=%s clients=%d", c.userID, len(h.threads[c.userID]))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.threads[c.userID][c]; !ok {
		return
	}
	delete(h.threads[c.userID], c)
	if len(h.threads[c.userID]) == 0 {
		delete(h.threads, c.userID)
	}
	logrus.Debugf("chat stream closed: user_id=%s", c.userID)
}

// ThreadClientCount returns the number of open streams on a thread
func (h *Hub) ThreadClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.threads[userID])
}

// ActiveThreads returns the number of threads with at least one stream
func (h *Hub) ActiveThreads() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.threads)
}

// Stop closes every stream and waits for the pumps to exit
func (h *Hub) Stop() {
	logrus.Info("stopping chat stream hub")
	h.cancel()
	h.wg.Wait()
	logrus.Info("chat stream hub stopped")
}

// readPump accepts {message} frames and sends them as the doctor
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.cancel()
		c.hub.unregister(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Warnf("chat stream read error: user_id=%s err=%v", c.userID, err)
			}
			return
		}

		var in models.ChatStreamInbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.sendError("invalid JSON frame")
			continue
		}
		if c.limiter != nil && !c.limiter.Allow() {
			c.sendError(models.ErrChatRateLimited.Error())
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		_, err = c.hub.chatSvc.Send(sendCtx, c.userID, in.Message)
		cancel()
		if err != nil {
			if errors.Is(err, models.ErrEmptyMessage) || errors.Is(err, models.ErrMessageTooLong) {
				c.sendError(err.Error())
				continue
			}
			logrus.Errorf("chat stream send failed: user_id=%s err=%v", c.userID, err)
			c.sendError("failed to send message")
		}
	}
}

// writePump forwards snapshots and error frames and keeps the connection alive
func (c *Client) writePump(ctx context.Context, batches <-chan models.ChatBatch) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.cancel()
		_ = c.conn.Close()
	}()

	for {
		select {
		case batch, ok := <-batches:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			frame := models.ChatStreamFrame{Type: FrameSnapshot, UserID: batch.UserID, Messages: batch.Messages}
			if frame.Messages == nil {
				frame.Messages = []models.ChatMessage{}
			}
			if err := c.write(frame); err != nil {
				return
			}

		case frame := <-c.errs:
			if err := c.write(frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

func (c *Client) write(frame models.ChatStreamFrame) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(frame)
}

func (c *Client) sendError(message string) {
	select {
	case c.errs <- models.ChatStreamFrame{Type: FrameError, UserID: c.userID, Error: message}:
	default:
	}
}
