package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"devdash/internal/tui/api"
	"devdash/internal/tui/styles"
	"devdash/pkg/models"
	"devdash/pkg/utils"
)

const (
	chatVisibleMessages = 14
	dialTimeout         = 10 * time.Second
)

// ChatModel streams one parent's thread and sends doctor replies
type ChatModel struct {
	apiClient *api.Client

	userID   string
	userName string

	conn       *websocket.Conn
	connected  bool
	connecting bool
	// connGen increments on every (re)connect so stale reads are ignored
	connGen int64

	// messages are kept oldest first for display
	messages     []models.ChatMessage
	input        textinput.Model
	scrollOffset int
	lastError    error
	width        int
}

// ChatConnectedMsg is sent when the stream is open
type ChatConnectedMsg struct {
	Gen  int64
	Conn *websocket.Conn
}

// ChatDisconnectedMsg is sent when the stream closes
type ChatDisconnectedMsg struct{ Gen int64 }

// ChatFrameMsg carries one frame read from the stream
type ChatFrameMsg struct {
	Gen   int64
	Frame models.ChatStreamFrame
}

// ChatErrorMsg is sent on stream failures
type ChatErrorMsg struct {
	Gen int64
	Err error
}

type chatReadMsg struct{ updated int64 }

// NewChatModel creates the chat view with no thread open
func NewChatModel(apiClient *api.Client) ChatModel {
	input := textinput.New()
	input.Placeholder = "Reply to the parent... (Enter to send)"
	input.CharLimit = models.MaxChatMessageLength
	input.Width = 60
	return ChatModel{apiClient: apiClient, input: input}
}

func (m ChatModel) Init() tea.Cmd {
	return nil
}

// Typing reports whether the reply box has focus
func (m ChatModel) Typing() bool { return m.input.Focused() }

// UserID returns the parent whose thread is open
func (m ChatModel) UserID() string { return m.userID }

// Open switches the view to userID's thread and dials its stream
func (m ChatModel) Open(userID, userName string) (ChatModel, tea.Cmd) {
	if m.userID == userID && (m.connected || m.connecting) {
		return m, m.input.Focus()
	}
	m.Close()
	m.userID = userID
	m.userName = userName
	m.messages = nil
	m.scrollOffset = 0
	focus := m.input.Focus()
	m, connect := m.startConnect()
	return m, tea.Batch(focus, connect, m.markRead())
}

func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 10; w > 0 && w < 60 {
			m.input.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChatConnectedMsg:
		if msg.Gen != m.connGen {
			_ = msg.Conn.Close()
			return m, nil
		}
		m.connecting = false
		m.connected = true
		m.conn = msg.Conn
		m.lastError = nil
		return m, listen(msg.Conn, msg.Gen)

	case ChatFrameMsg:
		if msg.Gen != m.connGen {
			return m, nil
		}
		switch msg.Frame.Type {
		case "error":
			m.lastError = errors.New(msg.Frame.Error)
		default:
			m.messages = oldestFirst(msg.Frame.Messages)
			m.scrollOffset = 0
		}
		return m, listen(m.conn, msg.Gen)

	case ChatDisconnectedMsg:
		if msg.Gen != m.connGen {
			return m, nil
		}
		m.connected = false
		m.connecting = false
		m.conn = nil
		return m, nil

	case ChatErrorMsg:
		if msg.Gen != m.connGen {
			return m, nil
		}
		m.connecting = false
		m.connected = false
		m.lastError = msg.Err
		return m, nil

	case chatReadMsg:
		return m, nil
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (ChatModel, tea.Cmd) {
	if m.userID == "" {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if !m.input.Focused() {
			return m, m.input.Focus()
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" || !m.connected {
			return m, nil
		}
		m.input.SetValue("")
		return m, send(m.conn, m.connGen, text)
	case "esc":
		if m.input.Focused() {
			m.input.Blur()
			return m, nil
		}
	case "ctrl+r":
		return m.startConnect()
	case "pgup":
		if m.scrollOffset < len(m.messages)-1 {
			m.scrollOffset++
		}
		return m, nil
	case "pgdown":
		if m.scrollOffset > 0 {
			m.scrollOffset--
		}
		return m, nil
	}

	if !m.input.Focused() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) startConnect() (ChatModel, tea.Cmd) {
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.connGen++
	m.connecting = true
	m.connected = false
	m.lastError = nil
	return m, dial(m.apiClient, m.userID, m.connGen)
}

func (m ChatModel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Chat"))
	b.WriteString("  ")

	if m.userID == "" {
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("No conversation open. Pick a parent in the Parents view (3) and press c."))
		return b.String()
	}

	name := m.userName
	if name == "" {
		name = m.userID
	}
	b.WriteString(styles.BadgeMutedStyle.Render(name))
	b.WriteString("  ")
	switch {
	case m.connected:
		b.WriteString(styles.SuccessStyle.Render("● live"))
	case m.connecting:
		b.WriteString(styles.WarningStyle.Render("○ connecting..."))
	default:
		b.WriteString(styles.ErrorStyle.Render("○ disconnected"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderMessages())
	b.WriteString("\n")

	width := 70
	if m.width > 0 && m.width-4 < width {
		width = m.width - 4
	}
	b.WriteString(styles.RenderDivider(width))
	b.WriteString("\n")

	if m.lastError != nil {
		b.WriteString(styles.ErrorStyle.Render("  " + m.lastError.Error()))
		b.WriteString("\n")
	}
	if m.connected {
		b.WriteString("  ")
		b.WriteString(m.input.View())
	} else {
		b.WriteString(styles.HelpStyle.Render("  [not connected, press ctrl+r to reconnect]"))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("enter send • esc leave input • ctrl+r reconnect • pgup/pgdn scroll"))
	return b.String()
}

func (m ChatModel) renderMessages() string {
	if len(m.messages) == 0 {
		return styles.HelpStyle.Render("  No messages yet") + "\n"
	}

	var b strings.Builder
	end := len(m.messages) - m.scrollOffset
	start := end - chatVisibleMessages
	if start < 0 {
		start = 0
	}
	if start > 0 {
		b.WriteString(styles.HelpStyle.Render(fmt.Sprintf("  ↑ %d older messages", start)))
		b.WriteString("\n")
	}
	for _, msg := range m.messages[start:end] {
		b.WriteString("  ")
		b.WriteString(styles.TimestampStyle.Render("[" + utils.FormatTimestamp(msg.Timestamp.Local()) + "] "))
		if msg.SenderType == models.SenderDoctor {
			b.WriteString(styles.DoctorMessageStyle.Render("Doctor: "))
		} else {
			b.WriteString(styles.ParentMessageStyle.Render(m.parentLabel() + ": "))
		}
		b.WriteString(msg.Message)
		b.WriteString("\n")
	}
	if m.scrollOffset > 0 {
		b.WriteString(styles.HelpStyle.Render(fmt.Sprintf("  ↓ %d newer messages", m.scrollOffset)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m ChatModel) parentLabel() string {
	if m.userName != "" {
		return m.userName
	}
	return "Parent"
}

// Close ends the current stream
func (m *ChatModel) Close() {
	m.connGen++
	if m.conn != nil {
		_ = m.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = m.conn.Close()
		m.conn = nil
	}
	m.connected = false
	m.connecting = false
}

func (m ChatModel) markRead() tea.Cmd {
	client, userID := m.apiClient, m.userID
	return fetch(func(ctx context.Context) tea.Msg {
		n, err := client.MarkRead(ctx, userID)
		if err != nil {
			return errMsg{err}
		}
		return chatReadMsg{updated: n}
	}, func(err error) tea.Msg { return ChatErrorMsg{Gen: -1, Err: err} })
}

func dial(client *api.Client, userID string, gen int64) tea.Cmd {
	return func() tea.Msg {
		dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
		conn, resp, err := dialer.Dial(client.ChatStreamURL(userID), client.SessionHeader())
		if err != nil {
			if resp != nil {
				defer resp.Body.Close()
				if resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusUnauthorized {
					return SessionExpiredMsg{}
				}
				return ChatErrorMsg{Gen: gen, Err: fmt.Errorf("connection failed: %w (status=%d)", err, resp.StatusCode)}
			}
			return ChatErrorMsg{Gen: gen, Err: fmt.Errorf("connection failed: %w", err)}
		}
		return ChatConnectedMsg{Gen: gen, Conn: conn}
	}
}

func listen(conn *websocket.Conn, gen int64) tea.Cmd {
	return func() tea.Msg {
		if conn == nil {
			return ChatDisconnectedMsg{Gen: gen}
		}
		var frame models.ChatStreamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if isExpectedCloseErr(err) {
				return ChatDisconnectedMsg{Gen: gen}
			}
			return ChatErrorMsg{Gen: gen, Err: fmt.Errorf("read failed: %w", err)}
		}
		return ChatFrameMsg{Gen: gen, Frame: frame}
	}
}

func send(conn *websocket.Conn, gen int64, text string) tea.Cmd {
	return func() tea.Msg {
		if conn == nil {
			return ChatErrorMsg{Gen: gen, Err: errors.New("not connected")}
		}
		if err := conn.WriteJSON(models.ChatStreamInbound{Message: text}); err != nil {
			if isExpectedCloseErr(err) {
				return ChatDisconnectedMsg{Gen: gen}
			}
			return ChatErrorMsg{Gen: gen, Err: fmt.Errorf("send failed: %w", err)}
		}
		return nil
	}
}

// oldestFirst reverses a newest-first batch
func oldestFirst(msgs []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(msgs))
	for i, msg := range msgs {
		out[len(msgs)-1-i] = msg
	}
	return out
}

func isExpectedCloseErr(err error) bool {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
