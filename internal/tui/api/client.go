// Package api is the HTTP client for the dashboard API, shared by the TUI and the CLI
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"devdash/pkg/models"
)

// ErrSessionRequired is returned when the server redirects to the access page
var ErrSessionRequired = errors.New("access code required: run the access login first")

// sessionCookie matches the cookie name set by POST /api/access
const sessionCookie = "access_granted"

// Client handles HTTP API communication
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    string
}

// NewClient creates a client for the server at baseURL, e.g. http://localhost:8080
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// the gate answers with a redirect, surface it instead of following
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// BaseURL returns the server root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetSession sets the session marker sent with every request
func (c *Client) SetSession(token string) {
	c.session = token
}

// Session returns the current session marker
func (c *Client) Session() string {
	return c.session
}

// doRequest performs an HTTP request with common handling
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.session})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// decodeAPIResponse decodes the APIResponse envelope and unmarshals the data field into target
func decodeAPIResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusSeeOther {
		return ErrSessionRequired
	}

	var apiResp apiResponse
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !apiResp.Success {
		msg := apiResp.Error
		if msg == "" {
			msg = apiResp.Message
		}
		if msg == "" {
			msg = "request failed"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if target != nil && len(apiResp.Data) > 0 {
		if err := json.Unmarshal(apiResp.Data, target); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, target interface{}) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeAPIResponse(resp, target)
}

// Access endpoints

// Access exchanges the shared code for a session marker and keeps it
func (c *Client) Access(ctx context.Context, code string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/access", models.AccessRequest{Code: code})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body models.AccessResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		return "", &APIError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie {
			c.session = ck.Value
			return ck.Value, nil
		}
	}
	return "", errors.New("server did not return a session cookie")
}

// Logout clears the session on the server and locally
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/access/logout", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	c.session = ""
	return nil
}

// Health reports whether the server answers /health with 200
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: "unhealthy"}
	}
	return nil
}

// Dashboard endpoints

func (c *Client) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.get(ctx, "/api/v1/dashboard", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) VideoSummaries(ctx context.Context) ([]models.VideoEngagementSummary, error) {
	var out []models.VideoEngagementSummary
	if err := c.get(ctx, "/api/v1/videos/summary", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Videos lists videos matching query, sorted by views, approvals or engagement
func (c *Client) Videos(ctx context.Context, query, sortBy string) ([]models.VideoWithEngagements, error) {
	var out []models.VideoWithEngagements
	if err := c.get(ctx, "/api/v1/videos"+searchQuery(query, sortBy), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Video(ctx context.Context, id string) (*models.VideoDetail, error) {
	var out models.VideoDetail
	if err := c.get(ctx, "/api/v1/videos/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Analytics(ctx context.Context, limit int) (*models.AnalyticsOverview, error) {
	var out models.AnalyticsOverview
	if err := c.get(ctx, "/api/v1/analytics?limit="+strconv.Itoa(limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users lists parents matching query, sorted by name, activity or engagements
func (c *Client) Users(ctx context.Context, query, sortBy string) ([]models.UserWithStats, error) {
	var out []models.UserWithStats
	if err := c.get(ctx, "/api/v1/users"+searchQuery(query, sortBy), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UserAnalytics(ctx context.Context, userID string) (*models.UserAnalytics, error) {
	var out models.UserAnalytics
	if err := c.get(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/analytics", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecentActivity(ctx context.Context, limit int) ([]models.ActivityItem, error) {
	var out []models.ActivityItem
	if err := c.get(ctx, "/api/v1/activity/recent?limit="+strconv.Itoa(limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.get(ctx, "/api/v1/notifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Chat endpoints

// Messages returns the newest messages of a thread, newest first
func (c *Client) Messages(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	if err := c.get(ctx, "/api/v1/chats/"+url.PathEscape(userID)+"/messages", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage posts a doctor reply
func (c *Client) SendMessage(ctx context.Context, userID, text string) (*models.ChatMessage, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/chats/"+url.PathEscape(userID)+"/messages",
		models.SendChatMessageRequest{Message: text})
	if err != nil {
		return nil, err
	}
	var out models.ChatMessage
	if err := decodeAPIResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkRead(ctx context.Context, userID string) (int64, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/chats/"+url.PathEscape(userID)+"/read", nil)
	if err != nil {
		return 0, err
	}
	var out struct {
		Updated int64 `json:"updated"`
	}
	if err := decodeAPIResponse(resp, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// ChatStreamURL returns the websocket URL of a thread's stream
func (c *Client) ChatStreamURL(userID string) string {
	base := c.baseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/chats/" + url.PathEscape(userID)
}

// SessionHeader returns the Cookie header to send when dialing the chat stream
func (c *Client) SessionHeader() http.Header {
	h := http.Header{}
	if c.session != "" {
		h.Set("Cookie", (&http.Cookie{Name: sessionCookie, Value: c.session}).String())
	}
	return h
}

func searchQuery(query, sortBy string) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if sortBy != "" {
		v.Set("sort", sortBy)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
