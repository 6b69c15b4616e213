package models

import "time"

// APIResponse is the envelope every JSON endpoint answers with
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// AccessRequest is the body of POST /api/access
type AccessRequest struct {
	Code string `json:"code"`
}

// AccessResponse keeps the plain {success,message} body the front end expects
type AccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ChatStreamFrame is a websocket frame pushed to chat subscribers
type ChatStreamFrame struct {
	Type     string        `json:"type"` // snapshot, error
	UserID   string        `json:"user_id,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// ChatStreamInbound is a websocket frame sent by the dashboard
type ChatStreamInbound struct {
	Message string `json:"message"`
}
