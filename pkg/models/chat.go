package models

import "time"

// SenderType identifies who wrote a chat message
type SenderType string

const (
	SenderUser   SenderType = "user"
	SenderDoctor SenderType = "doctor"
)

// MaxChatMessageLength caps a single message body
const MaxChatMessageLength = 5000

// ChatHistoryLimit is the number of messages returned per thread snapshot
const ChatHistoryLimit = 50

// ChatMessage belongs to the thread between one parent and the doctor - matches schema.sql
type ChatMessage struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	DoctorID   *string    `json:"doctor_id,omitempty" db:"doctor_id"`
	Message    string     `json:"message" db:"message"`
	Timestamp  time.Time  `json:"timestamp" db:"timestamp"`
	SenderType SenderType `json:"sender_type" db:"sender_type"`
	Read       bool       `json:"read" db:"read"`
}

// SendChatMessageRequest is the body for posting a doctor reply
type SendChatMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatBatch is one push update of a thread: the latest messages, newest first
type ChatBatch struct {
	UserID   string        `json:"user_id"`
	Messages []ChatMessage `json:"messages"`
	SentAt   time.Time     `json:"sent_at"`
}
