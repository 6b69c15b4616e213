package models

import "time"

// NotificationDisapproval is one concern raised by a parent
type NotificationDisapproval struct {
	VideoName string    `json:"video_name"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

// Notification groups the concerns of a single parent - matches schema.sql
type Notification struct {
	UserName     string                    `json:"user_name" db:"user_name"`
	UserID       *string                   `json:"user_id,omitempty" db:"user_id"`
	UserPhone    string                    `json:"user_phone" db:"user_phone"`
	Disapprovals []NotificationDisapproval `json:"disapprovals,omitempty" db:"disapprovals"`
	UpdatedAt    time.Time                 `json:"updated_at" db:"updated_at"`
}

// DisapprovalType is the only kind of entry the parent app writes
const DisapprovalType = "disapprove"
