package models

import "time"

// Vote is a parent's feedback on a milestone video
type Vote string

const (
	VoteApprove    Vote = "approve"
	VoteDisapprove Vote = "disapprove"
	VoteNone       Vote = "none"
)

// Valid reports whether v is one of the known votes
func (v Vote) Valid() bool {
	switch v {
	case VoteApprove, VoteDisapprove, VoteNone:
		return true
	}
	return false
}

// VideoEngagement is one user's interaction with one video - matches schema.sql
type VideoEngagement struct {
	VideoID    string    `json:"video_id" db:"video_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Vote       Vote      `json:"vote" db:"vote"`
	ViewCount  int       `json:"view_count" db:"view_count"`
	LastViewed time.Time `json:"last_viewed" db:"last_viewed"`
}

// VideoStats holds the externally maintained per-video counters
type VideoStats struct {
	VideoID           string `json:"video_id" db:"video_id"`
	TotalViews        int    `json:"total_views" db:"total_views"`
	TotalApprovals    int    `json:"total_approvals" db:"total_approvals"`
	TotalDisapprovals int    `json:"total_disapprovals" db:"total_disapprovals"`
	VideoName         string `json:"video_name,omitempty"`
}

// VideoMetadata describes a catalog entry for display
type VideoMetadata struct {
	VideoID     string `json:"video_id"`
	VideoName   string `json:"video_name"`
	Category    string `json:"category"`
	AgeGroup    string `json:"age_group"`
	Description string `json:"description,omitempty"`
}
