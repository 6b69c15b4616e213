package models

import "time"

// EngagedUser is one of the top viewers of a video
type EngagedUser struct {
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	TotalViews int    `json:"total_views"`
}

// VideoEngagementSummary is the per-video engagement roll-up
type VideoEngagementSummary struct {
	VideoID         string        `json:"video_id"`
	VideoName       string        `json:"video_name"`
	TotalViews      int           `json:"total_views"`
	UniqueViewers   int           `json:"unique_viewers"`
	Approvals       int           `json:"approvals"`
	Disapprovals    int           `json:"disapprovals"`
	EngagementRate  float64       `json:"engagement_rate"`
	TopEngagedUsers []EngagedUser `json:"top_engaged_users"`
}

// DevelopmentProgress summarises a child's progress from their parent's votes
type DevelopmentProgress struct {
	AgeGroup            string   `json:"age_group"`
	TotalMilestones     int      `json:"total_milestones"`
	CompletedMilestones int      `json:"completed_milestones"`
	Concerns            []string `json:"concerns"`
}

// UserAnalytics is the per-parent analytics view
type UserAnalytics struct {
	User                User                `json:"user"`
	Profile             *UserProfile        `json:"profile,omitempty"`
	VideoEngagements    []VideoEngagement   `json:"video_engagements"`
	TotalWatchTime      int                 `json:"total_watch_time"`
	FavoriteCategories  []string            `json:"favorite_categories"`
	DevelopmentProgress DevelopmentProgress `json:"development_progress"`
}

// DashboardStats are the headline numbers on the dashboard home
type DashboardStats struct {
	TotalUsers         int     `json:"total_users"`
	TotalVideos        int     `json:"total_videos"`
	TotalEngagements   int     `json:"total_engagements"`
	ActiveUsersToday   int     `json:"active_users_today"`
	TotalViews         int     `json:"total_views"`
	AverageVideoRating float64 `json:"average_video_rating"`
}

// UserWithStats is a row of the parents table
type UserWithStats struct {
	User
	TotalEngagements int     `json:"total_engagements"`
	ApprovalRate     float64 `json:"approval_rate"`
	LastVideoWatched string  `json:"last_video_watched"`
}

// VideoWithEngagements is a row of the videos table
type VideoWithEngagements struct {
	VideoStats
	Engagements          []VideoEngagement `json:"engagements,omitempty"`
	UniqueViewers        int               `json:"unique_viewers"`
	TotalEngagementViews int               `json:"total_engagement_views"`
	AverageViewsPerUser  float64           `json:"average_views_per_user"`
	EngagementRate       float64           `json:"engagement_rate"`
}

// VideoDetail is a single video with its viewers resolved to names
type VideoDetail struct {
	VideoWithEngagements
	AgeCategory string            `json:"age_category"`
	Category    string            `json:"category"`
	ViewerNames map[string]string `json:"viewer_names"`
}

// TopPerformingVideo is a leaderboard entry of the analytics overview
type TopPerformingVideo struct {
	VideoEngagementSummary
	Category string `json:"category"`
	ShortID  string `json:"short_id"`
}

// AnalyticsOverview is the analytics page payload
type AnalyticsOverview struct {
	TotalVideos           int                  `json:"total_videos"`
	TotalUsers            int                  `json:"total_users"`
	TotalViews            int                  `json:"total_views"`
	TotalApprovals        int                  `json:"total_approvals"`
	TotalConcerns         int                  `json:"total_concerns"`
	AverageEngagementRate float64              `json:"average_engagement_rate"`
	TopVideos             []TopPerformingVideo `json:"top_videos"`
}

// ActivityType classifies a recent activity item
type ActivityType string

const (
	ActivityRegistration ActivityType = "registration"
	ActivityView         ActivityType = "view"
	ActivityApprove      ActivityType = "approve"
	ActivityDisapprove   ActivityType = "disapprove"
)

// ActivityItem is one entry of the recent activity feed
type ActivityItem struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	UserID      string       `json:"user_id"`
	UserName    string       `json:"user_name"`
	VideoID     string       `json:"video_id,omitempty"`
	VideoName   string       `json:"video_name,omitempty"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}
