package analytics

import (
	"time"

	"devdash/pkg/models"
	"devdash/pkg/utils"
)

// ComputeDashboardStats rolls up the headline numbers. ActiveUsersToday counts
// users active since midnight of now, in now's location.
func ComputeDashboardStats(users []models.User, stats []models.VideoStats, engagements []models.VideoEngagement, now time.Time) models.DashboardStats {
	midnight := utils.StartOfDay(now)

	active := 0
	for _, u := range users {
		if u.LastActive != nil && !u.LastActive.Before(midnight) {
			active++
		}
	}

	var views, approvals, disapprovals int
	for _, vs := range stats {
		views += vs.TotalViews
		approvals += vs.TotalApprovals
		disapprovals += vs.TotalDisapprovals
	}

	return models.DashboardStats{
		TotalUsers:         len(users),
		TotalVideos:        len(stats),
		TotalEngagements:   len(engagements),
		ActiveUsersToday:   active,
		TotalViews:         views,
		AverageVideoRating: ApprovalRate(approvals, disapprovals),
	}
}
