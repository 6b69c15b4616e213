package analytics

import (
	"sort"
	"strings"

	"devdash/pkg/models"
)

// Parent table sort keys
const (
	SortUsersByName        = "name"
	SortUsersByActivity    = "activity"
	SortUsersByEngagements = "engagements"
)

// NoVideoWatched fills LastVideoWatched for users without engagements
const NoVideoWatched = "None"

// UserStats computes the parents table rows, in users order
func UserStats(users []models.User, engagements []models.VideoEngagement) []models.UserWithStats {
	byUser := groupByUser(engagements)

	out := make([]models.UserWithStats, 0, len(users))
	for _, u := range users {
		engs := byUser[u.ID]
		row := models.UserWithStats{
			User:             u,
			TotalEngagements: len(engs),
			LastVideoWatched: NoVideoWatched,
		}

		var approvals, disapprovals int
		var latest *models.VideoEngagement
		for i := range engs {
			switch engs[i].Vote {
			case models.VoteApprove:
				approvals++
			case models.VoteDisapprove:
				disapprovals++
			}
			if latest == nil || engs[i].LastViewed.After(latest.LastViewed) {
				latest = &engs[i]
			}
		}
		row.ApprovalRate = ApprovalRate(approvals, disapprovals)
		if latest != nil {
			row.LastVideoWatched = latest.VideoID
		}
		out = append(out, row)
	}
	return out
}

// FilterUsers keeps rows matching term on name, phone or email
func FilterUsers(rows []models.UserWithStats, term string) []models.UserWithStats {
	term = strings.TrimSpace(term)
	if term == "" {
		return rows
	}
	out := make([]models.UserWithStats, 0, len(rows))
	for _, r := range rows {
		if r.User.Matches(term) {
			out = append(out, r)
		}
	}
	return out
}

// SortUsers orders rows in place: name ascending, activity and engagements descending
func SortUsers(rows []models.UserWithStats, by string) {
	var less func(a, b models.UserWithStats) bool
	switch by {
	case SortUsersByActivity:
		less = func(a, b models.UserWithStats) bool { return unixOrZero(a.LastActive) > unixOrZero(b.LastActive) }
	case SortUsersByEngagements:
		less = func(a, b models.UserWithStats) bool { return a.TotalEngagements > b.TotalEngagements }
	default:
		less = func(a, b models.UserWithStats) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}
