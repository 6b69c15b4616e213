package analytics

import (
	"fmt"
	"sort"
	"time"

	"devdash/pkg/models"
)

// Recent activity windows and caps
const (
	RegistrationWindow   = 7 * 24 * time.Hour
	EngagementWindow     = 24 * time.Hour
	MaxRegistrations     = 3
	MaxRecentEngagements = 10
	DefaultActivityLimit = 8
)

// RecentActivity merges new registrations and the latest engagements into one
// feed, newest first. Engagements of unknown users are skipped.
func RecentActivity(users []models.User, engagements []models.VideoEngagement, names Namer, now time.Time, limit int) []models.ActivityItem {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	items := []models.ActivityItem{}

	regCutoff := now.Add(-RegistrationWindow)
	var recentUsers []models.User
	for _, u := range users {
		if u.CreatedAt != nil && u.CreatedAt.After(regCutoff) {
			recentUsers = append(recentUsers, u)
		}
	}
	sort.SliceStable(recentUsers, func(i, j int) bool { return recentUsers[i].CreatedAt.After(*recentUsers[j].CreatedAt) })
	if len(recentUsers) > MaxRegistrations {
		recentUsers = recentUsers[:MaxRegistrations]
	}
	for _, u := range recentUsers {
		items = append(items, models.ActivityItem{
			ID:          "user-" + u.ID,
			Type:        models.ActivityRegistration,
			UserID:      u.ID,
			UserName:    u.Name,
			Description: "New user registered",
			Timestamp:   *u.CreatedAt,
		})
	}

	engCutoff := now.Add(-EngagementWindow)
	var recent []models.VideoEngagement
	for _, e := range engagements {
		if e.LastViewed.After(engCutoff) {
			recent = append(recent, e)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].LastViewed.After(recent[j].LastViewed) })
	if len(recent) > MaxRecentEngagements {
		recent = recent[:MaxRecentEngagements]
	}

	index := models.IndexUsers(users)
	for _, e := range recent {
		u, ok := index[e.UserID]
		if !ok {
			continue
		}
		videoName := e.VideoID
		if names != nil {
			videoName = names.NameOf(e.VideoID)
		}
		base := models.ActivityItem{
			UserID:    u.ID,
			UserName:  u.Name,
			VideoID:   e.VideoID,
			VideoName: videoName,
			Timestamp: e.LastViewed,
		}

		view := base
		view.ID = fmt.Sprintf("view-%s-%s", e.VideoID, e.UserID)
		view.Type = models.ActivityView
		view.Description = fmt.Sprintf("Viewed \"%s\"", videoName)
		items = append(items, view)

		switch e.Vote {
		case models.VoteApprove:
			vote := base
			vote.ID = fmt.Sprintf("approve-%s-%s", e.VideoID, e.UserID)
			vote.Type = models.ActivityApprove
			vote.Description = fmt.Sprintf("Approved \"%s\"", videoName)
			items = append(items, vote)
		case models.VoteDisapprove:
			vote := base
			vote.ID = fmt.Sprintf("disapprove-%s-%s", e.VideoID, e.UserID)
			vote.Type = models.ActivityDisapprove
			vote.Description = fmt.Sprintf("Marked concerns for \"%s\"", videoName)
			items = append(items, vote)
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Timestamp.After(items[j].Timestamp) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func unixOrZero(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}
