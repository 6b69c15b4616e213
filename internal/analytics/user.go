package analytics

import (
	"fmt"
	"sort"

	"devdash/pkg/models"
)

// ErrUserNotFound is returned when analytics are requested for a missing user
var ErrUserNotFound = fmt.Errorf("analytics: %w", models.ErrUserNotFound)

// Categorizer maps a video id to a developmental area
type Categorizer interface {
	CategoryOfID(videoID string) string
}

// BuildUserAnalytics assembles the per-parent view. A nil user is the only failure.
// cats may be nil, which leaves FavoriteCategories empty.
func BuildUserAnalytics(user *models.User, profile *models.UserProfile, engagements []models.VideoEngagement, cats Categorizer) (*models.UserAnalytics, error) {
	if user == nil {
		return nil, ErrUserNotFound
	}

	progress := models.DevelopmentProgress{
		AgeGroup:        AgeGroupLabel(profile),
		TotalMilestones: len(engagements),
		Concerns:        []string{},
	}
	watch := 0
	for _, e := range engagements {
		watch += e.ViewCount
		switch e.Vote {
		case models.VoteApprove:
			progress.CompletedMilestones++
		case models.VoteDisapprove:
			progress.Concerns = append(progress.Concerns, e.VideoID)
		}
	}

	if engagements == nil {
		engagements = []models.VideoEngagement{}
	}
	return &models.UserAnalytics{
		User:                *user,
		Profile:             profile,
		VideoEngagements:    engagements,
		TotalWatchTime:      watch,
		FavoriteCategories:  FavoriteCategories(engagements, cats),
		DevelopmentProgress: progress,
	}, nil
}

// AgeGroupLabel floors the child's age to a three month band, e.g. "6-9 months".
// An age of 0 is treated as not entered.
func AgeGroupLabel(profile *models.UserProfile) string {
	if profile == nil || profile.ChildAgeMonths == nil || *profile.ChildAgeMonths <= 0 {
		return "Unknown"
	}
	low := *profile.ChildAgeMonths / 3 * 3
	return fmt.Sprintf("%d-%d months", low, low+3)
}

// FavoriteCategories ranks developmental areas by summed view count
func FavoriteCategories(engagements []models.VideoEngagement, cats Categorizer) []string {
	out := []string{}
	if cats == nil {
		return out
	}
	views := make(map[string]int)
	for _, e := range engagements {
		category := cats.CategoryOfID(e.VideoID)
		if _, seen := views[category]; !seen {
			out = append(out, category)
		}
		views[category] += e.ViewCount
	}
	sort.SliceStable(out, func(i, j int) bool { return views[out[i]] > views[out[j]] })
	return out
}
