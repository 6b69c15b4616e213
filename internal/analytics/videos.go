package analytics

import (
	"sort"
	"strings"

	"devdash/pkg/models"
)

// Video table sort keys
const (
	SortVideosByViews      = "views"
	SortVideosByApprovals  = "approvals"
	SortVideosByEngagement = "engagement"
)

// VideoDetails attaches engagements and per-viewer figures to every video.
// EngagementRate here uses the stored counters, not the engagement records.
func VideoDetails(stats []models.VideoStats, engagements []models.VideoEngagement, names Namer) []models.VideoWithEngagements {
	byVideo := groupByVideo(engagements)

	out := make([]models.VideoWithEngagements, 0, len(stats))
	for _, vs := range stats {
		out = append(out, videoDetail(vs, byVideo[vs.VideoID], names))
	}
	return out
}

func videoDetail(vs models.VideoStats, engs []models.VideoEngagement, names Namer) models.VideoWithEngagements {
	if names != nil {
		vs.VideoName = names.NameOf(vs.VideoID)
	}
	if engs == nil {
		engs = []models.VideoEngagement{}
	}

	viewers := make(map[string]struct{})
	views := 0
	for _, e := range engs {
		viewers[e.UserID] = struct{}{}
		views += e.ViewCount
	}

	v := models.VideoWithEngagements{
		VideoStats:           vs,
		Engagements:          engs,
		UniqueViewers:        len(viewers),
		TotalEngagementViews: views,
		EngagementRate:       EngagementRate(vs.TotalApprovals, vs.TotalDisapprovals, vs.TotalViews),
	}
	if v.UniqueViewers > 0 {
		v.AverageViewsPerUser = float64(views) / float64(v.UniqueViewers)
	}
	return v
}

// FilterVideos keeps videos whose id contains term, case-insensitively
func FilterVideos(videos []models.VideoWithEngagements, term string) []models.VideoWithEngagements {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return videos
	}
	out := make([]models.VideoWithEngagements, 0, len(videos))
	for _, v := range videos {
		if strings.Contains(strings.ToLower(v.VideoID), term) {
			out = append(out, v)
		}
	}
	return out
}

// SortVideos orders videos in place, descending by the chosen key. Unknown keys sort by views.
func SortVideos(videos []models.VideoWithEngagements, by string) {
	var less func(a, b models.VideoWithEngagements) bool
	switch by {
	case SortVideosByApprovals:
		less = func(a, b models.VideoWithEngagements) bool { return a.TotalApprovals > b.TotalApprovals }
	case SortVideosByEngagement:
		less = func(a, b models.VideoWithEngagements) bool { return a.EngagementRate > b.EngagementRate }
	default:
		less = func(a, b models.VideoWithEngagements) bool { return a.TotalViews > b.TotalViews }
	}
	sort.SliceStable(videos, func(i, j int) bool { return less(videos[i], videos[j]) })
}

// ViewerNames maps each viewer of engs to a display name
func ViewerNames(engs []models.VideoEngagement, users []models.User) map[string]string {
	index := models.IndexUsers(users)
	out := make(map[string]string)
	for _, e := range engs {
		if u, ok := index[e.UserID]; ok {
			out[e.UserID] = u.Name
		} else {
			out[e.UserID] = UnknownUser
		}
	}
	return out
}
