package analytics

import (
	"sort"

	"devdash/pkg/models"
	"devdash/pkg/utils"
)

// DefaultTopVideos is the leaderboard size when no limit is given
const DefaultTopVideos = 10

// Catalog is the subset of the video catalog the views need
type Catalog interface {
	Namer
	Categorizer
	AgeCategoryOf(videoIDOrURL string) string
}

// BuildOverview computes the analytics page totals and the engagement-rate
// leaderboard. summaries is not modified.
func BuildOverview(summaries []models.VideoEngagementSummary, stats []models.VideoStats, users []models.User, cat Catalog, limit int) models.AnalyticsOverview {
	if limit <= 0 {
		limit = DefaultTopVideos
	}

	overview := models.AnalyticsOverview{
		TotalVideos: len(stats),
		TotalUsers:  len(users),
		TopVideos:   []models.TopPerformingVideo{},
	}
	var rateSum float64
	for _, s := range summaries {
		overview.TotalViews += s.TotalViews
		overview.TotalApprovals += s.Approvals
		overview.TotalConcerns += s.Disapprovals
		rateSum += s.EngagementRate
	}
	if len(summaries) > 0 {
		overview.AverageEngagementRate = rateSum / float64(len(summaries))
	}

	ranked := make([]models.VideoEngagementSummary, len(summaries))
	copy(ranked, summaries)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].EngagementRate > ranked[j].EngagementRate })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	for _, s := range ranked {
		top := models.TopPerformingVideo{
			VideoEngagementSummary: s,
			ShortID:                utils.TruncateRunes(s.VideoID, 8),
		}
		if cat != nil {
			top.VideoName = cat.NameOf(s.VideoID)
			top.Category = cat.AgeCategoryOf(s.VideoID)
		}
		overview.TopVideos = append(overview.TopVideos, top)
	}
	return overview
}
