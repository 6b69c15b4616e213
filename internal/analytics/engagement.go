// Package analytics turns raw users, video counters and engagements into the
// derived views of the dashboard. Every function here is pure.
package analytics

import (
	"sort"

	"devdash/pkg/models"
)

// UnknownUser labels viewers missing from the loaded users
const UnknownUser = "Unknown User"

// TopEngagedLimit caps TopEngagedUsers per video
const TopEngagedLimit = 5

// Namer resolves a video id to its display name
type Namer interface {
	NameOf(videoID string) string
}

// Summarize builds one summary per entry of stats, in the same order.
// names may be nil, in which case VideoName is copied from the stats record.
func Summarize(stats []models.VideoStats, engagements []models.VideoEngagement, users []models.User, names Namer) []models.VideoEngagementSummary {
	byVideo := groupByVideo(engagements)
	userIndex := models.IndexUsers(users)

	summaries := make([]models.VideoEngagementSummary, 0, len(stats))
	for _, vs := range stats {
		summaries = append(summaries, summarizeVideo(vs, byVideo[vs.VideoID], userIndex, names))
	}
	return summaries
}

func summarizeVideo(vs models.VideoStats, engs []models.VideoEngagement, users map[string]*models.User, names Namer) models.VideoEngagementSummary {
	summary := models.VideoEngagementSummary{
		VideoID:         vs.VideoID,
		VideoName:       vs.VideoName,
		TotalViews:      vs.TotalViews,
		TopEngagedUsers: []models.EngagedUser{},
	}
	if names != nil {
		summary.VideoName = names.NameOf(vs.VideoID)
	}

	viewers := make(map[string]int)
	var order []string
	for _, e := range engs {
		if _, seen := viewers[e.UserID]; !seen {
			order = append(order, e.UserID)
		}
		viewers[e.UserID] += e.ViewCount

		switch e.Vote {
		case models.VoteApprove:
			summary.Approvals++
		case models.VoteDisapprove:
			summary.Disapprovals++
		}
	}
	summary.UniqueViewers = len(viewers)
	summary.EngagementRate = EngagementRate(summary.Approvals, summary.Disapprovals, vs.TotalViews)

	top := make([]models.EngagedUser, 0, len(order))
	for _, id := range order {
		name := UnknownUser
		if u, ok := users[id]; ok {
			name = u.Name
		}
		top = append(top, models.EngagedUser{UserID: id, UserName: name, TotalViews: viewers[id]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].TotalViews > top[j].TotalViews })
	if len(top) > TopEngagedLimit {
		top = top[:TopEngagedLimit]
	}
	summary.TopEngagedUsers = top
	return summary
}

// EngagementRate is votes per recorded view, in percent. It is not capped at 100.
func EngagementRate(approvals, disapprovals, totalViews int) float64 {
	if totalViews <= 0 {
		return 0
	}
	return float64(approvals+disapprovals) / float64(totalViews) * 100
}

// ApprovalRate is approvals per vote, in percent
func ApprovalRate(approvals, disapprovals int) float64 {
	votes := approvals + disapprovals
	if votes <= 0 {
		return 0
	}
	return float64(approvals) / float64(votes) * 100
}

func groupByVideo(engagements []models.VideoEngagement) map[string][]models.VideoEngagement {
	out := make(map[string][]models.VideoEngagement)
	for _, e := range engagements {
		out[e.VideoID] = append(out[e.VideoID], e)
	}
	return out
}

func groupByUser(engagements []models.VideoEngagement) map[string][]models.VideoEngagement {
	out := make(map[string][]models.VideoEngagement)
	for _, e := range engagements {
		out[e.UserID] = append(out[e.UserID], e)
	}
	return out
}
