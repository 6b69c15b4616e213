package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devdash/internal/catalog"
	"devdash/pkg/models"
)

func eng(video, user string, vote models.Vote, views int) models.VideoEngagement {
	return models.VideoEngagement{VideoID: video, UserID: user, Vote: vote, ViewCount: views}
}

func TestSummarizeScenario(t *testing.T) {
	stats := []models.VideoStats{{VideoID: "v1", TotalViews: 100, TotalApprovals: 40, TotalDisapprovals: 10}}
	engagements := []models.VideoEngagement{
		eng("v1", "u1", models.VoteApprove, 3),
		eng("v1", "u2", models.VoteDisapprove, 1),
	}
	users := []models.User{{ID: "u1", Name: "Asha"}}

	got := Summarize(stats, engagements, users, nil)
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, "v1", s.VideoID)
	assert.Equal(t, 100, s.TotalViews)
	assert.Equal(t, 2, s.UniqueViewers)
	assert.Equal(t, 1, s.Approvals)
	assert.Equal(t, 1, s.Disapprovals)
	assert.InDelta(t, 2.0, s.EngagementRate, 1e-9)

	require.Len(t, s.TopEngagedUsers, 2)
	assert.Equal(t, models.EngagedUser{UserID: "u1", UserName: "Asha", TotalViews: 3}, s.TopEngagedUsers[0])
	assert.Equal(t, models.EngagedUser{UserID: "u2", UserName: UnknownUser, TotalViews: 1}, s.TopEngagedUsers[1])
}

func TestSummarizeZeroViewsHasZeroRate(t *testing.T) {
	stats := []models.VideoStats{{VideoID: "v1"}}
	engagements := []models.VideoEngagement{eng("v1", "u1", models.VoteApprove, 2)}

	got := Summarize(stats, engagements, nil, nil)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].EngagementRate)
	assert.Equal(t, 1, got[0].Approvals)
}

func TestSummarizeRateMayExceedHundred(t *testing.T) {
	stats := []models.VideoStats{{VideoID: "v1", TotalViews: 1}}
	engagements := []models.VideoEngagement{
		eng("v1", "u1", models.VoteApprove, 1),
		eng("v1", "u2", models.VoteApprove, 1),
		eng("v1", "u3", models.VoteDisapprove, 1),
	}
	got := Summarize(stats, engagements, nil, nil)
	assert.InDelta(t, 300.0, got[0].EngagementRate, 1e-9)
}

func TestSummarizeUniqueViewersBoundedByRecords(t *testing.T) {
	stats := []models.VideoStats{{VideoID: "a", TotalViews: 10}, {VideoID: "b", TotalViews: 10}, {VideoID: "c"}}
	engagements := []models.VideoEngagement{
		eng("a", "u1", models.VoteApprove, 1),
		eng("a", "u1", models.VoteApprove, 4),
		eng("a", "u2", models.VoteNone, 1),
		eng("b", "u3", models.VoteDisapprove, 2),
	}
	perVideo := groupByVideo(engagements)

	got := Summarize(stats, engagements, nil, nil)
	require.Len(t, got, 3)
	for _, s := range got {
		assert.LessOrEqual(t, s.UniqueViewers, len(perVideo[s.VideoID]), s.VideoID)
	}

	// duplicates count independently
	assert.Equal(t, 2, got[0].Approvals)
	assert.Equal(t, 2, got[0].UniqueViewers)
	assert.Equal(t, 5, got[0].TopEngagedUsers[0].TotalViews)

	assert.Empty(t, got[2].TopEngagedUsers)
	assert.NotNil(t, got[2].TopEngagedUsers)
}

func TestSummarizeKeepsInputOrder(t *testing.T) {
	stats := []models.VideoStats{{VideoID: "z", TotalViews: 1}, {VideoID: "a", TotalViews: 1}, {VideoID: "m", TotalViews: 1}}
	engagements := []models.VideoEngagement{eng("a", "u1", models.VoteApprove, 1)}

	got := Summarize(stats, engagements, nil, nil)
	ids := []string{got[0].VideoID, got[1].VideoID, got[2].VideoID}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestSummarizeTopEngagedCapAndTies(t *testing.T) {
	stats := []models.VideoStats{{VideoID: "v", TotalViews: 50}}
	var engagements []models.VideoEngagement
	for _, u := range []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"} {
		engagements = append(engagements, eng("v", u, models.VoteNone, 2))
	}
	engagements = append(engagements, eng("v", "u7", models.VoteNone, 5))

	got := Summarize(stats, engagements, nil, nil)[0]
	require.Len(t, got.TopEngagedUsers, TopEngagedLimit)
	assert.Equal(t, "u7", got.TopEngagedUsers[0].UserID)
	assert.Equal(t, 7, got.TopEngagedUsers[0].TotalViews)
	// ties keep first-appearance order
	assert.Equal(t, "u1", got.TopEngagedUsers[1].UserID)
	assert.Equal(t, "u4", got.TopEngagedUsers[4].UserID)
}

func TestSummarizeNamesFromCatalog(t *testing.T) {
	stats := []models.VideoStats{{VideoID: "vmEHfOIf3M8"}, {VideoID: "unknown-video", VideoName: "ignored"}}

	got := Summarize(stats, nil, nil, catalog.Default())
	assert.Equal(t, "Rooting Reflex", got[0].VideoName)
	assert.Equal(t, "Video unknown-...", got[1].VideoName)

	got = Summarize(stats, nil, nil, nil)
	assert.Equal(t, "ignored", got[1].VideoName)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Empty(t, Summarize(nil, nil, nil, nil))
}

func TestRates(t *testing.T) {
	assert.Zero(t, EngagementRate(3, 2, 0))
	assert.InDelta(t, 50.0, EngagementRate(3, 2, 10), 1e-9)
	assert.Zero(t, ApprovalRate(0, 0))
	assert.InDelta(t, 75.0, ApprovalRate(3, 1), 1e-9)
}
