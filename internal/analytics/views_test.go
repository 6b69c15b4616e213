package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devdash/internal/catalog"
	"devdash/pkg/models"
)

func TestBuildOverview(t *testing.T) {
	summaries := []models.VideoEngagementSummary{
		{VideoID: "vmEHfOIf3M8", TotalViews: 10, Approvals: 1, Disapprovals: 0, EngagementRate: 10},
		{VideoID: "_uBO52aLhe4", TotalViews: 4, Approvals: 1, Disapprovals: 1, EngagementRate: 50},
		{VideoID: "zzzzzzzzzzzz", TotalViews: 0, EngagementRate: 0},
	}
	stats := make([]models.VideoStats, 3)
	users := make([]models.User, 5)

	got := BuildOverview(summaries, stats, users, catalog.Default(), 2)
	assert.Equal(t, 3, got.TotalVideos)
	assert.Equal(t, 5, got.TotalUsers)
	assert.Equal(t, 14, got.TotalViews)
	assert.Equal(t, 2, got.TotalApprovals)
	assert.Equal(t, 1, got.TotalConcerns)
	assert.InDelta(t, 20.0, got.AverageEngagementRate, 1e-9)

	require.Len(t, got.TopVideos, 2)
	assert.Equal(t, "_uBO52aLhe4", got.TopVideos[0].VideoID)
	assert.Equal(t, "Starting to crawl", got.TopVideos[0].VideoName)
	assert.Equal(t, catalog.Band7To9, got.TopVideos[0].Category)
	assert.Equal(t, "_uBO52aL", got.TopVideos[0].ShortID)
	assert.Equal(t, "vmEHfOIf3M8", got.TopVideos[1].VideoID)

	// caller's slice untouched
	assert.Equal(t, "vmEHfOIf3M8", summaries[0].VideoID)
}

func TestBuildOverviewDefaults(t *testing.T) {
	got := BuildOverview(nil, nil, nil, nil, 0)
	assert.Zero(t, got.AverageEngagementRate)
	assert.NotNil(t, got.TopVideos)
	assert.Empty(t, got.TopVideos)
}

func TestVideoDetails(t *testing.T) {
	stats := []models.VideoStats{
		{VideoID: "v1", TotalViews: 20, TotalApprovals: 4, TotalDisapprovals: 1},
		{VideoID: "v2"},
	}
	engagements := []models.VideoEngagement{
		eng("v1", "u1", models.VoteApprove, 3),
		eng("v1", "u1", models.VoteNone, 1),
		eng("v1", "u2", models.VoteNone, 2),
	}

	got := VideoDetails(stats, engagements, nil)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].UniqueViewers)
	assert.Equal(t, 6, got[0].TotalEngagementViews)
	assert.InDelta(t, 3.0, got[0].AverageViewsPerUser, 1e-9)
	assert.InDelta(t, 25.0, got[0].EngagementRate, 1e-9)
	assert.Len(t, got[0].Engagements, 3)

	assert.Zero(t, got[1].AverageViewsPerUser)
	assert.Zero(t, got[1].EngagementRate)
	assert.NotNil(t, got[1].Engagements)
}

func TestFilterAndSortVideos(t *testing.T) {
	videos := []models.VideoWithEngagements{
		{VideoStats: models.VideoStats{VideoID: "AbC1", TotalViews: 5, TotalApprovals: 9}, EngagementRate: 1},
		{VideoStats: models.VideoStats{VideoID: "xyz", TotalViews: 7, TotalApprovals: 1}, EngagementRate: 3},
		{VideoStats: models.VideoStats{VideoID: "abc2", TotalViews: 9, TotalApprovals: 2}, EngagementRate: 2},
	}

	filtered := FilterVideos(videos, "ABC")
	require.Len(t, filtered, 2)

	SortVideos(videos, SortVideosByViews)
	assert.Equal(t, "abc2", videos[0].VideoID)
	SortVideos(videos, SortVideosByApprovals)
	assert.Equal(t, "AbC1", videos[0].VideoID)
	SortVideos(videos, SortVideosByEngagement)
	assert.Equal(t, "xyz", videos[0].VideoID)
	SortVideos(videos, "bogus")
	assert.Equal(t, "abc2", videos[0].VideoID)

	assert.Len(t, FilterVideos(videos, "  "), 3)
}

func TestViewerNames(t *testing.T) {
	names := ViewerNames(
		[]models.VideoEngagement{eng("v", "u1", models.VoteNone, 1), eng("v", "ghost", models.VoteNone, 1)},
		[]models.User{{ID: "u1", Name: "Asha"}},
	)
	assert.Equal(t, map[string]string{"u1": "Asha", "ghost": UnknownUser}, names)
}

func TestUserStats(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	users := []models.User{{ID: "u1", Name: "Asha"}, {ID: "u2", Name: "Bala"}}
	engagements := []models.VideoEngagement{
		{VideoID: "old", UserID: "u1", Vote: models.VoteApprove, LastViewed: base},
		{VideoID: "new", UserID: "u1", Vote: models.VoteDisapprove, LastViewed: base.Add(time.Hour)},
		{VideoID: "mid", UserID: "u1", Vote: models.VoteApprove, LastViewed: base.Add(30 * time.Minute)},
		{VideoID: "x", UserID: "u1", Vote: models.VoteNone, LastViewed: base},
	}

	rows := UserStats(users, engagements)
	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[0].TotalEngagements)
	assert.InDelta(t, 200.0/3.0, rows[0].ApprovalRate, 1e-9)
	assert.Equal(t, "new", rows[0].LastVideoWatched)

	assert.Zero(t, rows[1].TotalEngagements)
	assert.Zero(t, rows[1].ApprovalRate)
	assert.Equal(t, NoVideoWatched, rows[1].LastVideoWatched)
}

func TestFilterAndSortUsers(t *testing.T) {
	email := "carol@example.com"
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)
	rows := []models.UserWithStats{
		{User: models.User{ID: "1", Name: "bala", PhoneNumber: "+91 98000", LastActive: &early}, TotalEngagements: 1},
		{User: models.User{ID: "2", Name: "Asha", PhoneNumber: "+91 97000"}, TotalEngagements: 5},
		{User: models.User{ID: "3", Name: "Carol", PhoneNumber: "555", Email: &email, LastActive: &late}, TotalEngagements: 3},
	}

	assert.Len(t, FilterUsers(rows, "ASHA"), 1)
	assert.Len(t, FilterUsers(rows, "+91"), 2)
	assert.Len(t, FilterUsers(rows, "EXAMPLE.com"), 1)
	assert.Len(t, FilterUsers(rows, ""), 3)

	SortUsers(rows, SortUsersByName)
	assert.Equal(t, []string{"Asha", "bala", "Carol"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})

	SortUsers(rows, SortUsersByActivity)
	assert.Equal(t, "3", rows[0].ID)
	assert.Equal(t, "2", rows[2].ID)

	SortUsers(rows, SortUsersByEngagements)
	assert.Equal(t, "2", rows[0].ID)
}

func TestRecentActivity(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time { v := now.Add(-d); return &v }

	users := []models.User{
		{ID: "u1", Name: "Asha", CreatedAt: ago(time.Hour)},
		{ID: "u2", Name: "Bala", CreatedAt: ago(2 * time.Hour)},
		{ID: "u3", Name: "Chitra", CreatedAt: ago(3 * time.Hour)},
		{ID: "u4", Name: "Deepa", CreatedAt: ago(4 * time.Hour)},
		{ID: "u5", Name: "Esha", CreatedAt: ago(8 * 24 * time.Hour)},
	}
	engagements := []models.VideoEngagement{
		{VideoID: "vmEHfOIf3M8", UserID: "u5", Vote: models.VoteApprove, LastViewed: *ago(10 * time.Minute)},
		{VideoID: "cnNg9oghuc8", UserID: "ghost", Vote: models.VoteApprove, LastViewed: *ago(5 * time.Minute)},
		{VideoID: "IpJz812Jslo", UserID: "u1", Vote: models.VoteDisapprove, LastViewed: *ago(30 * time.Minute)},
		{VideoID: "old", UserID: "u1", Vote: models.VoteNone, LastViewed: *ago(25 * time.Hour)},
	}

	items := RecentActivity(users, engagements, catalog.Default(), now, 0)
	require.Len(t, items, DefaultActivityLimit-1)

	assert.Equal(t, models.ActivityView, items[0].Type)
	assert.Equal(t, "u5", items[0].UserID)
	assert.Equal(t, `Viewed "Rooting Reflex"`, items[0].Description)
	assert.Equal(t, models.ActivityApprove, items[1].Type)
	assert.Equal(t, models.ActivityDisapprove, items[3].Type)
	assert.Equal(t, `Marked concerns for "Swallowing"`, items[3].Description)

	var registrations []string
	for _, it := range items {
		assert.NotEqual(t, "ghost", it.UserID)
		assert.NotEqual(t, "old", it.VideoID)
		if it.Type == models.ActivityRegistration {
			registrations = append(registrations, it.UserID)
		}
	}
	assert.Equal(t, []string{"u1", "u2", "u3"}, registrations)

	assert.Len(t, RecentActivity(users, engagements, nil, now, 2), 2)
}
