package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devdash/pkg/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestComputeDashboardStatsEmpty(t *testing.T) {
	got := ComputeDashboardStats(nil, nil, nil, time.Now())
	assert.Equal(t, models.DashboardStats{}, got)
}

func TestComputeDashboardStats(t *testing.T) {
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	users := []models.User{
		{ID: "a", LastActive: timePtr(now.Add(-time.Hour))},
		{ID: "b", LastActive: timePtr(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))},
		{ID: "c", LastActive: timePtr(time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC))},
		{ID: "d"},
	}
	stats := []models.VideoStats{
		{VideoID: "v1", TotalViews: 10, TotalApprovals: 3, TotalDisapprovals: 1},
		{VideoID: "v2"},
	}
	engagements := []models.VideoEngagement{eng("v1", "a", models.VoteApprove, 1)}

	got := ComputeDashboardStats(users, stats, engagements, now)
	assert.Equal(t, 4, got.TotalUsers)
	assert.Equal(t, 2, got.TotalVideos)
	assert.Equal(t, 1, got.TotalEngagements)
	assert.Equal(t, 2, got.ActiveUsersToday)
	assert.Equal(t, 10, got.TotalViews)
	assert.InDelta(t, 75.0, got.AverageVideoRating, 1e-9)
}

func TestComputeDashboardStatsUsesNowLocation(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 01:00 IST on May 2 is 19:30 UTC on May 1
	lastActive := time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC)
	users := []models.User{{ID: "a", LastActive: &lastActive}}

	inIST := ComputeDashboardStats(users, nil, nil, time.Date(2024, 5, 2, 9, 0, 0, 0, ist))
	assert.Equal(t, 1, inIST.ActiveUsersToday)

	inUTC := ComputeDashboardStats(users, nil, nil, time.Date(2024, 5, 2, 3, 30, 0, 0, time.UTC))
	assert.Equal(t, 0, inUTC.ActiveUsersToday)
}

func TestAverageVideoRatingIsNotEngagementRate(t *testing.T) {
	stats := []models.VideoStats{{VideoID: "v1", TotalViews: 1000, TotalApprovals: 1, TotalDisapprovals: 1}}
	got := ComputeDashboardStats(nil, stats, nil, time.Now())
	assert.InDelta(t, 50.0, got.AverageVideoRating, 1e-9)
}
