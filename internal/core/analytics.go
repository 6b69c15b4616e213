package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"devdash/internal/analytics"
	"devdash/internal/repository"
	"devdash/pkg/logger"
	"devdash/pkg/models"
	"devdash/pkg/utils"
)

// DashboardService serves the read-only analytics views
type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	VideoSummaries(ctx context.Context) ([]models.VideoEngagementSummary, error)
	Videos(ctx context.Context, query, sortBy string) ([]models.VideoWithEngagements, error)
	Video(ctx context.Context, videoID string) (*models.VideoDetail, error)
	Overview(ctx context.Context, limit int) (*models.AnalyticsOverview, error)
	Users(ctx context.Context, query, sortBy string) ([]models.UserWithStats, error)
	UserAnalytics(ctx context.Context, userID string) (*models.UserAnalytics, error)
	RecentActivity(ctx context.Context, limit int) ([]models.ActivityItem, error)
	Notifications(ctx context.Context) ([]models.Notification, error)
}

// DashboardOptions configure NewDashboardService
type DashboardOptions struct {
	Location *time.Location
	Now      func() time.Time
}

type dashboardService struct {
	users         repository.UserRepository
	videos        repository.VideoRepository
	notifications repository.NotificationRepository
	catalog       analytics.Catalog
	loc           *time.Location
	now           func() time.Time
}

// NewDashboardService creates the analytics service
func NewDashboardService(
	users repository.UserRepository,
	videos repository.VideoRepository,
	notifications repository.NotificationRepository,
	cat analytics.Catalog,
	opts DashboardOptions,
) DashboardService {
	s := &dashboardService{
		users:         users,
		videos:        videos,
		notifications: notifications,
		catalog:       cat,
		loc:           opts.Location,
		now:           opts.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// snapshot is the set of collections one view needs
type snapshot struct {
	users       []models.User
	stats       []models.VideoStats
	engagements []models.VideoEngagement
}

type collections uint8

const (
	withUsers collections = 1 << iota
	withStats
	withEngagements
)

// fetch loads the requested collections concurrently. A failing fetch is
// logged and replaced by an empty slice; only cancellation is returned.
func (s *dashboardService) fetch(ctx context.Context, want collections) (*snapshot, error) {
	snap := &snapshot{
		users:       []models.User{},
		stats:       []models.VideoStats{},
		engagements: []models.VideoEngagement{},
	}
	ctx, cancel := utils.WithLongTimeout(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if want&withUsers != 0 {
		g.Go(func() error {
			users, err := s.users.List(gctx)
			if err != nil {
				return degrade("users", err)
			}
			snap.users = users
			return nil
		})
	}
	if want&withStats != 0 {
		g.Go(func() error {
			stats, err := s.videos.ListStats(gctx)
			if err != nil {
				return degrade("video_stats", err)
			}
			snap.stats = stats
			return nil
		})
	}
	if want&withEngagements != 0 {
		g.Go(func() error {
			engagements, err := s.videos.ListEngagements(gctx)
			if err != nil {
				return degrade("video_engagement", err)
			}
			snap.engagements = engagements
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func degrade(collection string, err error) error {
	if utils.IsContextError(err) {
		return err
	}
	logger.Degraded(collection, err)
	return nil
}

// Stats computes the headline numbers with "today" in the configured zone
func (s *dashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	snap, err := s.fetch(ctx, withUsers|withStats|withEngagements)
	if err != nil {
		return nil, err
	}
	stats := analytics.ComputeDashboardStats(snap.users, snap.stats, snap.engagements, s.now().In(s.loc))
	return &stats, nil
}

// VideoSummaries returns one summary per video counter row, in table order
func (s *dashboardService) VideoSummaries(ctx context.Context) ([]models.VideoEngagementSummary, error) {
	snap, err := s.fetch(ctx, withUsers|withStats|withEngagements)
	if err != nil {
		return nil, err
	}
	return analytics.Summarize(snap.stats, snap.engagements, snap.users, s.catalog), nil
}

// Videos returns the filtered and sorted videos table
func (s *dashboardService) Videos(ctx context.Context, query, sortBy string) ([]models.VideoWithEngagements, error) {
	snap, err := s.fetch(ctx, withStats|withEngagements)
	if err != nil {
		return nil, err
	}
	videos := analytics.FilterVideos(analytics.VideoDetails(snap.stats, snap.engagements, s.catalog), query)
	analytics.SortVideos(videos, sortBy)
	return videos, nil
}

// Video returns one video with its viewers resolved to names
func (s *dashboardService) Video(ctx context.Context, videoID string) (*models.VideoDetail, error) {
	stats, err := s.videos.GetStats(ctx, videoID)
	if err != nil {
		if errors.Is(err, models.ErrVideoNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get video stats: %w", err)
	}

	var engagements []models.VideoEngagement
	var users []models.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if engagements, err = s.videos.ListEngagementsByVideo(gctx, videoID); err != nil {
			return degrade("video_engagement", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if users, err = s.users.List(gctx); err != nil {
			return degrade("users", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := analytics.VideoDetails([]models.VideoStats{*stats}, engagements, s.catalog)[0]
	out := &models.VideoDetail{
		VideoWithEngagements: detail,
		ViewerNames:          analytics.ViewerNames(engagements, users),
	}
	if s.catalog != nil {
		out.AgeCategory = s.catalog.AgeCategoryOf(videoID)
		out.Category = s.catalog.CategoryOfID(videoID)
	}
	return out, nil
}

// Overview returns the analytics page payload
func (s *dashboardService) Overview(ctx context.Context, limit int) (*models.AnalyticsOverview, error) {
	snap, err := s.fetch(ctx, withUsers|withStats|withEngagements)
	if err != nil {
		return nil, err
	}
	summaries := analytics.Summarize(snap.stats, snap.engagements, snap.users, s.catalog)
	overview := analytics.BuildOverview(summaries, snap.stats, snap.users, s.catalog, limit)
	return &overview, nil
}

// Users returns the filtered and sorted parents table
func (s *dashboardService) Users(ctx context.Context, query, sortBy string) ([]models.UserWithStats, error) {
	snap, err := s.fetch(ctx, withUsers|withEngagements)
	if err != nil {
		return nil, err
	}
	rows := analytics.FilterUsers(analytics.UserStats(snap.users, snap.engagements), query)
	analytics.SortUsers(rows, sortBy)
	return rows, nil
}

// UserAnalytics loads one parent's user, profile and engagements concurrently
func (s *dashboardService) UserAnalytics(ctx context.Context, userID string) (*models.UserAnalytics, error) {
	var (
		user        *models.User
		profile     *models.UserProfile
		engagements []models.VideoEngagement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.GetByID(gctx, userID)
		if err != nil {
			if errors.Is(err, models.ErrUserNotFound) {
				return nil
			}
			return degrade("users", err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		p, err := s.users.GetProfile(gctx, userID)
		if err != nil {
			return degrade("profiles", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		engs, err := s.videos.ListEngagementsByUser(gctx, userID)
		if err != nil {
			return degrade("video_engagement", err)
		}
		engagements = engs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return analytics.BuildUserAnalytics(user, profile, engagements, s.catalog)
}

// RecentActivity returns the merged activity feed
func (s *dashboardService) RecentActivity(ctx context.Context, limit int) ([]models.ActivityItem, error) {
	snap, err := s.fetch(ctx, withUsers|withEngagements)
	if err != nil {
		return nil, err
	}
	return analytics.RecentActivity(snap.users, snap.engagements, s.catalog, s.now(), limit), nil
}

// Notifications lists the concern digests, degrading to empty on failure
func (s *dashboardService) Notifications(ctx context.Context) ([]models.Notification, error) {
	list, err := s.notifications.List(ctx)
	if err != nil {
		if derr := degrade("notifications", err); derr != nil {
			return nil, derr
		}
		return []models.Notification{}, nil
	}
	return list, nil
}
