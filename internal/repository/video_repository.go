package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"devdash/pkg/models"
)

// VideoRepository reads video counters and per-user engagement records
type VideoRepository interface {
	ListStats(ctx context.Context) ([]models.VideoStats, error)
	GetStats(ctx context.Context, videoID string) (*models.VideoStats, error)
	UpsertStats(ctx context.Context, stats *models.VideoStats) error

	ListEngagements(ctx context.Context) ([]models.VideoEngagement, error)
	ListEngagementsByUser(ctx context.Context, userID string) ([]models.VideoEngagement, error)
	ListEngagementsByVideo(ctx context.Context, videoID string) ([]models.VideoEngagement, error)
	CreateEngagement(ctx context.Context, engagement *models.VideoEngagement) error
}

type videoRepository struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new PostgreSQL video repository
func NewVideoRepository(pool *pgxpool.Pool) VideoRepository {
	return &videoRepository{pool: pool}
}

const statsColumns = `
	video_id,
	COALESCE(total_views, 0),
	COALESCE(total_approvals, 0),
	COALESCE(total_disapprovals, 0)
`

// ListStats returns every video counter row ordered by video id
func (r *videoRepository) ListStats(ctx context.Context) ([]models.VideoStats, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+statsColumns+` FROM video_stats ORDER BY video_id`)
	if err != nil {
		return nil, mapDBError(err, "list_video_stats")
	}
	defer rows.Close()

	stats := []models.VideoStats{}
	for rows.Next() {
		var s models.VideoStats
		if err := rows.Scan(&s.VideoID, &s.TotalViews, &s.TotalApprovals, &s.TotalDisapprovals); err != nil {
			return nil, mapDBError(err, "scan_video_stats")
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "list_video_stats")
	}
	return stats, nil
}

// GetStats retrieves the counters of one video
func (r *videoRepository) GetStats(ctx context.Context, videoID string) (*models.VideoStats, error) {
	s := &models.VideoStats{}
	err := r.pool.QueryRow(ctx, `SELECT `+statsColumns+` FROM video_stats WHERE video_id = $1`, videoID).
		Scan(&s.VideoID, &s.TotalViews, &s.TotalApprovals, &s.TotalDisapprovals)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewHTTPError(models.ErrCodeNotFound, "video not found", 404, errors.Join(models.ErrVideoNotFound, err))
	}
	if err != nil {
		return nil, mapDBError(err, "get_video_stats")
	}
	return s, nil
}

// UpsertStats inserts or replaces the counters of a video
func (r *videoRepository) UpsertStats(ctx context.Context, s *models.VideoStats) error {
	query := `
		INSERT INTO video_stats (video_id, total_views, total_approvals, total_disapprovals)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (video_id) DO UPDATE SET
			total_views = EXCLUDED.total_views,
			total_approvals = EXCLUDED.total_approvals,
			total_disapprovals = EXCLUDED.total_disapprovals
	`
	if _, err := r.pool.Exec(ctx, query, s.VideoID, s.TotalViews, s.TotalApprovals, s.TotalDisapprovals); err != nil {
		return mapDBError(err, "upsert_video_stats")
	}
	return nil
}

const engagementQuery = `
	SELECT video_id, user_id, vote, view_count, last_viewed
	FROM video_engagement
`

// ListEngagements returns every engagement record in insertion order
func (r *videoRepository) ListEngagements(ctx context.Context) ([]models.VideoEngagement, error) {
	return r.queryEngagements(ctx, "list_engagements", engagementQuery+` ORDER BY id`)
}

// ListEngagementsByUser returns one parent's engagements in insertion order
func (r *videoRepository) ListEngagementsByUser(ctx context.Context, userID string) ([]models.VideoEngagement, error) {
	return r.queryEngagements(ctx, "list_engagements_by_user", engagementQuery+` WHERE user_id = $1 ORDER BY id`, userID)
}

// ListEngagementsByVideo returns one video's engagements in insertion order
func (r *videoRepository) ListEngagementsByVideo(ctx context.Context, videoID string) ([]models.VideoEngagement, error) {
	return r.queryEngagements(ctx, "list_engagements_by_video", engagementQuery+` WHERE video_id = $1 ORDER BY id`, videoID)
}

func (r *videoRepository) queryEngagements(ctx context.Context, operation, query string, args ...interface{}) ([]models.VideoEngagement, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err, operation)
	}
	defer rows.Close()

	engagements := []models.VideoEngagement{}
	for rows.Next() {
		var e models.VideoEngagement
		var vote string
		if err := rows.Scan(&e.VideoID, &e.UserID, &vote, &e.ViewCount, &e.LastViewed); err != nil {
			return nil, mapDBError(err, operation)
		}
		e.Vote = models.Vote(vote)
		engagements = append(engagements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, operation)
	}
	return engagements, nil
}

// CreateEngagement records one engagement
func (r *videoRepository) CreateEngagement(ctx context.Context, e *models.VideoEngagement) error {
	if e.Vote == "" {
		e.Vote = models.VoteNone
	}
	if !e.Vote.Valid() {
		return models.NewHTTPError(models.ErrCodeValidation, "invalid vote", 400, models.ErrInvalidInput)
	}
	query := `
		INSERT INTO video_engagement (video_id, user_id, vote, view_count, last_viewed)
		VALUES ($1, $2, $3, $4, COALESCE($5, CURRENT_TIMESTAMP))
		RETURNING last_viewed
	`
	var lastViewed interface{}
	if !e.LastViewed.IsZero() {
		lastViewed = e.LastViewed
	}
	err := r.pool.QueryRow(ctx, query, e.VideoID, e.UserID, string(e.Vote), e.ViewCount, lastViewed).Scan(&e.LastViewed)
	if err != nil {
		return mapDBError(err, "create_engagement")
	}
	return nil
}
