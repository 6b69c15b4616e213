package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"devdash/pkg/models"
)

// NotificationRepository reads the per-parent concern digests
type NotificationRepository interface {
	List(ctx context.Context) ([]models.Notification, error)
	Upsert(ctx context.Context, notification *models.Notification) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

// List returns every digest, most recently updated first
func (r *notificationRepository) List(ctx context.Context) ([]models.Notification, error) {
	query := `
		SELECT user_name, user_id, user_phone, disapprovals, updated_at
		FROM notifications
		ORDER BY updated_at DESC, user_name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapDBError(err, "list_notifications")
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.UserName, &n.UserID, &n.UserPhone, &n.Disapprovals, &n.UpdatedAt); err != nil {
			return nil, mapDBError(err, "scan_notification")
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "list_notifications")
	}
	return out, nil
}

// Upsert writes a digest keyed by user name
func (r *notificationRepository) Upsert(ctx context.Context, n *models.Notification) error {
	disapprovals := n.Disapprovals
	if disapprovals == nil {
		disapprovals = []models.NotificationDisapproval{}
	}
	query := `
		INSERT INTO notifications (user_name, user_id, user_phone, disapprovals, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		ON CONFLICT (user_name) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			user_phone = EXCLUDED.user_phone,
			disapprovals = EXCLUDED.disapprovals,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query, n.UserName, n.UserID, n.UserPhone, disapprovals).Scan(&n.UpdatedAt)
	if err != nil {
		return mapDBError(err, "upsert_notification")
	}
	return nil
}
