package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"devdash/pkg/models"
)

// ChatRepository persists the doctor/parent threads
type ChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	// ListRecent returns at most limit messages of a thread, newest first
	ListRecent(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
	MarkRead(ctx context.Context, userID string, sender models.SenderType) (int64, error)
}

type chatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository creates a new PostgreSQL chat repository
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepository{pool: pool}
}

// Create inserts a chat message, filling ID and Timestamp when empty
func (r *chatRepository) Create(ctx context.Context, m *models.ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO chat_messages (id, user_id, doctor_id, message, "timestamp", sender_type, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		m.ID,
		m.UserID,
		m.DoctorID,
		m.Message,
		m.Timestamp,
		string(m.SenderType),
		m.Read,
	)
	if err != nil {
		return mapDBError(err, "create_chat_message")
	}
	return nil
}

// ListRecent retrieves the newest messages of a thread
func (r *chatRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = models.ChatHistoryLimit
	}
	query := `
		SELECT id, user_id, doctor_id, message, "timestamp", sender_type, read
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY "timestamp" DESC, id DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, mapDBError(err, "list_chat_messages")
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		var sender string
		if err := rows.Scan(&m.ID, &m.UserID, &m.DoctorID, &m.Message, &m.Timestamp, &sender, &m.Read); err != nil {
			return nil, mapDBError(err, "scan_chat_message")
		}
		m.SenderType = models.SenderType(sender)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "list_chat_messages")
	}
	return messages, nil
}

// MarkRead flags every unread message from sender in a thread as read
func (r *chatRepository) MarkRead(ctx context.Context, userID string, sender models.SenderType) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE chat_messages SET read = TRUE WHERE user_id = $1 AND sender_type = $2 AND read = FALSE`,
		userID, string(sender),
	)
	if err != nil {
		return 0, mapDBError(err, "mark_chat_read")
	}
	return tag.RowsAffected(), nil
}
