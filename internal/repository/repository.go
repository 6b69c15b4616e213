// Package repository reads and writes the dashboard tables through pgx
package repository

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"devdash/pkg/models"
)

// Schema is the DDL applied by `devdash db migrate` and the integration tests
//
//go:embed schema.sql
var Schema string

// Repositories bundles every table accessor over one pool
type Repositories struct {
	Users         UserRepository
	Videos        VideoRepository
	Chats         ChatRepository
	Notifications NotificationRepository
	pool          *pgxpool.Pool
}

// New wires all repositories to pool
func New(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(pool),
		Videos:        NewVideoRepository(pool),
		Chats:         NewChatRepository(pool),
		Notifications: NewNotificationRepository(pool),
		pool:          pool,
	}
}

// Ping checks the pool can reach the database
func (r *Repositories) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return mapDBError(err, "ping")
	}
	return nil
}

// Migrate applies Schema through the pool
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return mapDBError(err, "migrate")
	}
	return nil
}

// mapDBError maps database errors to protocol-specific error responses
func mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewHTTPError(models.ErrCodeNotFound, "resource not found", 404, errors.Join(models.ErrNotFound, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return models.NewHTTPError(models.ErrCodeConflict, "resource already exists", 409, err)
		case "23503": // foreign_key_violation
			return models.NewHTTPError(models.ErrCodeBadRequest, "invalid relationship", 400, err)
		case "23514": // check_violation
			return models.NewHTTPError(models.ErrCodeValidation, "value out of range", 400, err)
		case "22P02": // invalid_text_representation
			return models.NewHTTPError(models.ErrCodeBadRequest, "invalid input format", 400, err)
		}
	}

	return models.NewHTTPError(models.ErrCodeServiceUnavailable, "database error during "+operation, 503, err)
}
