package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"devdash/pkg/models"
)

// UserRepository reads parent accounts and their child profiles
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error

	// GetProfile returns nil, nil when the user has no profile
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, profile *models.UserProfile) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, phone_number, email, created_at, last_active`

func scanUser(row pgx.Row, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Name,
		&user.PhoneNumber,
		&user.Email,
		&user.CreatedAt,
		&user.LastActive,
	)
}

// List returns every user ordered by id
func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, mapDBError(err, "list_users")
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, mapDBError(err, "scan_user")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "list_users")
	}
	return users, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewHTTPError(models.ErrCodeNotFound, "user not found", 404, errors.Join(models.ErrUserNotFound, err))
	}
	if err != nil {
		return nil, mapDBError(err, "get_user_by_id")
	}
	return user, nil
}

// Upsert inserts or replaces a user
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, phone_number, email, created_at, last_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			phone_number = EXCLUDED.phone_number,
			email = EXCLUDED.email,
			created_at = EXCLUDED.created_at,
			last_active = EXCLUDED.last_active
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.PhoneNumber,
		user.Email,
		user.CreatedAt,
		user.LastActive,
	)
	if err != nil {
		return mapDBError(err, "upsert_user")
	}
	return nil
}

// GetProfile retrieves the child profile of a user
func (r *userRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `
		SELECT user_id, child_age_months, child_name, parent_name, additional_info
		FROM profiles
		WHERE user_id = $1
	`
	p := &models.UserProfile{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.ChildAgeMonths,
		&p.ChildName,
		&p.ParentName,
		&p.AdditionalInfo,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapDBError(err, "get_profile")
	}
	return p, nil
}

// UpsertProfile inserts or replaces a child profile
func (r *userRepository) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	query := `
		INSERT INTO profiles (user_id, child_age_months, child_name, parent_name, additional_info)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			child_age_months = EXCLUDED.child_age_months,
			child_name = EXCLUDED.child_name,
			parent_name = EXCLUDED.parent_name,
			additional_info = EXCLUDED.additional_info
	`
	_, err := r.pool.Exec(ctx, query, p.UserID, p.ChildAgeMonths, p.ChildName, p.ParentName, p.AdditionalInfo)
	if err != nil {
		return mapDBError(err, "upsert_profile")
	}
	return nil
}
