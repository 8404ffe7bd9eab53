package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/attendance-bot/internal/persistence"
)

// UserRegistry implements persistence.UserRegistry over SQLite.
type UserRegistry struct {
	pool *Pool
}

// NewUserRegistry returns a registry backed by pool.
func NewUserRegistry(pool *Pool) *UserRegistry {
	return &UserRegistry{pool: pool}
}

// RegisterUser inserts a new reminder recipient. A duplicate line_id maps to
// persistence.ErrDuplicate.
func (r *UserRegistry) RegisterUser(ctx context.Context, user persistence.RegisteredUser) error {
	if user.ID == "" || user.LineID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO registered_users (id, line_id, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	return r.pool.withRetry(ctx, func() error {
		_, err := r.pool.db.ExecContext(ctx, query,
			user.ID,
			user.LineID,
			user.DisplayName,
			user.CreatedAt.UTC().Format(time.RFC3339),
			user.UpdatedAt.UTC().Format(time.RFC3339),
		)
		return mapError(err)
	})
}

// GetUser retrieves a registered user by ID.
func (r *UserRegistry) GetUser(ctx context.Context, id string) (persistence.RegisteredUser, error) {
	if id == "" {
		return persistence.RegisteredUser{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, line_id, display_name, created_at, updated_at
		FROM registered_users
		WHERE id = ?
	`

	var user persistence.RegisteredUser
	var createdAt, updatedAt string
	err := r.pool.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.LineID, &user.DisplayName, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.RegisteredUser{}, persistence.ErrNotFound
		}
		return persistence.RegisteredUser{}, mapError(err)
	}

	if user.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.RegisteredUser{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.RegisteredUser{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}

	return user, nil
}

// ListUsers returns every registered user ordered by registration time.
func (r *UserRegistry) ListUsers(ctx context.Context) ([]persistence.RegisteredUser, error) {
	query := `
		SELECT id, line_id, display_name, created_at, updated_at
		FROM registered_users
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.RegisteredUser
	for rows.Next() {
		var user persistence.RegisteredUser
		var createdAt, updatedAt string
		if err := rows.Scan(&user.ID, &user.LineID, &user.DisplayName, &createdAt, &updatedAt); err != nil {
			return nil, mapError(err)
		}
		if user.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse created_at: %w", err)
		}
		if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse updated_at: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return users, nil
}

// DeleteUser removes a registered user by ID.
func (r *UserRegistry) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM registered_users WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
