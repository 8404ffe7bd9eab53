// Package postgres provides the PostgreSQL persistence gateway used by
// hosted deployments. It implements the same repository interfaces as the
// sqlite package against the schema the original service wrote with
// psycopg2.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/attendance-bot/internal/persistence"
	"github.com/lib/pq"
)

// Repository implements the attendance, leave, and user-registry interfaces
// over a single PostgreSQL connection pool.
type Repository struct {
	db *sql.DB
}

// Open connects to PostgreSQL with the given connection string and ensures
// the schema exists.
func Open(ctx context.Context, connStr string) (*Repository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Ping verifies the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		work_day TEXT NOT NULL,
		work_start TEXT NOT NULL,
		work_end TEXT NOT NULL,
		break_start TEXT NOT NULL,
		break_end TEXT NOT NULL,
		work_summary TEXT NOT NULL,
		device TEXT NOT NULL,
		line_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_line_id ON attendance(line_id);

	CREATE TABLE IF NOT EXISTS vacation (
		id TEXT PRIMARY KEY,
		vacation_date TEXT NOT NULL,
		vacation_type TEXT NOT NULL,
		line_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vacation_line_id ON vacation(line_id);

	CREATE TABLE IF NOT EXISTS registered_users (
		id TEXT PRIMARY KEY,
		line_id TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres: create tables: %w", err)
	}
	return nil
}

// CreateAttendance inserts one committed attendance record.
func (r *Repository) CreateAttendance(ctx context.Context, record persistence.AttendanceRecord) error {
	if record.ID == "" || record.LineID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance
			(id, name, work_day, work_start, work_end, break_start, break_end, work_summary, device, line_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		record.ID,
		record.Name,
		record.WorkDay,
		record.WorkStart,
		record.WorkEnd,
		record.BreakStart,
		record.BreakEnd,
		record.WorkSummary,
		record.Device,
		record.LineID,
		record.CreatedAt.UTC(),
	)
	return mapError(err)
}

// ListAttendanceByUser returns the user's records ordered by work day.
func (r *Repository) ListAttendanceByUser(ctx context.Context, lineID string) ([]persistence.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, work_day, work_start, work_end, break_start, break_end, work_summary, device, line_id, created_at
		FROM attendance
		WHERE line_id = $1
		ORDER BY work_day ASC, created_at ASC`, lineID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []persistence.AttendanceRecord
	for rows.Next() {
		var record persistence.AttendanceRecord
		var createdAt time.Time
		if err := rows.Scan(
			&record.ID,
			&record.Name,
			&record.WorkDay,
			&record.WorkStart,
			&record.WorkEnd,
			&record.BreakStart,
			&record.BreakEnd,
			&record.WorkSummary,
			&record.Device,
			&record.LineID,
			&createdAt,
		); err != nil {
			return nil, mapError(err)
		}
		record.CreatedAt = createdAt
		records = append(records, record)
	}
	return records, rows.Err()
}

// CreateLeave inserts one committed leave record.
func (r *Repository) CreateLeave(ctx context.Context, record persistence.LeaveRecord) error {
	if record.ID == "" || record.LineID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vacation (id, vacation_date, vacation_type, line_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		record.ID,
		record.LeaveDate,
		record.LeaveType,
		record.LineID,
		record.CreatedAt.UTC(),
	)
	return mapError(err)
}

// ListLeaveByUser returns the user's leave records ordered by date.
func (r *Repository) ListLeaveByUser(ctx context.Context, lineID string) ([]persistence.LeaveRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, vacation_date, vacation_type, line_id, created_at
		FROM vacation
		WHERE line_id = $1
		ORDER BY vacation_date ASC, created_at ASC`, lineID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []persistence.LeaveRecord
	for rows.Next() {
		var record persistence.LeaveRecord
		var createdAt time.Time
		if err := rows.Scan(&record.ID, &record.LeaveDate, &record.LeaveType, &record.LineID, &createdAt); err != nil {
			return nil, mapError(err)
		}
		record.CreatedAt = createdAt
		records = append(records, record)
	}
	return records, rows.Err()
}

// RegisterUser inserts a new reminder recipient.
func (r *Repository) RegisterUser(ctx context.Context, user persistence.RegisteredUser) error {
	if user.ID == "" || user.LineID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO registered_users (id, line_id, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		user.ID,
		user.LineID,
		user.DisplayName,
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	return mapError(err)
}

// GetUser retrieves a registered user by ID.
func (r *Repository) GetUser(ctx context.Context, id string) (persistence.RegisteredUser, error) {
	if id == "" {
		return persistence.RegisteredUser{}, persistence.ErrNotFound
	}

	var user persistence.RegisteredUser
	err := r.db.QueryRowContext(ctx, `
		SELECT id, line_id, display_name, created_at, updated_at
		FROM registered_users
		WHERE id = $1`, id,
	).Scan(&user.ID, &user.LineID, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.RegisteredUser{}, persistence.ErrNotFound
		}
		return persistence.RegisteredUser{}, mapError(err)
	}
	return user, nil
}

// ListUsers returns every registered user ordered by registration time.
func (r *Repository) ListUsers(ctx context.Context) ([]persistence.RegisteredUser, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, line_id, display_name, created_at, updated_at
		FROM registered_users
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.RegisteredUser
	for rows.Next() {
		var user persistence.RegisteredUser
		if err := rows.Scan(&user.ID, &user.LineID, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, mapError(err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes a registered user by ID.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM registered_users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
		case strings.HasPrefix(string(pqErr.Code), "23"):
			return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
		}
	}
	return err
}
