package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/attendance-bot/internal/persistence"
)

// LeaveRepository implements persistence.LeaveRepository over SQLite. The
// backing table keeps the original deployment's name, vacation.
type LeaveRepository struct {
	pool *Pool
}

// NewLeaveRepository returns a repository backed by pool.
func NewLeaveRepository(pool *Pool) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

// CreateLeave inserts one committed leave record.
func (r *LeaveRepository) CreateLeave(ctx context.Context, record persistence.LeaveRecord) error {
	if record.ID == "" || record.LineID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO vacation (id, vacation_date, vacation_type, line_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	return r.pool.withRetry(ctx, func() error {
		_, err := r.pool.db.ExecContext(ctx, query,
			record.ID,
			record.LeaveDate,
			record.LeaveType,
			record.LineID,
			record.CreatedAt.UTC().Format(time.RFC3339),
		)
		return mapError(err)
	})
}

// ListLeaveByUser returns the user's leave records ordered by date.
func (r *LeaveRepository) ListLeaveByUser(ctx context.Context, lineID string) ([]persistence.LeaveRecord, error) {
	query := `
		SELECT id, vacation_date, vacation_type, line_id, created_at
		FROM vacation
		WHERE line_id = ?
		ORDER BY vacation_date ASC, created_at ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query, lineID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []persistence.LeaveRecord
	for rows.Next() {
		var record persistence.LeaveRecord
		var createdAt string
		if err := rows.Scan(&record.ID, &record.LeaveDate, &record.LeaveType, &record.LineID, &createdAt); err != nil {
			return nil, mapError(err)
		}
		if record.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse created_at: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return records, nil
}
