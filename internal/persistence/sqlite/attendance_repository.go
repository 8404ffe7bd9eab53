package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/attendance-bot/internal/persistence"
)

// AttendanceRepository implements persistence.AttendanceRepository over SQLite.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository returns a repository backed by pool.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// CreateAttendance inserts one committed attendance record. The single-row
// insert is atomic, so a failed write leaves no partial fields behind.
func (r *AttendanceRepository) CreateAttendance(ctx context.Context, record persistence.AttendanceRecord) error {
	if record.ID == "" || record.LineID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO attendance
			(id, name, work_day, work_start, work_end, break_start, break_end, work_summary, device, line_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.pool.withRetry(ctx, func() error {
		_, err := r.pool.db.ExecContext(ctx, query,
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
			record.CreatedAt.UTC().Format(time.RFC3339),
		)
		return mapError(err)
	})
}

// ListAttendanceByUser returns the user's records ordered by work day.
func (r *AttendanceRepository) ListAttendanceByUser(ctx context.Context, lineID string) ([]persistence.AttendanceRecord, error) {
	query := `
		SELECT id, name, work_day, work_start, work_end, break_start, break_end, work_summary, device, line_id, created_at
		FROM attendance
		WHERE line_id = ?
		ORDER BY work_day ASC, created_at ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query, lineID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []persistence.AttendanceRecord
	for rows.Next() {
		var record persistence.AttendanceRecord
		var createdAt string
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
