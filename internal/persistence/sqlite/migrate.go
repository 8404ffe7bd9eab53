package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order exactly once each; applied versions are
// tracked in schema_migrations. Statements stay append-only: fixing a past
// migration means adding a new one.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS attendance (
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
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_line_id ON attendance(line_id)`,
	`CREATE TABLE IF NOT EXISTS vacation (
		id TEXT PRIMARY KEY,
		vacation_date TEXT NOT NULL,
		vacation_type TEXT NOT NULL,
		line_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vacation_line_id ON vacation(line_id)`,
	`CREATE TABLE IF NOT EXISTS registered_users (
		id TEXT PRIMARY KEY,
		line_id TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}

func (p *Pool) migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("sqlite: create schema_migrations: %w", err)
	}

	var current int
	err := p.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}

	for version := current + 1; version <= len(migrations); version++ {
		statement := migrations[version-1]
		if err := p.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(statement); err != nil {
				return fmt.Errorf("sqlite: apply migration %d: %w", version, err)
			}
			if _, err := tx.Exec(
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))`,
				version,
			); err != nil {
				return fmt.Errorf("sqlite: record migration %d: %w", version, err)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	return nil
}
