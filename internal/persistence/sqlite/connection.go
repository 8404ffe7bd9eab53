package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/attendance-bot/internal/persistence"
	_ "modernc.org/sqlite"
)

// Pool wraps the shared *sql.DB with transaction and retry helpers. SQLite
// serializes writers, so transient "database is locked" failures are retried
// with exponential backoff instead of surfacing to the conversation layer.
type Pool struct {
	db *sql.DB
}

// Open connects to the SQLite database named by dsn and applies the schema
// migrations.
func Open(ctx context.Context, dsn string) (*Pool, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	// A single writer avoids SQLITE_BUSY storms under concurrent commits.
	db.SetMaxOpenConns(1)

	pool := &Pool{db: db}
	if err := pool.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return pool, nil
}

// DB exposes the underlying handle for tests.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Close releases the database handle.
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Ping verifies the connection.
func (p *Pool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// WithTransaction runs fn inside a transaction, rolling back on error or
// panic and committing otherwise.
func (p *Pool) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit transaction: %w", err)
	}
	return nil
}

const (
	retryAttempts     = 3
	retryInitialDelay = 50 * time.Millisecond
)

// withRetry re-runs fn for transient locked/busy errors, backing off between
// attempts. Constraint violations and not-found errors are never retried.
func (p *Pool) withRetry(ctx context.Context, fn func() error) error {
	delay := retryInitialDelay
	var lastErr error

	for attempt := 0; attempt <= retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("sqlite: gave up after %d retries: %w", retryAttempts, lastErr)
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database is busy")
}

// mapError translates driver errors into persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}
