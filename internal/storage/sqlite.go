// Package storage implements the durable ledger store on SQLite.
//
// All state-changing ledger operations run through InTx, which provides the
// serializable atomic unit the balance invariant depends on. SQLite write
// transactions are serializable; a writer that loses the race for the
// database lock surfaces as a transient conflict and is retried with
// backoff before the failure reaches the caller.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finbook/internal/core"

	sqlite "modernc.org/sqlite"
)

const defaultRetryAttempts = 3

type Repository struct {
	db            *sql.DB
	queries       *Queries
	retryAttempts int
}

// Open opens (creating if needed) the SQLite database at dbPath, applies
// pragmas and pending migrations, and returns a ready repository.
func Open(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:            db,
		queries:       &Queries{db: db},
		retryAttempts: defaultRetryAttempts,
	}, nil
}

// SetRetryAttempts overrides the bounded retry count for write conflicts.
func (r *Repository) SetRetryAttempts(n int) {
	if n > 0 {
		r.retryAttempts = n
	}
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// DB exposes the underlying pool for health checks.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Queries returns query accessors bound to the connection pool, reading
// committed snapshots without blocking writers.
func (r *Repository) Queries() *Queries {
	return r.queries
}

// InTx runs fn inside one serializable write transaction. The whole unit
// commits or nothing does. Lock conflicts detected by the store trigger a
// bounded retry with backoff; when attempts are exhausted the conflict is
// surfaced as a transient error the caller may retry.
func (r *Repository) InTx(ctx context.Context, fn func(q *Queries) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.retryAttempts; attempt++ {
		err := r.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isBusy(err) {
			return err
		}
		lastErr = err

		slog.WarnContext(ctx, "Write transaction hit a lock conflict, retrying",
			"attempt", attempt,
			"max_attempts", r.retryAttempts,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return core.TransientConflict(lastErr)
}

func (r *Repository) runTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Queries{db: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isBusy reports whether err is a lock/busy conflict eligible for retry.
func isBusy(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code() & 0xff
		return code == 5 || code == 6 // SQLITE_BUSY, SQLITE_LOCKED
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles the SQL accessors over a database or transaction handle.
type Queries struct {
	db dbtx
}
