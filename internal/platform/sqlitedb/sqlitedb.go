// Package sqlitedb owns the single SQLite database backing every store
// adapter: connection setup, schema, transactions and the change log.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperrors "ascend/internal/platform/errors"
)

const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Executor is satisfied by both *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	db   *sql.DB
	path string
}

func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	out := &DB{db: db, path: dbPath}
	if err := out.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return out, nil
}

func (d *DB) Path() string { return d.path }

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) ensureSchema(ctx context.Context) error {
	for i, ddl := range migrations {
		if _, err := d.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}

type txKey struct{}

// Executor returns the transaction carried by ctx, or the database itself.
func (d *DB) Executor(ctx context.Context) Executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return d.db
}

// Within runs fn in a transaction. It implements tx.Manager.
func (d *DB) Within(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return Classify("begin tx", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return Classify("commit tx", err)
	}
	return nil
}

// RecordChange appends to the change log read by the change feed. Callers
// pass the executor of the mutation so both land in the same transaction.
func RecordChange(ctx context.Context, exec Executor, recordType, recordID, op string, at time.Time) error {
	const stmt = `INSERT INTO changes (record_type, record_id, op, changed_at) VALUES (?, ?, ?, ?)`
	if _, err := exec.ExecContext(ctx, stmt, recordType, recordID, op, at.UTC().Format(TimeLayout)); err != nil {
		return Classify("record change", err)
	}
	return nil
}

// Classify wraps err with context and marks busy/locked database errors as
// a transient collaborator failure.
func Classify(action string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return apperrors.Unavailable("store", fmt.Errorf("%s: %w", action, err))
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", raw, err)
	}
	return t, nil
}

func NullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}
