// Package sqlite is the relational storage.Store implementation: each
// storage.Tx operation runs one or a few parameterized statements, and
// transactions wrap the multi-statement changes a service call needs
// (spec §4.7 item 1). Grounded on the teacher's internal/db/sqlite.go
// (embedded goose migrations over mattn/go-sqlite3).
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"equion/internal/apperr"
	"equion/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is a sqlite-backed storage.Store.
type DB struct {
	conn *sql.DB
}

var _ storage.Store = (*DB)(nil)

// Open opens (creating if necessary) the sqlite database at path and applies
// pending migrations.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{conn: conn}
	if err := d.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

func (d *DB) migrate() error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.Up(d.conn, "migrations")
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// WithTx runs fn inside a single database/sql transaction, committing on a
// nil return and rolling back otherwise.
func (d *DB) WithTx(ctx context.Context, fn func(storage.Tx) error) error {
	sqlTx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperr.ErrTxStart
	}

	tx := &txImpl{tx: sqlTx}

	if err := fn(tx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return apperr.ErrTxCommit
	}

	return nil
}
