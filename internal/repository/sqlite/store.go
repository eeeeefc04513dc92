// Package sqlite implements the record store on a local SQLite file using the
// pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

// Store keeps one table per record kind, each row holding a JSON document.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

// Open creates (or reuses) the database file at path and provisions every
// table. Existing tables and rows are left untouched.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		path = "ovin_manager.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: create dirs: %v", models.ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", models.ErrStorageUnavailable, err)
	}
	// A single connection serialises every operation on the file.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}

	logger.Info("sqlite store ready", zap.String("path", path), zap.Int("schema_version", store.SchemaVersion))
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	for _, table := range store.Tables {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`, table)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create %s table: %w", table, err)
		}
	}

	if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_version (id, version) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET version = excluded.version
		WHERE excluded.version > schema_version.version`, store.SchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// Version returns the schema version recorded in the file.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version WHERE id = 1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (s *Store) GetAll(ctx context.Context, table store.Table) ([][]byte, error) {
	if !store.Known(table) {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT payload FROM %s`, table))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var out [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, table store.Table, id string, doc []byte) error {
	if !store.Known(table) {
		return fmt.Errorf("unknown table %q", table)
	}
	stmt := fmt.Sprintf(`INSERT INTO %s (id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`, table)
	if _, err := s.db.ExecContext(ctx, stmt, id, doc, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", table, id, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, table store.Table, id string) error {
	if !store.Known(table) {
		return fmt.Errorf("unknown table %q", table)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	return nil
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}
