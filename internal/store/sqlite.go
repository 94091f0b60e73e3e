package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "quicklists.sqlite"

// SQLiteBackend stores each key as one row of the collections table.
type SQLiteBackend struct {
	Path string

	db *sql.DB
}

func OpenSQLite(ctx context.Context, dir string) (*SQLiteBackend, error) {
	dir, err := ensureDir(dir)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, sqliteFileName)
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL: one writer + many readers. busy_timeout avoids "database is locked" when the
	// CLI and the TUI touch the same store.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteBackend{Path: path, db: db}, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT json FROM collections WHERE name = ?`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(raw), true, nil
}

func (s *SQLiteBackend) Put(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := time.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO collections(name, json, updated_at_unixms) VALUES(?, ?, ?)`,
		key, string(value), nowMs); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteBackend) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
