// Package sqlite stores registry tables as rows of an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jun/gophbox/internal/store"
)

// Backend keeps one row per registry table.
type Backend struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and prepares the schema.
func Open(path string) (*Backend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	b := &Backend{db: db}
	if err := b.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) initialize() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS registry_tables (
			name TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			updated_at DATETIME NOT NULL
		);
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`)
	if err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

func (b *Backend) Read(ctx context.Context, table string) ([]byte, error) {
	var body []byte
	err := b.db.QueryRowContext(ctx, `SELECT body FROM registry_tables WHERE name = ?`, table).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotExist
		}
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return body, nil
}

func (b *Backend) Write(ctx context.Context, table string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO registry_tables (name, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, table, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}
