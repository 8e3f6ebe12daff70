package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS session_items (
	session_id TEXT NOT NULL REFERENCES sessions(id),
	seq INTEGER NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
);`

type sqliteBackend struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dsn.
func NewSQLiteStore(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return newStore(&sqliteBackend{db: db}), nil
}

func (s *sqliteBackend) create(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, created_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *sqliteBackend) exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *sqliteBackend) load(ctx context.Context, id string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM session_items WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var item Item
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *sqliteBackend) append(ctx context.Context, id string, items []Item) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var next int
	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), -1) + 1 FROM session_items WHERE session_id = ?`, id).Scan(&next); err != nil {
		return err
	}
	for i, item := range items {
		payload, marshalErr := json.Marshal(item)
		if marshalErr != nil {
			err = fmt.Errorf("failed to marshal item: %w", marshalErr)
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO session_items (session_id, seq, payload) VALUES (?, ?, ?)`,
			id, next+i, string(payload)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteBackend) close() error {
	return s.db.Close()
}
