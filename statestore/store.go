// Package statestore persists the last scroll position per previewed
// document, so a preview reopened on the same file restores where the user
// left off.
//
//	import _ "modernc.org/sqlite"
//	store, err := statestore.Open("state.db")
package statestore

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS scroll_state (
	path       TEXT PRIMARY KEY,
	percentage REAL NOT NULL,
	line       INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Position is one persisted scroll position.
type Position struct {
	Percentage float64
	Line       int
}

// Store is a sqlite-backed scroll position store.
type Store struct {
	db *sql.DB
}

// Open opens the state database, creating it and its schema as needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("statestore: open: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("statestore: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("statestore: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens an in-memory store for tests.
func OpenMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Load returns the persisted position for a document path. ok is false when
// none is stored.
func (s *Store) Load(ctx context.Context, path string) (Position, bool, error) {
	var p Position
	err := s.db.QueryRowContext(ctx,
		`SELECT percentage, line FROM scroll_state WHERE path = ?`, path).
		Scan(&p.Percentage, &p.Line)
	if err == sql.ErrNoRows {
		return Position{}, false, nil
	}
	if err != nil {
		return Position{}, false, fmt.Errorf("statestore: load %s: %w", path, err)
	}
	return p, true, nil
}

// Save upserts the position for a document path.
func (s *Store) Save(ctx context.Context, path string, p Position) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scroll_state (path, percentage, line, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT(path) DO UPDATE SET
			percentage = excluded.percentage,
			line       = excluded.line,
			updated_at = excluded.updated_at`,
		path, p.Percentage, p.Line, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("statestore: save %s: %w", path, err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
