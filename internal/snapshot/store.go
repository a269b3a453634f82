// Package snapshot persists the last-seen deadline set per user so the
// cycle loop can detect due-date shifts between runs.
package snapshot

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS deadline_snapshots (
	user_id TEXT NOT NULL,
	deadline_key TEXT NOT NULL,
	due_date TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (user_id, deadline_key)
);
`

// Store implements agent.SnapshotStore using SQLite.
type Store struct {
	db *sql.DB
}

// New opens the SQLite database at path (creating parent dirs and schema).
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the persisted deadline set for a user, keyed by deadline
// identity. An unknown user yields an empty map.
func (s *Store) Load(userID string) (map[string]time.Time, error) {
	rows, err := s.db.Query(`SELECT deadline_key, due_date FROM deadline_snapshots WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]time.Time)
	for rows.Next() {
		var key, due string
		if err := rows.Scan(&key, &due); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		t, err := time.Parse(time.RFC3339, due)
		if err != nil {
			continue
		}
		snapshot[key] = t
	}
	return snapshot, rows.Err()
}

// Save replaces the persisted deadline set for a user.
func (s *Store) Save(userID string, snapshot map[string]time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM deadline_snapshots WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for key, due := range snapshot {
		_, err := tx.Exec(
			`INSERT INTO deadline_snapshots (user_id, deadline_key, due_date, updated_at) VALUES (?, ?, ?, ?)`,
			userID, key, due.UTC().Format(time.RFC3339), now,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}
	return tx.Commit()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
