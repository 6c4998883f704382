// Package cache provides SQLite-backed persistence for draft answers,
// keyed by (session, question). Drafts survive reloads and are cleared
// only by explicit user action.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store provides SQLite-backed persistence for answer drafts.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS drafts (
		session_id TEXT NOT NULL,
		question_id TEXT NOT NULL,
		text TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session_id, question_id)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Save stores the draft text for (sessionID, questionID), overwriting any
// existing entry. Saving the same text twice is a no-op in effect.
func (s *Store) Save(sessionID, questionID, text string) error {
	_, err := s.db.Exec(
		`INSERT INTO drafts (session_id, question_id, text, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (session_id, question_id)
		 DO UPDATE SET text = excluded.text, updated_at = excluded.updated_at`,
		sessionID, questionID, text, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}

	return nil
}

// Load returns the last saved draft text for (sessionID, questionID), or
// the empty string if none exists.
func (s *Store) Load(sessionID, questionID string) (string, error) {
	row := s.db.QueryRow(
		`SELECT text FROM drafts WHERE session_id = ? AND question_id = ?`,
		sessionID, questionID,
	)

	var text string
	err := row.Scan(&text)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("scan draft: %w", err)
	}

	return text, nil
}

// Clear removes all drafts for the given session.
func (s *Store) Clear(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM drafts WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("clear drafts: %w", err)
	}

	return nil
}

// List returns the question IDs that have a saved draft for the session,
// most recently updated first.
func (s *Store) List(sessionID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT question_id FROM drafts
		 WHERE session_id = ?
		 ORDER BY updated_at DESC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return ids, nil
}
