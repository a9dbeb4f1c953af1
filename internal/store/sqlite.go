// Package store provides knowledge base implementations: a SQLite-backed
// persistent store and an in-memory store for tests and zero-setup runs.
// Entries are keyed by exact (whitespace-normalized) question text; fuzzy
// lookup happens in the matcher, not here.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"formnerd/internal/form"
)

// SQLiteStore persists question/answer entries in a local SQLite database.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if needed) the knowledge database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS qa_entries (
			question    TEXT PRIMARY KEY,
			answer      TEXT NOT NULL,
			answer_type TEXT NOT NULL,
			updated_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create qa_entries table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// NormalizeQuestion collapses whitespace runs and trims the question. Storage
// keys are whitespace-normalized but case-sensitive.
func NormalizeQuestion(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

// GetAll returns every entry in insertion order. Safe for concurrent readers.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]form.QAEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT question, answer, answer_type, updated_at FROM qa_entries ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []form.QAEntry
	for rows.Next() {
		var e form.QAEntry
		var at string
		if err := rows.Scan(&e.Question, &e.Answer, &at, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.AnswerType = form.AnswerType(at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertByQuestion replaces the entry with an identical (normalized) question
// or inserts a new one.
func (s *SQLiteStore) UpsertByQuestion(ctx context.Context, question, answer string, at form.AnswerType) error {
	q := NormalizeQuestion(question)
	if q == "" {
		return fmt.Errorf("empty question")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO qa_entries (question, answer, answer_type, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(question) DO UPDATE SET
			answer = excluded.answer,
			answer_type = excluded.answer_type,
			updated_at = CURRENT_TIMESTAMP
	`, q, answer, string(at))
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}
