// Package store provides SQLite-backed persistence for run history.
// Only terminal run results are recorded; in-flight state stays in memory.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/output"
)

// RunRecord is one persisted workflow run.
type RunRecord struct {
	ID         string
	Workflow   string
	EntryURL   string
	Success    bool
	Error      string
	Summary    string
	DurationMs int64
	CreatedAt  time.Time
}

// Store wraps a SQLite database holding run history.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database at dbPath and ensures the
// runs table exists. Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		workflow    TEXT NOT NULL,
		entry_url   TEXT NOT NULL,
		success     INTEGER NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		summary     TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

// RecordRun persists the terminal record of a finished run.
func (s *Store) RecordRun(result *output.RunResult) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, workflow, entry_url, success, error, summary, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Workflow, result.EntryURL,
		result.Success, result.Error, result.Summary, result.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, most recent first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, workflow, entry_url, success, error, summary, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Workflow, &r.EntryURL, &r.Success,
			&r.Error, &r.Summary, &r.DurationMs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return records, nil
}
