// Package state persists conversion run history in SQLite.
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run records one conversion invocation and its outcome counters.
type Run struct {
	ID         string
	SourcePath string
	OutputPath string
	Provider   string
	Statements int
	Rewritten  int
	Skeletons  int
	Failures   int
	DurationMS int64
	CreatedAt  time.Time
}

// Store is the SQLite-backed run history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates an unopened store.
func NewStore() *Store {
	return &Store{}
}

// Open opens the SQLite database at path. Use ":memory:" for an
// in-memory database.
func (s *Store) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// RecordRun inserts a run row, assigning an ID and timestamp when unset.
func (s *Store) RecordRun(run *Run) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if run.ID == "" {
		run.ID = generateID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO conversion_runs (id, source_path, output_path, provider, statements, rewritten, skeletons, failures, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourcePath, run.OutputPath, run.Provider,
		run.Statements, run.Rewritten, run.Skeletons, run.Failures,
		run.DurationMS, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{}
	err := s.db.QueryRow(
		`SELECT id, source_path, output_path, provider, statements, rewritten, skeletons, failures, duration_ms, created_at
		 FROM conversion_runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.SourcePath, &run.OutputPath, &run.Provider,
		&run.Statements, &run.Rewritten, &run.Skeletons, &run.Failures,
		&run.DurationMS, &run.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRuns retrieves the most recent runs, newest first. A non-positive
// limit returns all runs.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, source_path, output_path, provider, statements, rewritten, skeletons, failures, duration_ms, created_at
	 FROM conversion_runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(&run.ID, &run.SourcePath, &run.OutputPath, &run.Provider,
			&run.Statements, &run.Rewritten, &run.Skeletons, &run.Failures,
			&run.DurationMS, &run.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ClearRuns deletes all history rows and reports how many were removed.
func (s *Store) ClearRuns() (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	result, err := s.db.Exec(`DELETE FROM conversion_runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear runs: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
