// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local ledger of conversion runs in SQLite.
// Implements: prd004-reporting (R3-R5);
//
//	docs/ARCHITECTURE § Run History.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/clearclown/markpdfdown/pkg/types"
)

const dbFile = "history.db"

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the per-user history database location.
func DefaultPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "markpdfdown", dbFile), nil
}

// Open opens or creates the history database at path. It creates parent
// directories and the schema if they do not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			total_pages INTEGER NOT NULL,
			total_jobs INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			gaps INTEGER NOT NULL,
			output_bytes INTEGER NOT NULL,
			output_lines INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

// Record inserts one run report into the ledger.
func (s *Store) Record(ctx context.Context, report types.RunReport) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input, output, total_pages, total_jobs, succeeded, failed, gaps,
			output_bytes, output_lines, duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.Input, report.Output,
		report.TotalPages, report.TotalJobs, report.Succeeded, report.Failed, report.Gaps,
		report.OutputBytes, report.OutputLines,
		report.Duration.Milliseconds(), report.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns up to n runs, newest first. n <= 0 selects a default of 20.
func (s *Store) Recent(ctx context.Context, n int) ([]types.RunReport, error) {
	if n <= 0 {
		n = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, output, total_pages, total_jobs, succeeded, failed, gaps,
			output_bytes, output_lines, duration_ms, started_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var reports []types.RunReport
	for rows.Next() {
		var (
			r          types.RunReport
			durationMS int64
			startedAt  string
		)
		if err := rows.Scan(&r.RunID, &r.Input, &r.Output,
			&r.TotalPages, &r.TotalJobs, &r.Succeeded, &r.Failed, &r.Gaps,
			&r.OutputBytes, &r.OutputLines, &durationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			r.StartedAt = ts
		}
		reports = append(reports, r)
	}

	return reports, rows.Err()
}

// Prune deletes all but the newest keep runs and reports how many rows
// were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned runs: %w", err)
	}
	return int(deleted), nil
}
