// Package history persists a local log of sync runs in SQLite.
//
// The log is advisory: it never influences reconciliation, which always works
// from the live remote listing. It exists so `foliosync history` can answer
// "what did the last runs do" without the Webflow dashboard.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	dry_run     INTEGER NOT NULL DEFAULT 0,
	created     INTEGER NOT NULL DEFAULT 0,
	updated     INTEGER NOT NULL DEFAULT 0,
	noops       INTEGER NOT NULL DEFAULT 0,
	published   INTEGER NOT NULL DEFAULT 0,
	enriched    INTEGER NOT NULL DEFAULT 0,
	enrich_failed INTEGER NOT NULL DEFAULT 0,
	schema      TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one recorded sync invocation.
type Run struct {
	ID           int64
	StartedAt    time.Time
	Duration     time.Duration
	DryRun       bool
	Created      int
	Updated      int
	Noops        int
	Published    int
	Enriched     int
	EnrichFailed int
	// Schema is the field-naming variant the run used.
	Schema string
	// Error is empty for successful runs.
	Error string
}

// Store is the run-history database.
type Store struct {
	db *sql.DB
}

// Open opens (and bootstraps) the history database at path, creating the
// parent directory if needed.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;
	`
	if _, err := db.Exec(pragmas); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun appends one run to the log and returns its id.
func (s *Store) RecordRun(r Run) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO runs (started_at, duration_ms, dry_run, created, updated, noops, published, enriched, enrich_failed, schema, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.Duration.Milliseconds(),
		boolToInt(r.DryRun),
		r.Created, r.Updated, r.Noops, r.Published,
		r.Enriched, r.EnrichFailed,
		r.Schema,
		r.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, started_at, duration_ms, dry_run, created, updated, noops, published, enriched, enrich_failed, schema, error
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		var durationMS int64
		var dryRun int

		if err := rows.Scan(&r.ID, &startedAt, &durationMS, &dryRun,
			&r.Created, &r.Updated, &r.Noops, &r.Published,
			&r.Enriched, &r.EnrichFailed, &r.Schema, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		if ts, err := time.Parse(time.RFC3339, startedAt); err == nil {
			r.StartedAt = ts
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.DryRun = dryRun == 1
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
