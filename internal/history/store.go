// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an optional SQLite ledger of fetch runs and their
// per-file outcomes. The files on disk remain the dedup signal; the ledger
// is for reporting only.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ppd/pkg/types"
)

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one fetch invocation and everything it did.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Options   types.ResolutionOptions
	Dir       string
	Outcomes  []types.DownloadOutcome
}

// NewRun starts a Run with a fresh ID.
func NewRun(opts types.ResolutionOptions, dir string) Run {
	return Run{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
		Options:   opts,
		Dir:       dir,
	}
}

// Entry is one recorded outcome joined with its run.
type Entry struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Issue     string    `json:"issue" yaml:"issue"`
	Format    string    `json:"format" yaml:"format"`
	URL       string    `json:"url" yaml:"url"`
	Path      string    `json:"path" yaml:"path"`
	Outcome   string    `json:"outcome" yaml:"outcome"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at cfg.Path and ensures the schema.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("history database path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
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
			started_at TEXT NOT NULL,
			pub TEXT NOT NULL,
			lang TEXT NOT NULL,
			year TEXT NOT NULL,
			month TEXT NOT NULL,
			format TEXT NOT NULL,
			cont INTEGER NOT NULL,
			dir TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			issue TEXT NOT NULL,
			url TEXT NOT NULL,
			path TEXT,
			outcome TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a run and its outcomes in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	o := run.Options
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, pub, lang, year, month, format, cont, dir)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.StartedAt.UTC().Format(timeLayout), string(o.Pub), o.Lang,
		o.YearString(), fmt.Sprintf("%02d", o.Month), string(o.Format), o.Continue, run.Dir,
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (run_id, seq, issue, url, path, outcome, error) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing outcome insert: %w", err)
	}
	defer stmt.Close()

	for i, out := range run.Outcomes {
		if _, err := stmt.ExecContext(ctx,
			run.ID.String(), i, out.Link.Query.String(), out.Link.URL, out.Path, string(out.Outcome), out.Error,
		); err != nil {
			return fmt.Errorf("inserting outcome %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit outcomes, newest run first and in fetch order
// within a run. A limit of zero or less returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT r.id, r.started_at, o.issue, r.format, o.url, COALESCE(o.path, ''), o.outcome, COALESCE(o.error, '')
		FROM outcomes o JOIN runs r ON r.id = o.run_id
		ORDER BY r.started_at DESC, o.seq ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started string
		if err := rows.Scan(&e.RunID, &started, &e.Issue, &e.Format, &e.URL, &e.Path, &e.Outcome, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if t, err := time.Parse(timeLayout, started); err == nil {
			e.StartedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
