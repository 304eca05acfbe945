// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an audit log of aigrok runs in SQLite. Each run
// gets a UUID and one row per processed file. The log is never consulted
// to skip work.
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

	"github.com/pdiddy/aigrok/pkg/types"
)

// timeLayout is fixed-width so start times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is the recorded outcome of one file.
type Entry struct {
	Filename  string `json:"filename"`
	Success   bool   `json:"success"`
	PageCount int    `json:"page_count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Run is one recorded invocation.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Prompt    string    `json:"prompt"`
	Format    string    `json:"format"`
	Entries   []Entry   `json:"entries"`
}

// Failed returns the number of failed entries.
func (r Run) Failed() int {
	n := 0
	for _, e := range r.Entries {
		if !e.Success {
			n++
		}
	}
	return n
}

// NewRun builds a Run with a fresh ID from a result set.
func NewRun(startedAt time.Time, prompt, format string, rs types.ResultSet) Run {
	run := Run{
		ID:        uuid.New().String(),
		StartedAt: startedAt.UTC(),
		Prompt:    prompt,
		Format:    format,
		Entries:   make([]Entry, len(rs)),
	}
	for i, r := range rs {
		run.Entries[i] = Entry{
			Filename:  types.ResolveFilename(r),
			Success:   r.Success,
			PageCount: r.PageCount,
			Error:     r.Error,
		}
	}
	return run
}

// DefaultPath returns ~/.local/share/aigrok/history.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, ".local", "share", "aigrok", "history.db")
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and its schema. An empty
// path selects DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
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
			prompt TEXT,
			format TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			filename TEXT NOT NULL,
			success INTEGER NOT NULL,
			page_count INTEGER,
			error TEXT,
			PRIMARY KEY (run_id, position)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and its entries in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, prompt, format) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.Prompt, run.Format)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, position, filename, success, page_count, error)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range run.Entries {
		if _, err := stmt.ExecContext(ctx, run.ID, i, e.Filename, e.Success, e.PageCount, e.Error); err != nil {
			return fmt.Errorf("inserting result %s: %w", e.Filename, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit runs, newest first, with their entries in
// input order.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, prompt, format FROM runs
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			started string
		)
		if err := rows.Scan(&r.ID, &started, &r.Prompt, &r.Format); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, err = time.Parse(timeLayout, started)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("run %s: parsing start time: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range runs {
		entries, err := s.entries(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Entries = entries
	}
	return runs, nil
}

func (s *Store) entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, success, page_count, error FROM results
		 WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results of run %s: %w", runID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			pageCount sql.NullInt64
			errMsg    sql.NullString
		)
		if err := rows.Scan(&e.Filename, &e.Success, &pageCount, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		e.PageCount = int(pageCount.Int64)
		e.Error = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
