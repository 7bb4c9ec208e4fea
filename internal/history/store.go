// Package history persists successful resolutions so frontends can offer
// "recently opened" entries. Only user history is stored; the index
// itself is never persisted and is rebuilt from a scan every run.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/pscan/internal/filelock"
	"github.com/harrison/pscan/internal/index"
)

//go:embed schema.sql
var schemaSQL string

// writeLockTimeout bounds how long a write waits for the cross-process
// lock before giving up.
const writeLockTimeout = 5 * time.Second

// Resolution is one recorded resolve: the selection, the path it
// identified, and which snapshot answered it.
type Resolution struct {
	ID         int64
	ResolvedAt time.Time
	SnapshotID string
	Selection  index.Selection
	Path       string
}

// Store manages the SQLite history database. Reads need no coordination;
// writes take a cross-process flock so several pscan frontends can share
// one database file.
type Store struct {
	db    *sql.DB
	guard *filelock.Guard
}

// Open creates the database (and its parent directory) if needed and
// applies the schema. ":memory:" is supported for tests.
func Open(dbPath string) (*Store, error) {
	var guard *filelock.Guard
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
		var err error
		guard, err = filelock.ForFile(dbPath)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of
	// failing immediately.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db, guard: guard}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one successful resolution.
func (s *Store) Record(ctx context.Context, snapshotID string, sel index.Selection, path string) error {
	selJSON, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}

	unlock, err := s.lockForWrite()
	if err != nil {
		return err
	}
	defer unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resolutions (resolved_at, snapshot_id, selection, path) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), snapshotID, string(selJSON), path,
	)
	if err != nil {
		return fmt.Errorf("record resolution: %w", err)
	}
	return nil
}

// Recent returns the most recent resolutions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Resolution, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, resolved_at, snapshot_id, selection, path
		 FROM resolutions ORDER BY resolved_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Resolution
	for rows.Next() {
		var (
			r       Resolution
			selJSON string
		)
		if err := rows.Scan(&r.ID, &r.ResolvedAt, &r.SnapshotID, &selJSON, &r.Path); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(selJSON), &r.Selection); err != nil {
			return nil, fmt.Errorf("decode selection %q: %w", selJSON, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Clear removes all recorded resolutions.
func (s *Store) Clear(ctx context.Context) error {
	unlock, err := s.lockForWrite()
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM resolutions`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// lockForWrite takes the cross-process lock when one exists (file-backed
// databases only) and returns the matching release func.
func (s *Store) lockForWrite() (func(), error) {
	if s.guard == nil {
		return func() {}, nil
	}
	if err := s.guard.Lock(writeLockTimeout); err != nil {
		return nil, err
	}
	return func() { s.guard.Unlock() }, nil
}
