// Package history records icon generation and release runs in a SQLite
// database so past output sets can be listed and audited.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Mavwarf/appicons/internal/icongen"
	"github.com/Mavwarf/appicons/internal/paths"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) a SQLite database at path and creates
// tables and indexes.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs are per connection; one connection keeps foreign_keys on.
	db.SetMaxOpenConns(1)

	// Set PRAGMAs before any DDL.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	ddl := `
CREATE TABLE IF NOT EXISTS runs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp  TEXT    NOT NULL,
    kind       TEXT    NOT NULL,
    platform   TEXT    NOT NULL DEFAULT '',
    source     TEXT    NOT NULL DEFAULT '',
    attempted  INTEGER NOT NULL DEFAULT 0,
    written    INTEGER NOT NULL DEFAULT 0,
    failed     INTEGER NOT NULL DEFAULT 0,
    note       TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS outputs (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id  INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    path    TEXT    NOT NULL,
    width   INTEGER NOT NULL,
    height  INTEGER NOT NULL,
    error   TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_outputs_run    ON outputs(run_id);
`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) LogGeneration(res *icongen.Result, source string) (int64, error) {
	ts := time.Now().Format(time.RFC3339)
	failed := len(res.Failed())

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	r, err := tx.Exec(
		`INSERT INTO runs (timestamp, kind, platform, source, attempted, written, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ts, string(KindIcons), res.Platform, source, res.Attempted, res.Attempted-failed, failed,
	)
	if err != nil {
		return 0, err
	}
	runID, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, o := range res.Outcomes {
		var msg string
		if o.Err != nil {
			msg = o.Err.Error()
		}
		if _, err := tx.Exec(
			`INSERT INTO outputs (run_id, path, width, height, error) VALUES (?, ?, ?, ?, ?)`,
			runID, o.Path, o.Width, o.Height, msg,
		); err != nil {
			return 0, err
		}
	}

	return runID, tx.Commit()
}

func (s *SQLiteStore) LogFatal(platform, source string, runErr error) (int64, error) {
	ts := time.Now().Format(time.RFC3339)
	r, err := s.db.Exec(
		`INSERT INTO runs (timestamp, kind, platform, source, note) VALUES (?, ?, ?, ?, ?)`,
		ts, string(KindIcons), platform, source, runErr.Error(),
	)
	if err != nil {
		return 0, err
	}
	return r.LastInsertId()
}

func (s *SQLiteStore) LogRelease(ok bool, note string) (int64, error) {
	ts := time.Now().Format(time.RFC3339)
	failed := 0
	if !ok {
		failed = 1
	}
	r, err := s.db.Exec(
		`INSERT INTO runs (timestamp, kind, failed, note) VALUES (?, ?, ?, ?)`,
		ts, string(KindRelease), failed, note,
	)
	if err != nil {
		return 0, err
	}
	return r.LastInsertId()
}

func (s *SQLiteStore) Runs(days int) ([]Run, error) {
	query := `SELECT id, timestamp, kind, platform, source, attempted, written, failed, note FROM runs`
	var args []any
	if days > 0 {
		query += ` WHERE timestamp >= ?`
		args = append(args, DayCutoff(days).Format(time.RFC3339))
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var tsStr, kind string
		if err := rows.Scan(&r.ID, &tsStr, &kind, &r.Platform, &r.Source,
			&r.Attempted, &r.Written, &r.Failed, &r.Note); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, tsStr)
		if err != nil {
			continue
		}
		r.Time = ts
		r.Kind = Kind(kind)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Outputs(runID int64) ([]Output, error) {
	rows, err := s.db.Query(
		`SELECT path, width, height, error FROM outputs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outs []Output
	for rows.Next() {
		var o Output
		if err := rows.Scan(&o.Path, &o.Width, &o.Height, &o.Error); err != nil {
			return nil, err
		}
		outs = append(outs, o)
	}
	return outs, rows.Err()
}

func (s *SQLiteStore) Clean(days int) (int, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := DayCutoff(days).Format(time.RFC3339)
	res, err := s.db.Exec(`DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM runs`)
	return err
}
