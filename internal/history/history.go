// Package history keeps a SQLite journal of profile transitions and keyboard
// lighting changes made by the daemon.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver
)

// Transition is one attempted power-profile switch.
type Transition struct {
	Time        time.Time
	From        string
	To          string
	Mode        string
	IdleSeconds int64
	Err         error
}

// Lighting is one attempted keyboard color change.
type Lighting struct {
	Time        time.Time
	Source      string
	Color       string
	Brightness  string
	Temperature int
	Err         error
}

// Entry is a journal row as shown by `auto-idle history` and /history.
type Entry struct {
	Time    time.Time `json:"time"`
	Kind    string    `json:"kind"`
	Summary string    `json:"summary"`
	OK      bool      `json:"ok"`
	Error   string    `json:"error,omitempty"`
}

// Store wraps the journal database.
type Store struct {
	db *sql.DB
}

// Open creates or opens dir/history.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	dsn := filepath.Join(dir, "history.db") + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS transitions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			at           INTEGER NOT NULL,
			from_state   TEXT NOT NULL,
			to_state     TEXT NOT NULL,
			mode         TEXT NOT NULL,
			idle_seconds INTEGER NOT NULL,
			ok           BOOLEAN NOT NULL,
			error        TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_at ON transitions(at)`,
		`CREATE TABLE IF NOT EXISTS lighting (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			at          INTEGER NOT NULL,
			source      TEXT NOT NULL,
			color       TEXT NOT NULL,
			brightness  TEXT NOT NULL,
			temperature INTEGER NOT NULL DEFAULT 0,
			ok          BOOLEAN NOT NULL,
			error       TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lighting_at ON lighting(at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) RecordTransition(ctx context.Context, t Transition) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transitions (at, from_state, to_state, mode, idle_seconds, ok, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stamp(t.Time), t.From, t.To, t.Mode, t.IdleSeconds, t.Err == nil, errText(t.Err))
	if err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}

func (s *Store) RecordLighting(ctx context.Context, l Lighting) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lighting (at, source, color, brightness, temperature, ok, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stamp(l.Time), l.Source, l.Color, l.Brightness, l.Temperature, l.Err == nil, errText(l.Err))
	if err != nil {
		return fmt.Errorf("record lighting: %w", err)
	}
	return nil
}

// Recent returns the newest entries of both kinds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT at, kind, summary, ok, error FROM (
			SELECT at, id, 'profile' AS kind,
				from_state || ' -> ' || to_state || ' (' || mode || ', idle ' || idle_seconds || 's)' AS summary,
				ok, error
			FROM transitions
			UNION ALL
			SELECT at, id, 'lighting' AS kind,
				source || ' ' || color || ' ' || brightness ||
				CASE WHEN source = 'temperature' THEN ' at ' || temperature || 'C' ELSE '' END AS summary,
				ok, error
			FROM lighting
		)
		ORDER BY at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			at int64
			e  Entry
		)
		if err := rows.Scan(&at, &e.Kind, &e.Summary, &e.OK, &e.Error); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Time = time.UnixMilli(at).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func stamp(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().UnixMilli()
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
