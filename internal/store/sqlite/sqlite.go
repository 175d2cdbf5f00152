package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/loykin/proclife/internal/store"
)

// DB implements store.Store on SQLite (modernc.org/sqlite driver, CGO-free).
// Path is a filesystem location for the database file; ":memory:" works for
// tests.
type DB struct {
	db *sql.DB
}

func New(path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	return &DB{db: d}, nil
}

func (s *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lifecycle_events(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			pid INTEGER NOT NULL,
			name TEXT NOT NULL,
			from_state TEXT,
			to_state TEXT,
			importance REAL NOT NULL,
			occurred_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_lifecycle_events_pid ON lifecycle_events(pid);`,
		`CREATE INDEX IF NOT EXISTS idx_lifecycle_events_type ON lifecycle_events(type);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) RecordEvent(ctx context.Context, e store.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lifecycle_events(type, pid, name, from_state, to_state, importance, occurred_at)
		VALUES(?, ?, ?, ?, ?, ?, ?);`,
		string(e.Type), e.PID, e.Name, e.FromState, e.ToState, e.Importance, e.OccurredAt.UTC())
	return err
}

func (s *DB) EventsByPID(ctx context.Context, pid int32, limit int) ([]store.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, pid, name, from_state, to_state, importance, occurred_at
		FROM lifecycle_events
		WHERE pid=?
		ORDER BY id DESC
		LIMIT ?;`, pid, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []store.Event
	for rows.Next() {
		var e store.Event
		var typ string
		var from, to sql.NullString
		if err := rows.Scan(&e.ID, &typ, &e.PID, &e.Name, &from, &to, &e.Importance, &e.OccurredAt); err != nil {
			return nil, err
		}
		e.Type = store.EventType(typ)
		e.FromState = from.String
		e.ToState = to.String
		out = append(out, e)
	}
	return out, rows.Err()
}
