// Package store persists connection diagnostics to SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/adminsuite/realtime-client/internal/state"
)

// Transition is one recorded state transition.
type Transition struct {
	ID        int64
	FromState state.State
	ToState   state.State
	Trigger   string
	Timestamp time.Time
}

// Attempt is one recorded reconnection attempt.
type Attempt struct {
	ID        int64
	Attempt   int
	Delay     time.Duration
	Error     string
	Timestamp time.Time
}

// DiagnosticsStore records state transitions and reconnect attempts for
// post-mortem inspection. It never stores message payloads.
type DiagnosticsStore struct {
	db *sql.DB
}

// NewDiagnosticsStore opens (and migrates) the diagnostics database at dsn.
func NewDiagnosticsStore(dsn string) (*DiagnosticsStore, error) {
	db, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DiagnosticsStore{db: db}, nil
}

// Close closes the database connection.
func (s *DiagnosticsStore) Close() error {
	return s.db.Close()
}

func runMigrations(db *sql.DB) error {
	migration := `
	CREATE TABLE IF NOT EXISTS transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_state TEXT NOT NULL,
		to_state TEXT NOT NULL,
		trigger TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transitions_timestamp ON transitions(timestamp DESC);

	CREATE TABLE IF NOT EXISTS reconnect_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		attempt INTEGER NOT NULL,
		delay_ms INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		timestamp TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_timestamp ON reconnect_attempts(timestamp DESC);
	`
	_, err := db.Exec(migration)
	return err
}

// LogTransition records one state transition.
func (s *DiagnosticsStore) LogTransition(ctx context.Context, from, to state.State, trigger string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transitions (from_state, to_state, trigger, timestamp) VALUES (?, ?, ?, ?)",
		string(from), string(to), trigger, time.Now(),
	)
	return err
}

// LogAttempt records one scheduled reconnection attempt.
func (s *DiagnosticsStore) LogAttempt(ctx context.Context, attempt int, delay time.Duration, attemptErr error) error {
	errStr := ""
	if attemptErr != nil {
		errStr = attemptErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO reconnect_attempts (attempt, delay_ms, error, timestamp) VALUES (?, ?, ?, ?)",
		attempt, delay.Milliseconds(), errStr, time.Now(),
	)
	return err
}

// TransitionHistory returns the most recent transitions, newest first.
func (s *DiagnosticsStore) TransitionHistory(ctx context.Context, limit int) ([]Transition, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, from_state, to_state, trigger, timestamp FROM transitions ORDER BY timestamp DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []Transition
	for rows.Next() {
		var t Transition
		var from, to string
		if err := rows.Scan(&t.ID, &from, &to, &t.Trigger, &t.Timestamp); err != nil {
			return nil, err
		}
		t.FromState = state.State(from)
		t.ToState = state.State(to)
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

// AttemptHistory returns the most recent reconnect attempts, newest first.
func (s *DiagnosticsStore) AttemptHistory(ctx context.Context, limit int) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, attempt, delay_ms, error, timestamp FROM reconnect_attempts ORDER BY timestamp DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var delayMs int64
		if err := rows.Scan(&a.ID, &a.Attempt, &delayMs, &a.Error, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Delay = time.Duration(delayMs) * time.Millisecond
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
