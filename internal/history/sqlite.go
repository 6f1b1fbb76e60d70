package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore keeps history in a SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	max    int
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates a SQLite history database.
// The path should be a file path or ":memory:" for testing.
func NewSQLiteStore(path string, max int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			expression TEXT NOT NULL,
			result REAL NOT NULL,
			timestamp TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_history_seq
		ON history(seq)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db, max: limit(max)}, nil
}

// Add implements Store.
func (s *SQLiteStore) Add(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	e = fill(e)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history (id, seq, expression, result, timestamp)
		VALUES (
			?,
			COALESCE((SELECT MAX(seq) FROM history), 0) + 1,
			?, ?, ?
		)
	`, e.ID, e.Expression, e.Result, e.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("add history entry: %w", err)
	}

	// Keep only the newest entries.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM history
		WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)
	`, s.max)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history entry: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expression, result, timestamp
		FROM history
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var timestamp string
		if err := rows.Scan(&e.ID, &e.Expression, &e.Result, &timestamp); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Compile-time interface checks.
var (
	_ Store = (*JSONStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
