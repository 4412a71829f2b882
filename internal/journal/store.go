// Package journal records every submission and replay the operator makes so
// recent run ids can be listed and replayed later.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/database"
)

// DefaultRetain bounds how many entries are kept.
const DefaultRetain = 1000

// Entry is one journaled action.
type Entry struct {
	ID        int64
	RunID     string
	Kind      string
	Message   string
	Status    string
	CreatedAt time.Time
}

// Store persists entries through a database.Client.
type Store struct {
	db     *database.Client
	retain int
	now    func() time.Time
}

// New wraps db. Call Migrate before first use.
func New(db *database.Client) *Store {
	return &Store{db: db, retain: DefaultRetain, now: time.Now}
}

// Migrate creates the journal table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	idColumn := "BIGSERIAL PRIMARY KEY"
	if s.db.Dialect == database.DialectSQLite {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS console_runs (
		id %s,
		run_id TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`, idColumn)
	if _, err := s.db.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating console_runs: %w", err)
	}
	return nil
}

// Record appends e and prunes entries beyond the retention bound.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.db.Rebind(
			`INSERT INTO console_runs (run_id, kind, message, status, created_at) VALUES (?, ?, ?, ?, ?)`),
			e.RunID, e.Kind, e.Message, e.Status, e.CreatedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("inserting journal entry: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.db.Rebind(
			`DELETE FROM console_runs WHERE id NOT IN (SELECT id FROM console_runs ORDER BY id DESC LIMIT ?)`),
			s.retain,
		); err != nil {
			return fmt.Errorf("pruning journal: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.DB.QueryContext(ctx, s.db.Rebind(
		`SELECT id, run_id, kind, message, status, created_at FROM console_runs ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Kind, &e.Message, &e.Status, &created); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ping checks the underlying database.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
