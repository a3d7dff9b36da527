package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"example.com/ocean-notes/internal/db"
)

const schema = `
	CREATE TABLE IF NOT EXISTS slots (
		slot_key   TEXT PRIMARY KEY,
		slot_value TEXT NOT NULL
	)
`

// SQLSlot keeps slots as rows of a single table. It works on SQLite and
// Postgres; only the placeholder syntax differs.
type SQLSlot struct {
	db *db.DB

	stmtGet *sql.Stmt
	stmtSet *sql.Stmt
}

func NewSQLSlot(ctx context.Context, conn *db.DB) (*SQLSlot, error) {
	if _, err := conn.SQL.ExecContext(ctx, schema); err != nil {
		_ = conn.SQL.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	p1, p2 := "?", "?"
	if conn.Driver == db.DriverPostgres {
		p1, p2 = "$1", "$2"
	}

	get, err := conn.SQL.PrepareContext(ctx, `SELECT slot_value FROM slots WHERE slot_key = `+p1)
	if err != nil {
		_ = conn.SQL.Close()
		return nil, fmt.Errorf("prepare get: %w", err)
	}

	set, err := conn.SQL.PrepareContext(ctx, `
		INSERT INTO slots (slot_key, slot_value) VALUES (`+p1+`, `+p2+`)
		ON CONFLICT (slot_key) DO UPDATE SET slot_value = excluded.slot_value
	`)
	if err != nil {
		_ = get.Close()
		_ = conn.SQL.Close()
		return nil, fmt.Errorf("prepare set: %w", err)
	}

	return &SQLSlot{db: conn, stmtGet: get, stmtSet: set}, nil
}

func (s *SQLSlot) Get(ctx context.Context, key string) ([]byte, error) {
	var v string
	err := s.stmtGet.QueryRowContext(ctx, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(v), nil
}

func (s *SQLSlot) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.stmtSet.ExecContext(ctx, key, string(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close releases the prepared statements and the connection pool.
func (s *SQLSlot) Close() error {
	for _, st := range []*sql.Stmt{s.stmtGet, s.stmtSet} {
		if st != nil {
			_ = st.Close()
		}
	}
	return s.db.SQL.Close()
}
