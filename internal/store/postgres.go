package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// Postgres driver registered as "postgres".
	_ "github.com/lib/pq"
)

// PostgresKV implements KV on a Postgres kv_entries table.
type PostgresKV struct {
	db *sqlx.DB
}

// OpenPostgres connects to dsn and ensures the kv_entries table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresKV, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_entries (
			name TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv_entries table: %w", err)
	}

	return &PostgresKV{db: db}, nil
}

// Close closes the connection pool.
func (p *PostgresKV) Close() error {
	return p.db.Close()
}

func (p *PostgresKV) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var raw []byte
	err := p.db.GetContext(ctx, &raw, `SELECT value FROM kv_entries WHERE name = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return json.RawMessage(raw), nil
}

func (p *PostgresKV) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO kv_entries (name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
