// Package postgres opens the durable store and applies its schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq" // registers the "postgres" database/sql driver

	"scp-gateway/internal/platform/config"
)

// Open connects to PostgreSQL through database/sql and lib/pq. The auth code
// and refresh token stores use this handle.
// Returns nil if the URL is empty (Postgres not configured).
func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// OpenPool connects a pgx pool for the intent activity log.
// Returns nil if the URL is empty (Postgres not configured).
func OpenPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres URL: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgx pool ping failed: %w", err)
	}
	return pool, nil
}

// Schema is the durable store layout. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS auth_codes (
	code           TEXT PRIMARY KEY,
	customer_email TEXT NOT NULL,
	customer_id    TEXT NOT NULL,
	client_id      TEXT NOT NULL,
	scopes         TEXT[] NOT NULL,
	code_challenge TEXT NOT NULL,
	expires_at     TIMESTAMPTZ NOT NULL,
	used           BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_auth_codes_expires_at ON auth_codes (expires_at);
CREATE INDEX IF NOT EXISTS idx_auth_codes_used ON auth_codes (used);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	id             BIGSERIAL PRIMARY KEY,
	token          TEXT NOT NULL UNIQUE,
	customer_email TEXT NOT NULL,
	customer_id    TEXT NOT NULL,
	client_id      TEXT NOT NULL,
	scopes         TEXT[] NOT NULL,
	expires_at     TIMESTAMPTZ NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	last_used      TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires_at ON refresh_tokens (expires_at);

CREATE TABLE IF NOT EXISTS intent_activities (
	seq         BIGSERIAL PRIMARY KEY,
	customer_id TEXT NOT NULL,
	intent_id   TEXT NOT NULL,
	kind        TEXT NOT NULL,
	status      TEXT,
	payload     JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_intent_activities_customer ON intent_activities (customer_id, seq);

CREATE TABLE IF NOT EXISTS audit_events (
	id               TEXT PRIMARY KEY,
	category         TEXT NOT NULL,
	occurred_at      TIMESTAMPTZ NOT NULL,
	customer_id      TEXT NOT NULL DEFAULT '',
	email            TEXT NOT NULL DEFAULT '',
	action           TEXT NOT NULL,
	requesting_party TEXT NOT NULL DEFAULT '',
	auth_request_id  TEXT NOT NULL DEFAULT '',
	scopes           TEXT[] NOT NULL DEFAULT '{}',
	decision         TEXT NOT NULL DEFAULT '',
	reason           TEXT NOT NULL DEFAULT '',
	request_id       TEXT NOT NULL DEFAULT '',
	ip               TEXT NOT NULL DEFAULT '',
	device           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_events_customer ON audit_events (customer_id, occurred_at);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
