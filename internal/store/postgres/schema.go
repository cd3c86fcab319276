package postgres

import "context"

// schema is the full database schema, applied idempotently on startup.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT,
	avatar_url    TEXT,
	password_hash TEXT,
	role          TEXT NOT NULL DEFAULT 'member',
	created_at    BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS google_accounts (
	id                   TEXT PRIMARY KEY,
	user_id              TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	email                TEXT NOT NULL,
	name                 TEXT,
	picture              TEXT,
	sealed_refresh_token BYTEA NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS google_accounts_user_id_idx ON google_accounts(user_id);

CREATE TABLE IF NOT EXISTS campaigns (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	customer_id         TEXT NOT NULL,
	name                TEXT NOT NULL,
	daily_budget_micros BIGINT NOT NULL,
	max_cpc_micros      BIGINT NOT NULL,
	headlines           TEXT[] NOT NULL,
	descriptions        TEXT[] NOT NULL,
	final_url           TEXT NOT NULL,
	keywords            TEXT[],
	status              TEXT NOT NULL DEFAULT 'pending',
	resource_name       TEXT,
	failed_step         TEXT,
	error               TEXT,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS campaigns_user_id_idx ON campaigns(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS campaigns_customer_id_idx ON campaigns(customer_id, created_at DESC);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the schema. Safe to call on every startup.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
