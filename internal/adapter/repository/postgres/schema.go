package postgres

import (
	"context"
	"fmt"
)

// schema is the full DDL, applied idempotently at startup.
const schema = `
CREATE TABLE IF NOT EXISTS connections (
	id              UUID PRIMARY KEY,
	provider        TEXT NOT NULL,
	access_url      TEXT NOT NULL UNIQUE,
	status          TEXT NOT NULL,
	last_sync_at    TIMESTAMPTZ,
	last_sync_error TEXT
);

CREATE TABLE IF NOT EXISTS accounts (
	id                 TEXT PRIMARY KEY,
	connection_id      UUID NOT NULL REFERENCES connections(id),
	name               TEXT NOT NULL,
	institution        TEXT NOT NULL DEFAULT '',
	institution_domain TEXT NOT NULL DEFAULT '',
	type               TEXT NOT NULL,
	currency           TEXT NOT NULL,
	balance            BIGINT NOT NULL,
	available_balance  BIGINT,
	balance_date       TIMESTAMPTZ NOT NULL,
	is_hidden          BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS categories (
	id   UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	loop TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS category_rules (
	id           UUID PRIMARY KEY,
	pattern      TEXT NOT NULL,
	pattern_type TEXT NOT NULL,
	category_id  UUID NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	subcategory  TEXT NOT NULL DEFAULT '',
	priority     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transactions (
	id                 TEXT PRIMARY KEY,
	external_id        TEXT NOT NULL,
	account_id         TEXT NOT NULL REFERENCES accounts(id),
	connection_id      UUID NOT NULL REFERENCES connections(id),
	amount             BIGINT NOT NULL,
	description        TEXT NOT NULL,
	clean_description  TEXT NOT NULL DEFAULT '',
	date               DATE NOT NULL,
	posted_at          TIMESTAMPTZ NOT NULL,
	transacted_at      TIMESTAMPTZ,
	pending            BOOLEAN NOT NULL DEFAULT FALSE,
	category_id        UUID REFERENCES categories(id) ON DELETE SET NULL,
	loop               TEXT NOT NULL DEFAULT '',
	subcategory        TEXT NOT NULL DEFAULT '',
	notes              TEXT NOT NULL DEFAULT '',
	tags               TEXT[] NOT NULL DEFAULT '{}',
	is_reviewed        BOOLEAN NOT NULL DEFAULT FALSE,
	is_recurring       BOOLEAN NOT NULL DEFAULT FALSE,
	recurring_group_id TEXT,
	splits             JSONB NOT NULL DEFAULT '[]',
	UNIQUE (connection_id, external_id)
);

CREATE TABLE IF NOT EXISTS scheduled_payments (
	id             UUID PRIMARY KEY,
	payee          TEXT NOT NULL,
	reference_code TEXT NOT NULL,
	amount         BIGINT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	transaction_id TEXT REFERENCES transactions(id)
);
`

// Migrate applies the schema. Safe to run on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
