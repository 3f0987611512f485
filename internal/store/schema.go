package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Statements are idempotent; there is no
// separate migration tool in this deployment.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	uid        TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	google_id  TEXT,
	avatar_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id         UUID PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	balance    NUMERIC(18,2) NOT NULL DEFAULT 0,
	currency   TEXT NOT NULL DEFAULT 'USD',
	is_active  BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id);

CREATE TABLE IF NOT EXISTS transactions (
	id          UUID PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
	account_id  UUID NOT NULL REFERENCES accounts(id),
	amount      NUMERIC(18,2) NOT NULL CHECK (amount > 0),
	type        TEXT NOT NULL,
	category    TEXT NOT NULL,
	description TEXT NOT NULL,
	date        DATE NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);
CREATE INDEX IF NOT EXISTS idx_transactions_user_category ON transactions(user_id, category);

CREATE TABLE IF NOT EXISTS budgets (
	id           UUID PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
	category     TEXT NOT NULL,
	limit_amount NUMERIC(18,2) NOT NULL,
	period       TEXT NOT NULL,
	start_date   DATE NOT NULL,
	end_date     DATE NOT NULL,
	is_active    BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_budgets_user ON budgets(user_id);

CREATE TABLE IF NOT EXISTS investments (
	id             UUID PRIMARY KEY,
	user_id        TEXT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
	symbol         TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	quantity       NUMERIC(20,8) NOT NULL,
	purchase_price NUMERIC(18,4) NOT NULL,
	current_price  NUMERIC(18,4) NOT NULL,
	type           TEXT NOT NULL DEFAULT '',
	purchase_date  DATE NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, symbol)
);

CREATE TABLE IF NOT EXISTS alerts (
	id         UUID PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	severity   TEXT NOT NULL DEFAULT 'info',
	is_read    BOOLEAN NOT NULL DEFAULT FALSE,
	is_active  BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id);

CREATE TABLE IF NOT EXISTS insights (
	id          UUID PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL,
	type        TEXT NOT NULL,
	confidence  DOUBLE PRECISION NOT NULL,
	is_relevant BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_insights_user_created ON insights(user_id, created_at);

CREATE TABLE IF NOT EXISTS plaid_items (
	id           UUID PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
	item_id      TEXT NOT NULL UNIQUE,
	institution  TEXT NOT NULL DEFAULT '',
	access_token TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
`

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
