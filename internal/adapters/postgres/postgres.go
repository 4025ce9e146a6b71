package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres SQLSTATE codes the adapters translate into port errors.
const (
	UniqueViolationCode     = "23505"
	ForeignKeyViolationCode = "23503"
)

// AsPgError unwraps err into a *pgconn.PgError when the server rejected a statement.
func AsPgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// NewPool connects to databaseURL and verifies the connection with a ping.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the schema. Every statement is idempotent so it runs on each start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("nil postgres pool")
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	seq           BIGSERIAL,
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL,
	phone         TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL CHECK (role IN ('customer', 'admin')),
	join_date     DATE NOT NULL,
	sub_tier      TEXT NOT NULL CHECK (sub_tier IN ('basic', 'premium', 'luxury')),
	sub_duration  TEXT NOT NULL CHECK (sub_duration IN ('1-month', '6-month', '1-year')),
	sub_start     DATE NOT NULL,
	sub_end       DATE NOT NULL,
	sub_status    TEXT NOT NULL CHECK (sub_status IN ('active', 'expired', 'cancelled')),
	total_spent   DOUBLE PRECISION NOT NULL DEFAULT 0,
	password_hash BYTEA,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique ON users (lower(email));
CREATE INDEX IF NOT EXISTS users_seq_idx ON users (seq);

CREATE TABLE IF NOT EXISTS cars (
	user_id       TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	id            TEXT NOT NULL,
	position      INT NOT NULL,
	make          TEXT NOT NULL,
	model         TEXT NOT NULL,
	year          INT NOT NULL,
	color         TEXT NOT NULL,
	license_plate TEXT NOT NULL,
	added_date    DATE NOT NULL,
	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS appointments (
	user_id   TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	id        TEXT NOT NULL,
	position  INT NOT NULL,
	car_id    TEXT NOT NULL,
	date      DATE NOT NULL,
	time_slot TEXT NOT NULL,
	service   TEXT NOT NULL,
	status    TEXT NOT NULL CHECK (status IN ('scheduled', 'completed', 'cancelled')),
	wash_type TEXT NOT NULL,
	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS feedback (
	user_id      TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	id           TEXT NOT NULL,
	position     INT NOT NULL,
	rating       INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment      TEXT NOT NULL,
	date         DATE NOT NULL,
	service_type TEXT NOT NULL,
	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS notifications (
	seq     BIGSERIAL,
	id      TEXT PRIMARY KEY,
	user_id TEXT,
	title   TEXT NOT NULL,
	message TEXT NOT NULL,
	type    TEXT NOT NULL CHECK (type IN ('reminder', 'promotion', 'system')),
	date    DATE NOT NULL,
	read    BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS revenue (
	month   TEXT PRIMARY KEY,
	basic   DOUBLE PRECISION NOT NULL,
	premium DOUBLE PRECISION NOT NULL,
	luxury  DOUBLE PRECISION NOT NULL,
	total   DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	token_hash TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	role       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at);

CREATE TABLE IF NOT EXISTS idempotency_keys (
	idempotency_key TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	method          TEXT NOT NULL,
	route           TEXT NOT NULL,
	body_hash       TEXT NOT NULL,
	status_code     INT NOT NULL,
	content_type    TEXT NOT NULL,
	body            BYTEA NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (idempotency_key, user_id, method, route, body_hash)
);
CREATE INDEX IF NOT EXISTS idempotency_keys_created_at ON idempotency_keys (created_at);
`
