package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquaclean/carwash-api/internal/ports/out/idempotency"
)

// Store keeps idempotency records in the idempotency_keys table.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func fingerprintArgs(fp idempotency.Fingerprint) []any {
	return []any{string(fp.Key), string(fp.User), fp.Method, fp.Route, fp.BodyHash}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	var rec idempotency.Record
	err := s.pool.QueryRow(ctx, `
		SELECT status_code, content_type, body, created_at
		FROM idempotency_keys
		WHERE (idempotency_key, user_id, method, route, body_hash) = ($1, $2, $3, $4, $5)
	`, fingerprintArgs(fp)...).Scan(&rec.StatusCode, &rec.ContentType, &rec.Body, &rec.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return idempotency.Record{}, false, nil
	case err != nil:
		return idempotency.Record{}, false, fmt.Errorf("get idempotency record: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Body == nil {
		rec.Body = []byte{}
	}
	args := append(fingerprintArgs(fp), rec.StatusCode, rec.ContentType, rec.Body, rec.CreatedAt.UTC())
	_, err := s.pool.Exec(ctx, `
		INSERT INTO idempotency_keys
			(idempotency_key, user_id, method, route, body_hash, status_code, content_type, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (idempotency_key, user_id, method, route, body_hash) DO UPDATE
		SET status_code = EXCLUDED.status_code,
		    content_type = EXCLUDED.content_type,
		    body = EXCLUDED.body,
		    created_at = EXCLUDED.created_at
	`, args...)
	if err != nil {
		return fmt.Errorf("put idempotency record: %w", err)
	}
	return nil
}

func (s *Store) Purge(ctx context.Context, before time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge idempotency records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
