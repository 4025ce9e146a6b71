package sessionstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/sessionstore"
)

// Store is a Postgres implementation of sessionstore.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Put(ctx context.Context, sess sessionstore.Session) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (token_hash, user_id, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token_hash) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			role = EXCLUDED.role,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`,
		sess.TokenHash,
		string(sess.UserID),
		string(sess.Role),
		sess.CreatedAt.UTC(),
		sess.ExpiresAt.UTC(),
	)
	return err
}

func (s *Store) Get(ctx context.Context, tokenHash string) (sessionstore.Session, error) {
	if s.pool == nil {
		return sessionstore.Session{}, errors.New("nil postgres pool")
	}
	var (
		sess         sessionstore.Session
		userID, role string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT token_hash, user_id, role, created_at, expires_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash).Scan(&sess.TokenHash, &userID, &role, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sessionstore.Session{}, sessionstore.ErrNotFound
		}
		return sessionstore.Session{}, err
	}
	sess.UserID = domain.UserID(userID)
	sess.Role = domain.Role(role)
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.ExpiresAt = sess.ExpiresAt.UTC()
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, tokenHash string) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}
