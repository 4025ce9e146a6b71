package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aquaclean/carwash-api/internal/domain"
	clockport "github.com/aquaclean/carwash-api/internal/ports/out/clock"
	"github.com/aquaclean/carwash-api/internal/ports/out/sessionstore"
)

const keyPrefix = "carwash:session:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Store is a Redis implementation of sessionstore.Store.
// Each session is a JSON value that Redis expires at the session's ExpiresAt.
type Store struct {
	client *redis.Client
	clk    clockport.Clock
}

// Connect opens a client and verifies it with PING.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

func NewStore(client *redis.Client, clk clockport.Clock) *Store {
	return &Store{client: client, clk: clk}
}

type storedSession struct {
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Store) Put(ctx context.Context, sess sessionstore.Session) error {
	ttl := sess.ExpiresAt.Sub(s.clk.Now())
	if ttl <= 0 {
		return s.Delete(ctx, sess.TokenHash)
	}
	b, err := json.Marshal(storedSession{
		UserID:    string(sess.UserID),
		Role:      string(sess.Role),
		CreatedAt: sess.CreatedAt.UTC(),
		ExpiresAt: sess.ExpiresAt.UTC(),
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+sess.TokenHash, b, ttl).Err()
}

func (s *Store) Get(ctx context.Context, tokenHash string) (sessionstore.Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+tokenHash).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sessionstore.Session{}, sessionstore.ErrNotFound
		}
		return sessionstore.Session{}, err
	}
	var v storedSession
	if err := json.Unmarshal(raw, &v); err != nil {
		return sessionstore.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sessionstore.Session{
		TokenHash: tokenHash,
		UserID:    domain.UserID(v.UserID),
		Role:      domain.Role(v.Role),
		CreatedAt: v.CreatedAt.UTC(),
		ExpiresAt: v.ExpiresAt.UTC(),
	}, nil
}

func (s *Store) Delete(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, keyPrefix+tokenHash).Err()
}
