package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/aquaclean/carwash-api/internal/domain"
)

// ErrNotFound indicates no session exists for the token hash.
var ErrNotFound = errors.New("session not found")

// Session is the stored form of an issued bearer token.
// The token itself is never stored; TokenHash is its hex SHA-256 digest.
type Session struct {
	TokenHash string
	UserID    domain.UserID
	Role      domain.Role

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store persists sessions. Implementations may drop sessions after ExpiresAt.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, tokenHash string) (Session, error)
	// Delete is idempotent: deleting an unknown hash is not an error.
	Delete(ctx context.Context, tokenHash string) error
}
