package idempotency

import (
	"context"
	"time"

	"github.com/aquaclean/carwash-api/internal/domain"
)

// Key is the Idempotency-Key header sent with a retried write.
type Key string

// Fingerprint scopes a key to the caller and the write it guarded.
// Route is the route template, e.g. "/me/appointments". BodyHash is empty for the
// record that remembers which payload a key was first used with.
type Fingerprint struct {
	Key      Key
	User     domain.UserID
	Method   string
	Route    string
	BodyHash string
}

// Record is a stored response, replayed verbatim for a duplicate request.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	// Put overwrites any record already stored under fp.
	Put(ctx context.Context, fp Fingerprint, rec Record) error
	// Purge drops records created before the cutoff and reports how many went.
	Purge(ctx context.Context, before time.Time) (int, error)
}
