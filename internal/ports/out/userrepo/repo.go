package userrepo

import (
	"context"
	"time"

	"github.com/aquaclean/carwash-api/internal/domain"
)

// Record is the persistence shape used by the user repository.
// It carries credential material that never leaves the auth service.
type Record struct {
	User domain.User
	// PasswordHash is a bcrypt hash; empty means no password has been set.
	PasswordHash []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted users and the child collections they own.
//
// Result ordering expectations:
// - List returns users in insertion order so derived analytics (tie order) stay deterministic.
// - Child collections are returned in the order they were written.
type Repository interface {
	Create(ctx context.Context, r Record) error

	// Update replaces the user's profile, subscription and child collections wholesale.
	// The password hash and CreatedAt are left untouched.
	Update(ctx context.Context, u domain.User, updatedAt time.Time) error
	SetPasswordHash(ctx context.Context, id domain.UserID, hash []byte, updatedAt time.Time) error

	GetByID(ctx context.Context, id domain.UserID) (Record, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (Record, error)

	List(ctx context.Context) ([]domain.User, error)
}
