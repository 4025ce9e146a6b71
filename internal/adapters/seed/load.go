package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aquaclean/carwash-api/internal/ports/out/notificationrepo"
	"github.com/aquaclean/carwash-api/internal/ports/out/revenuerepo"
	"github.com/aquaclean/carwash-api/internal/ports/out/userrepo"
)

// Hasher produces the stored password hash for demo users.
type Hasher interface {
	Hash(password string) ([]byte, error)
}

type Target struct {
	Users         userrepo.Repository
	Revenue       revenuerepo.Repository
	Notifications notificationrepo.Repository
}

// Stats reports what Load inserted; records that already existed are skipped.
type Stats struct {
	Users         int
	Revenue       int
	Notifications int
}

// Load writes the demo dataset. It is safe to run against a store that was seeded before.
func Load(ctx context.Context, t Target, h Hasher, demoPassword string, now time.Time) (Stats, error) {
	var st Stats

	hash, err := h.Hash(demoPassword)
	if err != nil {
		return st, fmt.Errorf("hash demo password: %w", err)
	}

	for _, u := range Users() {
		err := t.Users.Create(ctx, userrepo.Record{User: u, PasswordHash: hash, CreatedAt: now, UpdatedAt: now})
		switch {
		case err == nil:
			st.Users++
		case errors.Is(err, userrepo.ErrAlreadyExists), errors.Is(err, userrepo.ErrEmailTaken):
		default:
			return st, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}

	for _, r := range Revenue() {
		err := t.Revenue.Append(ctx, r)
		switch {
		case err == nil:
			st.Revenue++
		case errors.Is(err, revenuerepo.ErrOutOfOrder):
		default:
			return st, fmt.Errorf("seed revenue %s: %w", r.Month, err)
		}
	}

	for _, n := range Notifications() {
		err := t.Notifications.Create(ctx, n)
		switch {
		case err == nil:
			st.Notifications++
		case errors.Is(err, notificationrepo.ErrAlreadyExists):
		default:
			return st, fmt.Errorf("seed notification %s: %w", n.ID, err)
		}
	}

	return st, nil
}
