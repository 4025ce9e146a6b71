package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memnotifications "github.com/aquaclean/carwash-api/internal/adapters/memory/notificationrepo"
	memrevenue "github.com/aquaclean/carwash-api/internal/adapters/memory/revenuerepo"
	memusers "github.com/aquaclean/carwash-api/internal/adapters/memory/userrepo"
	"github.com/aquaclean/carwash-api/internal/domain"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) ([]byte, error) { return []byte("hash:" + p), nil }

func TestLoad_IsRepeatable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	target := Target{
		Users:         memusers.NewRepo(),
		Revenue:       memrevenue.NewRepo(),
		Notifications: memnotifications.NewRepo(),
	}
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	st, err := Load(ctx, target, plainHasher{}, "password123", now)
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 5, Revenue: 6, Notifications: 3}, st)

	st, err = Load(ctx, target, plainHasher{}, "password123", now)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)

	rec, err := target.Users.GetByEmail(ctx, "sarah.johnson@email.com")
	require.NoError(t, err)
	assert.Equal(t, "hash:password123", string(rec.PasswordHash))
	assert.Equal(t, domain.TierLuxury, rec.User.Subscription.Tier)
}

func TestUsers_ChildRecordsBelongToOwner(t *testing.T) {
	t.Parallel()

	for _, u := range Users() {
		for _, c := range u.Cars {
			assert.Equal(t, u.ID, c.UserID, "car %s", c.ID)
		}
		for _, a := range u.Appointments {
			assert.Equal(t, u.ID, a.UserID, "appointment %s", a.ID)
			_, owned := u.FindCar(a.CarID)
			assert.True(t, owned, "appointment %s car %s", a.ID, a.CarID)
		}
		for _, f := range u.Feedback {
			assert.Equal(t, u.ID, f.UserID, "feedback %s", f.ID)
		}
	}
}
