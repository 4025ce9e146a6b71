package sessionstore

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/aquaclean/carwash-api/internal/adapters/contracttest"
	"github.com/aquaclean/carwash-api/internal/platform/clock"
	sessionstoreport "github.com/aquaclean/carwash-api/internal/ports/out/sessionstore"
)

func TestContract_RedisSessionStore(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping redis test")
	}
	client, err := Connect(context.Background(), Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	contracttest.RunSessionStore(t, func(t *testing.T) (sessionstoreport.Store, func()) {
		t.Helper()
		return NewStore(client, clock.NewSystemClock()), nil
	})
}
