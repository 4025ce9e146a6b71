package testutil

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/aquaclean/carwash-api/internal/adapters/postgres"
)

// OpenMigratedPool connects to DATABASE_URL, applies the schema and empties the named tables.
// The test is skipped when DATABASE_URL is unset.
func OpenMigratedPool(t *testing.T, truncate ...string) *pgxpool.Pool {
	t.Helper()

	url := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping postgres test")
	}
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, url)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := postgres.Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if len(truncate) > 0 {
		if _, err := pool.Exec(ctx, "TRUNCATE "+strings.Join(truncate, ", ")+" CASCADE"); err != nil {
			t.Fatalf("truncate: %v", err)
		}
	}
	return pool
}
