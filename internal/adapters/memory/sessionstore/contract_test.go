package sessionstore

import (
	"testing"

	"github.com/aquaclean/carwash-api/internal/adapters/contracttest"
	sessionstoreport "github.com/aquaclean/carwash-api/internal/ports/out/sessionstore"
)

func TestContract_SessionStore(t *testing.T) {
	contracttest.RunSessionStore(t, func(t *testing.T) (sessionstoreport.Store, func()) {
		t.Helper()
		return NewStore(), nil
	})
}
