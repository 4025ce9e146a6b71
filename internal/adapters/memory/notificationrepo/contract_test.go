package notificationrepo

import (
	"testing"

	"github.com/aquaclean/carwash-api/internal/adapters/contracttest"
	notificationrepoport "github.com/aquaclean/carwash-api/internal/ports/out/notificationrepo"
)

func TestContract_NotificationRepo(t *testing.T) {
	contracttest.RunNotificationRepo(t, func(t *testing.T) (notificationrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
