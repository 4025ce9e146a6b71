package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide_AdminRouteWithoutSessionRedirectsToLogin(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/admin/dashboard", "/admin/users", "/user/cars"} {
		d := Decide(path, Anonymous)
		assert.Equal(t, RedirectLogin, d.Outcome, path)
		assert.Equal(t, LoginPath, d.Location, path)
	}
}

func TestDecide_CustomerOnAdminRouteRedirectsHome(t *testing.T) {
	t.Parallel()

	d := Decide("/admin/settings", Customer)
	assert.Equal(t, RedirectHome, d.Outcome)
	assert.Equal(t, UserHomePath, d.Location)

	assert.Equal(t, Render, Decide("/user/feedback", Customer).Outcome)
}

func TestDecide_AdminRendersEverywhere(t *testing.T) {
	t.Parallel()

	for path, access := range routes {
		if access == AccessRoot {
			continue
		}
		assert.Equal(t, Render, Decide(path, Admin).Outcome, path)
	}
}

func TestDecide_RootHandsOffToHome(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Decision{Outcome: Render, Access: AccessRoot}, Decide("/", Anonymous))
	assert.Equal(t, Decision{Outcome: RedirectHome, Location: AdminHomePath, Access: AccessRoot}, Decide("/", Admin))
	assert.Equal(t, Decision{Outcome: RedirectHome, Location: UserHomePath, Access: AccessRoot}, Decide("/", Customer))
}

func TestDecide_PublicAndUnknownRoutes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Render, Decide("/login", Anonymous).Outcome)
	assert.Equal(t, Render, Decide("/signup", Customer).Outcome)
	assert.Equal(t, NotFound, Decide("/nope", Admin).Outcome)
	assert.Equal(t, NotFound, Decide("/admin", Admin).Outcome)
}

func TestDecide_NormalizesPaths(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Render, Decide("/user/cars/", Customer).Outcome)
	assert.Equal(t, Render, Decide("user/cars?tab=1", Customer).Outcome)
	assert.Equal(t, Render, Decide("", Anonymous).Outcome)
}
