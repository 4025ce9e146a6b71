package auth

import (
	"time"

	"github.com/aquaclean/carwash-api/internal/domain"
)

// Config holds the authentication settings sourced from platform config.
type Config struct {
	AdminEmail    string
	AdminPassword string

	SessionTTL    time.Duration
	SignupEnabled bool

	// LoginRatePerMinute <= 0 disables login throttling.
	LoginRatePerMinute int
	LoginBurst         int
}

// Session is an authenticated session as seen by callers.
// Token is only populated when the session is issued (Login/Signup) or echoed by Authenticate.
type Session struct {
	Token     string
	User      domain.User
	ExpiresAt time.Time
}

func (s Session) IsAdmin() bool { return s.User.IsAdmin() }

type SignupInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// Password length bounds for signup and password changes. bcrypt rejects input over 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)
