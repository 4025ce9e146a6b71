// Package guard decides what a navigation to a client route should do for a given session.
package guard

import "strings"

type Outcome string

const (
	Render        Outcome = "render"
	RedirectLogin Outcome = "redirect_login"
	RedirectHome  Outcome = "redirect_home"
	NotFound      Outcome = "not_found"
)

const (
	LoginPath     = "/login"
	UserHomePath  = "/user/dashboard"
	AdminHomePath = "/admin/dashboard"
)

// Access is the audience a route is meant for.
type Access string

const (
	AccessRoot   Access = "root"
	AccessPublic Access = "public"
	AccessUser   Access = "user"
	AccessAdmin  Access = "admin"
)

// Principal is the caller as the guard sees it. The zero value is an anonymous visitor.
type Principal struct {
	Authenticated bool
	Admin         bool
}

var (
	Anonymous = Principal{}
	Customer  = Principal{Authenticated: true}
	Admin     = Principal{Authenticated: true, Admin: true}
)

// Decision is the guard result. Location is set for redirects only.
type Decision struct {
	Outcome  Outcome
	Location string
	Access   Access
}

var routes = map[string]Access{
	"/":       AccessRoot,
	"/login":  AccessPublic,
	"/signup": AccessPublic,

	"/admin/dashboard":     AccessAdmin,
	"/admin/users":         AccessAdmin,
	"/admin/cars":          AccessAdmin,
	"/admin/appointments":  AccessAdmin,
	"/admin/notifications": AccessAdmin,
	"/admin/settings":      AccessAdmin,

	"/user/dashboard":    AccessUser,
	"/user/cars":         AccessUser,
	"/user/appointments": AccessUser,
	"/user/subscription": AccessUser,
	"/user/profile":      AccessUser,
	"/user/feedback":     AccessUser,
}

// Lookup returns the access class of path. Trailing slashes are ignored.
func Lookup(path string) (Access, bool) {
	a, ok := routes[cleanPath(path)]
	return a, ok
}

// Decide is total: every path and principal yields exactly one decision.
func Decide(path string, p Principal) Decision {
	access, ok := Lookup(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}
	return DecideAccess(access, p)
}

// DecideAccess applies the guard rules to an already classified route.
func DecideAccess(access Access, p Principal) Decision {
	switch access {
	case AccessRoot:
		if p.Authenticated {
			return Decision{Outcome: RedirectHome, Location: Home(p), Access: access}
		}
		return Decision{Outcome: Render, Access: access}
	case AccessUser, AccessAdmin:
		if !p.Authenticated {
			return Decision{Outcome: RedirectLogin, Location: LoginPath, Access: access}
		}
		if access == AccessAdmin && !p.Admin {
			return Decision{Outcome: RedirectHome, Location: UserHomePath, Access: access}
		}
		return Decision{Outcome: Render, Access: access}
	default:
		return Decision{Outcome: Render, Access: access}
	}
}

// Home is the landing route for an authenticated principal.
func Home(p Principal) string {
	if p.Admin {
		return AdminHomePath
	}
	return UserHomePath
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
