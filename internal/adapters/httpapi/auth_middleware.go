package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aquaclean/carwash-api/internal/app/apperr"
	"github.com/aquaclean/carwash-api/internal/app/auth"
	"github.com/aquaclean/carwash-api/internal/app/guard"
)

// Authenticator resolves a bearer token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Session, error)
}

// NewAuthMiddleware resolves Authorization: Bearer <token> into a session stored in the
// request context. Requests without a valid token continue as anonymous; RequireAccess
// decides whether that is acceptable for the route.
func NewAuthMiddleware(a Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := a.Authenticate(r.Context(), raw)
			if err != nil {
				if _, isApp := apperr.As(err); isApp {
					next.ServeHTTP(w, r)
					return
				}
				writeServiceError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// RequireAccess applies the route guard to an API subtree.
// A login redirect becomes 401 and a home redirect becomes 403.
func RequireAccess(access guard.Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := guard.DecideAccess(access, principalFromContext(r.Context()))
			switch d.Outcome {
			case guard.RedirectLogin:
				writeError(w, r, http.StatusUnauthorized, apperr.CodeUnauthorized, "authentication required", map[string]any{"location": d.Location})
				return
			case guard.RedirectHome:
				writeError(w, r, http.StatusForbidden, apperr.CodeForbidden, "administrator access required", map[string]any{"location": d.Location})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authz) < len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(authz[len(prefix):])
	return raw, raw != ""
}
