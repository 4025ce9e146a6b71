package httpapi

import (
	"context"

	"github.com/aquaclean/carwash-api/internal/app/auth"
	"github.com/aquaclean/carwash-api/internal/app/guard"
)

type sessionKey struct{}

func WithSession(ctx context.Context, sess auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	v, ok := ctx.Value(sessionKey{}).(auth.Session)
	return v, ok && v.Token != ""
}

// principalFromContext maps the request session onto the guard's view of the caller.
func principalFromContext(ctx context.Context) guard.Principal {
	sess, ok := SessionFromContext(ctx)
	if !ok {
		return guard.Anonymous
	}
	if sess.IsAdmin() {
		return guard.Admin
	}
	return guard.Customer
}
