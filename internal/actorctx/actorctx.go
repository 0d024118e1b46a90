package actorctx

import (
	"context"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

type ctxKey struct{}

// WithPrincipal stores the authenticated caller on a request context so code
// below the http layer can log who acted.
func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(user.Principal)

	return p, ok && p.ID != ""
}

func UserIDFrom(ctx context.Context) (string, bool) {
	p, ok := PrincipalFrom(ctx)
	return p.ID, ok
}
