package http

import (
	"context"

	"github.com/katsuhira/adminlite/internal/admin/domain"
)

type principalKey struct{}

// WithPrincipal attaches the authenticated principal to the request
// context.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached by the session middleware,
// if the request carried a valid session.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
