// Package auth carries the authenticated principal through a request's
// context. Identity is issued by an external component; this core only
// consumes a verified user id.
package auth

import "context"

type contextKey struct{}

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID int64
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// UserID returns the authenticated user id, or 0 when the context carries
// no principal.
func UserID(ctx context.Context) int64 {
	p, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return p.UserID
}
