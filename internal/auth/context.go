package auth

import (
	"context"

	"example.com/note-keeper/internal/users"
)

type contextKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, u users.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// CurrentUser returns the user attached by the Gate.
func CurrentUser(ctx context.Context) (users.User, bool) {
	u, ok := ctx.Value(contextKey{}).(users.User)
	return u, ok
}
