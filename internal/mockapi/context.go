package mockapi

import "context"

// contextWithUser stores the authenticated mock user on the request context.
func contextWithUser(ctx context.Context, u *user) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// userFrom returns the authenticated mock user. Only called behind
// authMiddleware, which guarantees the value is present.
func userFrom(ctx context.Context) *user {
	return ctx.Value(userKey).(*user)
}
