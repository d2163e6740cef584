package auth

import (
	"context"
)

type contextKey string

const identityKey contextKey = "auth_identity"

// Identity is the authenticated principal resolved from a bearer token.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated identity, if any. The second
// return value is false for requests that carried no valid token.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
