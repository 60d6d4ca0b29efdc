// Package shared carries request-scoped values common to all domain
// packages.
package shared

import "context"

// Identity is the authenticated principal resolved from a bearer token.
// CompanyID is the tenant key: every core operation scopes its queries by
// it, and it is never taken from client-supplied input.
type Identity struct {
	UserID    int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
