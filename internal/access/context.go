package access

import "context"

// principalKey is a context key type for storing the request principal.
type principalKey struct{}

// WithPrincipal stores the request principal in the context.
// This is called by the HTTP principal middleware after header extraction.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext retrieves the request principal from the context.
// Returns (principal, true) if one is present, or (zero, false) if not.
// Handlers behind the principal middleware can rely on the value being set.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(Principal)
	return principal, ok
}
