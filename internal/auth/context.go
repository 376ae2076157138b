package auth

import "context"

type contextKey string

const principalKey contextKey = "timeflow-auth-principal"

// WithPrincipal stores the principal on the context.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// FromContext retrieves the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalKey).(*Principal)
	return principal, ok && principal != nil
}
