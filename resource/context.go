package resource

import "context"

type scopeKey struct{}

// WithScope returns a copy of ctx carrying s as an ambient scope that
// code further down the call chain can read with ScopeFromContext.
// Manager.Acquire takes its Scope as an argument and does not read
// this value.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFromContext retrieves the Scope set by WithScope, if any.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}
