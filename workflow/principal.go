package workflow

import "context"

// ExecutionPrincipal is the identity under which a workflow run was
// triggered, threaded through context.Context for audit and telemetry
// attribution. Adapted from auth.Identity/auth's context-value helpers:
// Nebula's engine has no inbound request to authenticate, so the
// richer claims/roles/permissions machinery auth.Identity carries is
// dropped down to the fields a run actually needs to attribute.
type ExecutionPrincipal struct {
	Subject  string
	TenantID string
}

// IsAnonymous reports whether no triggering principal was recorded.
func (p ExecutionPrincipal) IsAnonymous() bool {
	return p.Subject == ""
}

type principalKey struct{}

// WithPrincipal attaches p to ctx, for the engine's own use and for
// any node handler that wants to attribute downstream calls to the
// triggering principal.
func WithPrincipal(ctx context.Context, p ExecutionPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the principal attached by
// WithPrincipal, or the zero value (anonymous) if none was attached.
func PrincipalFromContext(ctx context.Context) ExecutionPrincipal {
	p, _ := ctx.Value(principalKey{}).(ExecutionPrincipal)
	return p
}
