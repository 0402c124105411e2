package resilience

import "context"

// Limiter is the common interface satisfied by both rate limiter
// implementations in this package: the token-bucket RateLimiter and the
// GCRA-based GCRALimiter. Executor composes against this interface so a
// deployment can swap the algorithm without touching call sites.
type Limiter interface {
	// Allow reports whether a single unit of work may proceed right now.
	Allow() bool
	// Wait blocks until a unit of work may proceed or ctx is done.
	Wait(ctx context.Context) error
	// Execute runs op if allowed, waiting or failing fast per the
	// limiter's own configuration.
	Execute(ctx context.Context, op func(context.Context) error) error
}

var (
	_ Limiter = (*RateLimiter)(nil)
	_ Limiter = (*GCRALimiter)(nil)
)
