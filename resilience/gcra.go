package resilience

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// GCRALimiter is a rate limiter backed by golang.org/x/time/rate's
// generic cell rate algorithm. It implements the same Limiter interface
// as the token-bucket RateLimiter above and is configured with the same
// shape (GCRALimiterConfig mirrors RateLimiterConfig) so the two are
// interchangeable behind config.Loader's limiter-kind selection.
//
// Where RateLimiter hand-rolls refill accounting under a mutex, GCRALimiter
// delegates to rate.Limiter, which computes availability algebraically
// from elapsed time rather than on a timer tick — useful when a
// deployment wants the stricter, well-tested GCRA semantics instead.
type GCRALimiter struct {
	config  RateLimiterConfig
	limiter *rate.Limiter
}

// NewGCRALimiter creates a GCRA-based limiter. Config defaults match
// NewRateLimiter's so operators can switch implementations without
// re-tuning values.
func NewGCRALimiter(config RateLimiterConfig) *GCRALimiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	return &GCRALimiter{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
	}
}

// Allow reports whether a single request may proceed immediately.
func (l *GCRALimiter) Allow() bool {
	return l.limiter.Allow()
}

// Wait blocks until a token is available, the configured MaxWait
// elapses, or ctx is canceled — whichever comes first.
func (l *GCRALimiter) Wait(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.config.MaxWait)
	defer cancel()

	if err := l.limiter.Wait(waitCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrRateLimitExceeded
	}
	return nil
}

// Execute runs op if allowed by the limiter, waiting first when
// WaitOnLimit is configured.
func (l *GCRALimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if l.config.WaitOnLimit {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	} else if !l.Allow() {
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

// Tokens reports the number of requests that could proceed right now
// without blocking, for parity with RateLimiter.Tokens.
func (l *GCRALimiter) Tokens() float64 {
	return l.limiter.Tokens()
}

// SetRate adjusts the limiter's steady-state rate and burst in place,
// useful when an auto-scaler or policy reload changes throughput limits
// without tearing down in-flight state.
func (l *GCRALimiter) SetRate(ratePerSec float64, burst int) {
	l.limiter.SetLimit(rate.Limit(ratePerSec))
	l.limiter.SetBurst(burst)
}
