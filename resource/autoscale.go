package resource

import (
	"context"
	"time"

	"github.com/vanyastaff/nebula/pool"
)

// scaleFunc applies a scaling decision to the pool backing one resource:
// a positive delta means "create up to delta idle instances", negative
// means "remove up to -delta idle instances".
type scaleFunc func(ctx context.Context, delta int)

// Autoscaler watches one pool's utilization against a PoolPolicy's
// watermarks and drives scale-up/scale-down decisions. Utilization is
// sampled each tick as active/max, where active is approximated from
// the pool's metrics as created minus destroyed minus idle (the
// instances currently checked out). A watermark must be held continuously for the whole
// EvaluationWindow before it triggers a scaling action, and every
// action is followed by Cooldown before another action of either
// direction is considered.
type Autoscaler struct {
	pool   *pool.Pool[any]
	policy PoolPolicy
	apply  scaleFunc

	highSince time.Time
	lowSince  time.Time
	lastScale time.Time
}

// NewAutoscaler builds an Autoscaler for pool p governed by policy. The
// apply callback performs the actual scale-up/scale-down against p;
// Manager wires it to pool.Pool's ScaleUp/ScaleDown methods.
func NewAutoscaler(p *pool.Pool[any], policy PoolPolicy, apply scaleFunc) *Autoscaler {
	return &Autoscaler{pool: p, policy: policy, apply: apply}
}

// Run evaluates utilization every EvaluationWindow/2 until ctx is
// canceled. It is meant to be started as its own goroutine, one per
// registered pool.
func (a *Autoscaler) Run(ctx context.Context) {
	interval := a.policy.EvaluationWindow / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.evaluate(ctx, time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (a *Autoscaler) evaluate(ctx context.Context, now time.Time) {
	a.sampleUtilization(now)
	a.evaluateWatermarks(ctx, now)
}

// sampleUtilization reads the pool's current metrics and updates
// highSince/lowSince, the timestamps marking when the respective
// watermark started being continuously breached.
func (a *Autoscaler) sampleUtilization(now time.Time) {
	m := a.pool.Metrics()
	live := m.Created - m.Destroyed
	if live <= 0 {
		return
	}
	active := live - m.Idle
	utilization := float64(active) / float64(a.policy.MaxActive)

	switch {
	case utilization >= a.policy.HighWatermark:
		if a.highSince.IsZero() {
			a.highSince = now
		}
		a.lowSince = time.Time{}
	case utilization <= a.policy.LowWatermark:
		if a.lowSince.IsZero() {
			a.lowSince = now
		}
		a.highSince = time.Time{}
	default:
		a.highSince = time.Time{}
		a.lowSince = time.Time{}
	}
}

// evaluateWatermarks applies a scaling decision if a watermark has been
// continuously breached for at least EvaluationWindow and Cooldown has
// elapsed since the last scaling action.
func (a *Autoscaler) evaluateWatermarks(ctx context.Context, now time.Time) {
	if !a.lastScale.IsZero() && now.Sub(a.lastScale) < a.policy.Cooldown {
		return
	}

	switch {
	case !a.highSince.IsZero() && now.Sub(a.highSince) >= a.policy.EvaluationWindow:
		a.apply(ctx, a.policy.ScaleUpStep)
		a.lastScale = now
		a.highSince = time.Time{}
	case !a.lowSince.IsZero() && now.Sub(a.lowSince) >= a.policy.EvaluationWindow:
		a.apply(ctx, -a.policy.ScaleDownStep)
		a.lastScale = now
		a.lowSince = time.Time{}
	}
}

// scaleIdle translates an Autoscaler's delta into the appropriate
// pool.Pool call; minIdle floors how far a negative delta may shrink
// the idle set, per policy.MinIdle.
func scaleIdle(ctx context.Context, p *pool.Pool[any], delta, minIdle int) {
	if delta > 0 {
		p.ScaleUp(ctx, delta)
		return
	}
	if delta < 0 {
		p.ScaleDown(-delta, minIdle)
	}
}
