package resource

import (
	"context"
	"fmt"
	"time"

	"github.com/vanyastaff/nebula/health"
	"github.com/vanyastaff/nebula/resilience"
)

// Validatable is implemented by resource config types that can check
// their own well-formedness at registration time.
type Validatable interface {
	Validate() error
}

// Factory constructs one instance of a resource given its (already
// validated) config.
type Factory func(ctx context.Context, cfg any) (any, error)

// HealthCheckFunc probes a live instance's health.
type HealthCheckFunc func(ctx context.Context, instance any) health.Result

// PoolPolicy controls sizing and auto-scaling for one resource's pool.
type PoolPolicy struct {
	MinIdle     int
	MaxActive   int
	MaxLifetime time.Duration
	IdleTTL     time.Duration

	// Auto-scale watermarks; see autoscale.go.
	HighWatermark    float64
	LowWatermark     float64
	Cooldown         time.Duration
	EvaluationWindow time.Duration
	ScaleUpStep      int
	ScaleDownStep    int
}

// Validate enforces the constraints from spec §4.4: 0 < high ≤ 1,
// 0 ≤ low < 1, low < high, steps > 0, windows > 0.
func (p PoolPolicy) Validate() error {
	if p.MaxActive <= 0 {
		return fmt.Errorf("%w: max_active must be positive", ErrInvalidConfig)
	}
	if p.HighWatermark <= 0 || p.HighWatermark > 1 {
		return fmt.Errorf("%w: high_watermark must be in (0,1]", ErrInvalidConfig)
	}
	if p.LowWatermark < 0 || p.LowWatermark >= 1 {
		return fmt.Errorf("%w: low_watermark must be in [0,1)", ErrInvalidConfig)
	}
	if p.LowWatermark >= p.HighWatermark {
		return fmt.Errorf("%w: low_watermark must be less than high_watermark", ErrInvalidConfig)
	}
	if p.ScaleUpStep <= 0 || p.ScaleDownStep <= 0 {
		return fmt.Errorf("%w: scale steps must be positive", ErrInvalidConfig)
	}
	if p.EvaluationWindow <= 0 {
		return fmt.Errorf("%w: evaluation_window must be positive", ErrInvalidConfig)
	}
	if p.Cooldown <= 0 {
		return fmt.Errorf("%w: cooldown must be positive", ErrInvalidConfig)
	}
	return nil
}

// Descriptor is a resource's static registration: identity, config,
// instance factory, optional health check, declared dependencies, pool
// sizing policy, and the scope a pool built from it serves.
type Descriptor struct {
	Name    string
	Version string

	Config      any
	Factory     Factory
	HealthCheck HealthCheckFunc

	// Dependencies are the type-tags of other resources this one's
	// factory requires to have already been initialized.
	Dependencies []string

	Pool PoolPolicy

	Scope         Scope
	MatchStrategy MatchStrategy

	// Resilience wraps every factory invocation (spec §2: "pools invoke
	// resilience around factory calls"). Nil means factory calls run
	// unwrapped.
	Resilience *resilience.Executor
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if d.Factory == nil {
		return fmt.Errorf("%w: factory is required", ErrInvalidConfig)
	}
	if err := d.Pool.Validate(); err != nil {
		return err
	}
	if v, ok := d.Config.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
