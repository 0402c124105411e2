package action

import "time"

// TimeoutPolicy guards a single handler invocation. StartToClose bounds
// the whole call; Heartbeat, if non-zero, requires the handler to call
// HeartbeatFunc at least that often or be treated as stalled.
type TimeoutPolicy struct {
	StartToClose time.Duration
	Heartbeat    time.Duration
}

// RetryPolicy governs handler-level retries, independent of and
// composed outside the resilience package's generic Retry (this one is
// scoped to a single node's NonRetryableErrors classification, which
// resilience.RetryConfig has no notion of).
type RetryPolicy struct {
	MaxAttempts         int
	InitialInterval     time.Duration
	BackoffCoefficient  float64
	MaxInterval         time.Duration
	NonRetryableErrors  []string // error substrings that short-circuit retry
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = 100 * time.Millisecond
	}
	if p.BackoffCoefficient <= 0 {
		p.BackoffCoefficient = 2.0
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = 30 * time.Second
	}
	return p
}

// Budget is a node's execution budget: a wall-clock deadline, a cap on
// attempts (mirrored from RetryPolicy.MaxAttempts so callers can read
// it off the context without the policy), and CPU time is left
// advisory — Nebula has no portable CPU-time enforcement primitive in
// the standard library, so CPUTime is recorded for telemetry/operator
// visibility only and is not itself enforced.
type Budget struct {
	WallClockDeadline time.Time
	MaxRetries        int
	CPUTime           time.Duration
}

// Metadata describes a node's static action configuration: its declared
// timeout and retry policies, used by the runtime to build the guarded
// invocation around a Handler.
type Metadata struct {
	NodeType string
	Timeout  TimeoutPolicy
	Retry    RetryPolicy
}
