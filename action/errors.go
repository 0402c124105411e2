package action

import "errors"

var (
	// ErrCancelled is returned by a handler (or synthesized by the
	// runtime) when the action's cancellation token has fired.
	ErrCancelled = errors.New("action: cancelled")

	// ErrNonRetryable wraps a handler error that the declared
	// RetryPolicy names as non-retryable, short-circuiting further
	// attempts.
	ErrNonRetryable = errors.New("action: non-retryable error")

	// ErrHeartbeatLost is returned when heartbeat monitoring detects the
	// handler has stopped heartbeating past its allowed interval.
	ErrHeartbeatLost = errors.New("action: heartbeat lost")
)
