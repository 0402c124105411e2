package action

import (
	"context"
	"errors"
	"time"

	"github.com/vanyastaff/nebula/resilience"
	"github.com/vanyastaff/nebula/telemetry"
)

// Handler is a node's business logic: given its ActionContext, produce
// an output or an error. Handlers are expected to check ctx.Cancelled()
// at their own await points and return ErrCancelled promptly once it
// fires; the runtime also enforces cancellation and timeouts from the
// outside, but a handler blocked on something the runtime can't
// interrupt (a blocking syscall with no context support) will only
// observe the outer timeout once it returns.
type Handler func(ctx context.Context, actx *Context) (any, error)

// Runtime invokes a node's Handler under its declared TimeoutPolicy and
// RetryPolicy, emitting the telemetry contract from spec §4.6 and
// incrementing the counters/histogram it names.
type Runtime struct {
	metrics Metrics
}

// Metrics is the counter/histogram surface the runtime increments;
// callers wire it to ObserveMetrics (backed by an observe.Observer's
// OTel meter) or a no-op for tests.
type Metrics interface {
	IncActionsExecuted(nodeType string)
	IncActionsFailed(nodeType string)
	IncActionsCancelled(nodeType string)
	ObserveActionDuration(nodeType string, d time.Duration)
}

// NoopMetrics discards every observation; useful in tests and as a
// Runtime default when no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) IncActionsExecuted(string)                  {}
func (NoopMetrics) IncActionsFailed(string)                    {}
func (NoopMetrics) IncActionsCancelled(string)                 {}
func (NoopMetrics) ObserveActionDuration(string, time.Duration) {}

// NewRuntime builds a Runtime; a nil metrics argument installs NoopMetrics.
func NewRuntime(metrics Metrics) *Runtime {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Runtime{metrics: metrics}
}

// Invoke runs handler under meta's timeout/retry policies against actx,
// publishing NodeStarted/NodeCompleted/NodeFailed/NodeCanceled on
// actx's telemetry bus and updating metrics accordingly.
func (r *Runtime) Invoke(ctx context.Context, meta Metadata, actx *Context, handler Handler) (any, error) {
	retry := meta.Retry.withDefaults()

	actx.emit(telemetry.Event{Kind: telemetry.EventNodeStarted, Timestamp: time.Now()})
	start := time.Now()

	var lastErr error
	var output any

	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		select {
		case <-actx.Cancelled():
			return r.finishCancelled(actx, meta.NodeType, start)
		default:
		}

		output, lastErr = r.invokeOnce(ctx, meta.Timeout, actx, handler)

		if lastErr == nil {
			duration := time.Since(start)
			r.metrics.IncActionsExecuted(meta.NodeType)
			r.metrics.ObserveActionDuration(meta.NodeType, duration)
			actx.emit(telemetry.Event{Kind: telemetry.EventNodeCompleted, Attempt: attempt, Duration: duration, Timestamp: time.Now()})
			return output, nil
		}

		if errors.Is(lastErr, ErrCancelled) {
			return r.finishCancelled(actx, meta.NodeType, start)
		}
		if isNonRetryable(lastErr, retry.NonRetryableErrors) || attempt >= retry.MaxAttempts {
			break
		}

		select {
		case <-actx.Cancelled():
			return r.finishCancelled(actx, meta.NodeType, start)
		case <-time.After(retryDelay(retry, attempt)):
		}
	}

	duration := time.Since(start)
	r.metrics.IncActionsFailed(meta.NodeType)
	actx.emit(telemetry.Event{Kind: telemetry.EventNodeFailed, Duration: duration, Err: lastErr, Timestamp: time.Now()})
	return nil, lastErr
}

func (r *Runtime) finishCancelled(actx *Context, nodeType string, start time.Time) (any, error) {
	duration := time.Since(start)
	r.metrics.IncActionsCancelled(nodeType)
	actx.emit(telemetry.Event{Kind: telemetry.EventNodeCanceled, Duration: duration, Timestamp: time.Now()})
	return nil, ErrCancelled
}

// invokeOnce runs a single handler attempt under the start-to-close
// timeout, with heartbeat monitoring layered on top when configured.
func (r *Runtime) invokeOnce(ctx context.Context, timeout TimeoutPolicy, actx *Context, handler Handler) (any, error) {
	callCtx := ctx
	var cancel context.CancelFunc
	if timeout.StartToClose > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout.StartToClose)
		defer cancel()
	}

	type result struct {
		out any
		err error
	}
	done := make(chan result, 1)

	go func() {
		out, err := handler(callCtx, actx)
		done <- result{out, err}
	}()

	var heartbeatLost <-chan struct{}
	if timeout.Heartbeat > 0 {
		monitor := newHeartbeatMonitor(timeout.Heartbeat)
		heartbeatLost = monitor.watch(callCtx)
	}

	select {
	case res := <-done:
		return res.out, res.err
	case <-actx.Cancelled():
		return nil, ErrCancelled
	case <-heartbeatLost:
		return nil, ErrHeartbeatLost
	case <-callCtx.Done():
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, resilience.ErrTimeout
		}
		return nil, callCtx.Err()
	}
}
