package action

import (
	"github.com/vanyastaff/nebula/config"
	"github.com/vanyastaff/nebula/credential"
	"github.com/vanyastaff/nebula/telemetry"
)

// Context is the per-node ActionContext described in spec §4.6: the
// resolved parameter collection, an immutable credentials handle, a
// cancellation token, an execution budget, and a telemetry emitter
// bound to (workflow-id, execution-id, node-id). The token and the
// emitter's bus are unexported fields that no exported function sets,
// so a Context built outside this package has neither.
type Context struct {
	WorkflowID  string
	ExecutionID string
	NodeID      string

	Parameters map[string]any
	Ports      Ports
	Input      any

	Credentials *credential.Handle
	Budget      Budget

	cancel *cancelOnce
	bus    *telemetry.Bus
}

// Cancelled returns a channel closed when the node's cancellation token
// fires, which happens only when the token's Cancel method is called.
// Cancelling the ctx passed to Runtime.Invoke, a sibling's failure and
// attempt timeouts do not fire it; they reach Invoke through ctx and
// the start-to-close timeout instead. A Context without a token returns
// a nil channel, which never fires.
func (c *Context) Cancelled() <-chan struct{} {
	if c.cancel == nil {
		return nil
	}
	return c.cancel.Done()
}

// Err returns the reason the token fired, or nil if it hasn't.
func (c *Context) Err() error {
	select {
	case <-c.Cancelled():
		return c.cancel.Cause()
	default:
		return nil
	}
}

// emit publishes an event on the context's telemetry bus, if any.
func (c *Context) emit(ev telemetry.Event) {
	if c.bus == nil {
		return
	}
	ev.RunID = c.ExecutionID
	ev.NodeID = c.NodeID
	c.bus.Publish(ev)
}

// BuildParameters merges workflow-level defaults, node-level
// overrides, and runtime inputs in that precedence order, per spec
// §4.6's ParameterCollection merge rule.
func BuildParameters(defaults, overrides, inputs map[string]any) (map[string]any, error) {
	return config.MergeParameters(defaults, overrides, inputs)
}
