// Package action implements the per-node execution runtime described
// in spec §4.6: ActionContext assembly, input/port resolution, and
// Handler invocation guarded by timeout, heartbeat, retry, and
// cooperative cancellation.
package action
