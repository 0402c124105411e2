// Package workflow implements the workflow scheduler: a directed
// acyclic graph of nodes (Graph), its per-run execution state
// (NodeStatus/RunStatus), and the Kahn's-algorithm-based scheduler
// (Engine) that dispatches nodes through a caller-supplied NodeExecutor
// as their predecessors succeed.
package workflow
