package workflow

import (
	"time"

	"github.com/google/uuid"
)

// NodeStatus is a node's position in its lifecycle within a single run.
type NodeStatus int

const (
	NodePending NodeStatus = iota
	NodeReady
	NodeRunning
	NodeSucceeded
	NodeFailed
	NodeCancelled
	NodeSkipped
)

func (s NodeStatus) String() string {
	switch s {
	case NodePending:
		return "pending"
	case NodeReady:
		return "ready"
	case NodeRunning:
		return "running"
	case NodeSucceeded:
		return "succeeded"
	case NodeFailed:
		return "failed"
	case NodeCancelled:
		return "cancelled"
	case NodeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

func (s NodeStatus) terminal() bool {
	switch s {
	case NodeSucceeded, NodeFailed, NodeCancelled, NodeSkipped:
		return true
	default:
		return false
	}
}

// RunStatus is a run's overall terminal outcome.
type RunStatus int

const (
	RunRunning RunStatus = iota
	RunSucceeded
	RunFailed
	RunCancelled
)

func (s RunStatus) String() string {
	switch s {
	case RunRunning:
		return "running"
	case RunSucceeded:
		return "succeeded"
	case RunFailed:
		return "failed"
	case RunCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// NodeOutcome is one node's recorded result at the end of a run.
type NodeOutcome struct {
	Status NodeStatus
	Output any
	Err    error
}

// RunResult is the final record of a workflow run: its terminal status
// and every node's outcome. Status follows spec §4.7's exact terminal
// rule: Succeeded iff no node failed without AllowFailure, so every
// node reached NodeSucceeded, failed with AllowFailure set, or was
// skipped (by an untaken conditional branch or below an AllowFailure
// node that failed); Failed iff a node without AllowFailure reached
// NodeFailed and triggered fail-fast; Cancelled iff
// the run was cancelled externally before any node failed.
type RunResult struct {
	RunID  string
	Status RunStatus
	Nodes  map[string]NodeOutcome
}

// ExecutionBudget bounds a single run: MaxConcurrentNodes caps how many
// nodes may be dispatched at once (0 means unbounded), WallClockDeadline
// is an overall run deadline (zero means none).
type ExecutionBudget struct {
	MaxConcurrentNodes int
	WallClockDeadline  time.Time
}

// NewRunID generates a fresh, unique run identifier.
func NewRunID() string {
	return uuid.NewString()
}
