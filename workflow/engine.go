package workflow

import (
	"context"
	"sort"

	"github.com/vanyastaff/nebula/action"
)

// NodeExecutor dispatches a single node's action invocation given its
// resolved flow input (spec §4.7's Input(), already computed by the
// engine from predecessor outputs before this is called). Binding the
// node's action.Context — parameters, credentials, cancellation token,
// telemetry — to ctx is the executor's responsibility; the engine only
// owns graph traversal and scheduling.
type NodeExecutor func(ctx context.Context, node Node, input any) (any, error)

// Engine runs Graphs to completion against a NodeExecutor, grounded on
// the Kahn's-algorithm ready-queue/worker-pool/coordinator pattern from
// the pack's dag_engine.go example, adapted from task scheduling to
// Nebula's node/edge workflow model and composed with action.Input for
// join-node input aggregation.
type Engine struct {
	executor NodeExecutor
}

// NewEngine builds an Engine that dispatches every node through executor.
func NewEngine(executor NodeExecutor) *Engine {
	return &Engine{executor: executor}
}

type nodeResult struct {
	id     string
	output any
	err    error
}

// Execute runs g to completion: entry nodes receive workflowInput,
// every other node receives action.Input computed from its
// predecessors' recorded outputs. Dispatch of simultaneously-ready
// nodes follows g's stable topological pre-order (spec §4.7's
// determinism rule). A non-AllowFailure node's failure fires the
// run's cancellation token, aborts further dispatch, and waits for
// in-flight nodes to drain before returning a Failed result;
// cancelling ctx externally before any node fails produces a
// Cancelled result instead.
func (e *Engine) Execute(ctx context.Context, g *Graph, runID string, workflowInput any, budget ExecutionBudget) (*RunResult, error) {
	if !budget.WallClockDeadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, budget.WallClockDeadline)
		defer cancel()
	}

	runCtx, abort := context.WithCancelCause(ctx)
	defer abort(nil)

	total := g.Len()
	orderIndex := make(map[string]int, total)
	for i, id := range g.Order() {
		orderIndex[id] = i
	}

	pendingPreds := make(map[string]int, total)
	statuses := make(map[string]NodeStatus, total)
	outputs := make(map[string]any, total)
	errs := make(map[string]error, total)
	for _, id := range g.Order() {
		n, _ := g.Node(id)
		pendingPreds[id] = len(n.Predecessors)
		statuses[id] = NodePending
	}

	maxConcurrent := budget.MaxConcurrentNodes
	if maxConcurrent <= 0 {
		maxConcurrent = total
	}
	if maxConcurrent == 0 {
		maxConcurrent = 1
	}

	var ready []string
	var inFlight int
	var completed int
	var abortReason RunStatus // RunRunning until an abort happens

	insertReady := func(id string) {
		pos := sort.Search(len(ready), func(i int) bool { return orderIndex[ready[i]] >= orderIndex[id] })
		ready = append(ready, "")
		copy(ready[pos+1:], ready[pos:])
		ready[pos] = id
	}

	var markReadyOrSkip func(id string)
	var skipSubtree func(id string)

	markReadyOrSkip = func(id string) {
		n, _ := g.Node(id)
		if n.Condition != nil && !n.Condition(outputs) {
			skipSubtree(id)
			return
		}
		statuses[id] = NodeReady
		insertReady(id)
	}

	skipSubtree = func(id string) {
		if statuses[id].terminal() {
			return
		}
		statuses[id] = NodeSkipped
		completed++
		for _, child := range g.Successors(id) {
			skipSubtree(child)
		}
	}

	cancelPending := func() {
		for _, id := range g.Order() {
			if !statuses[id].terminal() && statuses[id] != NodeRunning {
				statuses[id] = NodeCancelled
				completed++
			}
		}
		ready = nil
	}

	results := make(chan nodeResult, total)

	dispatch := func(id string) {
		statuses[id] = NodeRunning
		inFlight++
		n, _ := g.Node(id)
		var input any
		if len(n.Predecessors) == 0 {
			input = workflowInput
		} else {
			input = action.Input(n.Predecessors, outputs)
		}
		go func() {
			out, err := e.executor(runCtx, n, input)
			results <- nodeResult{id: id, output: out, err: err}
		}()
	}

	for _, id := range g.EntryNodes() {
		markReadyOrSkip(id)
	}

	for completed < total {
		if abortReason == RunRunning {
			for inFlight < maxConcurrent && len(ready) > 0 {
				id := ready[0]
				ready = ready[1:]
				dispatch(id)
			}
		}

		if inFlight == 0 && len(ready) == 0 && completed < total && abortReason == RunRunning {
			// No node is running or runnable, but the graph isn't done:
			// only possible if every remaining node is unreachable, which
			// Build's connectivity checks should have already prevented.
			break
		}

		select {
		case <-runCtx.Done():
			if abortReason == RunRunning {
				abortReason = RunCancelled
				cancelPending()
			}
			if inFlight == 0 {
				goto finished
			}
			res := <-results
			inFlight--
			completed++
			// This node was in flight when the run aborted: it observed
			// the cancellation (or lost the race with it), so its
			// outcome is Cancelled regardless of what it returned. No
			// output or error is recorded for it.
			statuses[res.id] = NodeCancelled

		case res := <-results:
			inFlight--
			completed++

			if abortReason != RunRunning {
				// The run was already aborted before this in-flight
				// node's result arrived: same in-flight-during-abort
				// case as the runCtx.Done() branch above.
				statuses[res.id] = NodeCancelled
				continue
			}

			recordResult(statuses, outputs, errs, res)

			if res.err != nil {
				n, _ := g.Node(res.id)
				if !n.AllowFailure {
					abortReason = RunFailed
					abort(res.err)
					cancelPending()
				} else {
					// No output was produced: anything depending on it
					// can't be satisfied, so its whole downstream
					// subtree is skipped rather than dispatched.
					for _, child := range g.Successors(res.id) {
						skipSubtree(child)
					}
				}
				continue
			}

			for _, child := range g.Successors(res.id) {
				pendingPreds[child]--
				if pendingPreds[child] == 0 {
					markReadyOrSkip(child)
				}
			}
		}
	}

finished:
	status := abortReason
	if status == RunRunning {
		status = RunSucceeded
	}

	nodes := make(map[string]NodeOutcome, total)
	for _, id := range g.Order() {
		nodes[id] = NodeOutcome{Status: statuses[id], Output: outputs[id], Err: errs[id]}
	}

	return &RunResult{RunID: runID, Status: status, Nodes: nodes}, nil
}

func recordResult(statuses map[string]NodeStatus, outputs map[string]any, errs map[string]error, res nodeResult) {
	if res.err != nil {
		statuses[res.id] = NodeFailed
		errs[res.id] = res.err
		return
	}
	statuses[res.id] = NodeSucceeded
	outputs[res.id] = res.output
}
