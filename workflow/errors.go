package workflow

import "errors"

var (
	// ErrInvalidGraph is returned by Build when a node references an
	// unknown predecessor or duplicates another node's id.
	ErrInvalidGraph = errors.New("workflow: invalid graph")
	// ErrCycle is returned by Build when the declared edges contain a
	// cycle, so no topological order exists.
	ErrCycle = errors.New("workflow: graph contains a cycle")
	// ErrCancelled names external run cancellation. Engine.Execute does
	// not return it or use it as a cause; a cancelled run reports
	// RunCancelled in its RunResult.
	ErrCancelled = errors.New("workflow: run cancelled")
	// ErrAlreadyRunning names a duplicate concurrent run. Engine.Execute
	// does not return it and does not detect concurrent calls.
	ErrAlreadyRunning = errors.New("workflow: run already in progress")
)
