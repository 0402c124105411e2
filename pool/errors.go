package pool

import "errors"

// Sentinel errors returned by Pool operations.
var (
	// ErrPoolClosed is returned by Acquire once Close has been called.
	ErrPoolClosed = errors.New("pool: closed")

	// ErrAcquireTimeout is returned when Acquire could not obtain a
	// permit within its configured or caller-supplied deadline.
	ErrAcquireTimeout = errors.New("pool: acquire timed out")

	// ErrAlreadyReleased is returned by Release/Discard when called
	// more than once on the same Handle.
	ErrAlreadyReleased = errors.New("pool: handle already released")
)
