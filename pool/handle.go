package pool

import (
	"sync/atomic"

	"github.com/vanyastaff/nebula/expirable"
)

// instance wraps a pooled value with the bookkeeping the pool needs for
// idle-TTL sweeps: the value itself plus the absolute time at which it
// becomes eligible for eviction (zero if the pool's IdleTTL is disabled).
type instance[T any] struct {
	expirable.Value[T]
}

// Handle is a guarded reference to a pooled instance. Exactly one of
// Release or Discard must be called exactly once per Handle; calling
// either a second time returns ErrAlreadyReleased. A Handle must never
// be used after Release/Discard.
type Handle[T any] struct {
	pool     *Pool[T]
	value    T
	released atomic.Bool
}

// Value returns the underlying pooled instance.
func (h *Handle[T]) Value() T {
	return h.value
}

// Release returns the instance to the pool for reuse. It never blocks
// and never fails under normal operation: the instance goes to the
// background reclaimer's buffered channel, or to a goroutine of its
// own when that buffer is full.
func (h *Handle[T]) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return ErrAlreadyReleased
	}
	h.pool.release(h.value, false)
	return nil
}

// Discard returns the permit held by this handle without returning the
// instance to the idle pool — use this when the caller knows the
// instance is unhealthy (e.g. a connection that errored) so the pool
// destroys it and creates a fresh one on the next Acquire instead of
// recycling a broken instance.
func (h *Handle[T]) Discard() error {
	if !h.released.CompareAndSwap(false, true) {
		return ErrAlreadyReleased
	}
	h.pool.release(h.value, true)
	return nil
}
