// Package pool implements a generic, bounded, async object pool with a
// background reclaimer: Release never blocks or fails, regardless of
// pool state, because returned instances are handed to a buffered
// channel drained by a dedicated goroutine (or, when that buffer is
// full, to a goroutine of their own) rather than being placed back
// into shared state synchronously.
//
// # Concurrency model
//
// Acquire is gated by a weighted semaphore sized to Config.MaxSize: a
// permit must be held before an instance (idle or freshly created) is
// handed out. Idle instances are kept on a LIFO stack — the most
// recently returned instance is the most likely to still be warm
// (e.g. a pooled connection with a live keep-alive) — matching the
// warm-instance preference of connection and VM pools the rest of this
// module is modeled on.
//
// Every read and write of the idle stack (reclaim, Acquire's reuse, the
// TTL sweep, ScaleUp/ScaleDown and Close) happens under the pool
// mutex. Release never waits on the reclaimer: it sends on the reclaim
// channel only when the buffer has room and otherwise hands the
// instance to a new goroutine, so a slow or stuck reclaimer cannot make
// Release block.
//
// # Idle TTL
//
// A background sweep ticks every Config.IdleTTL/2 (minimum one second)
// and destroys idle instances that have been sitting longer than
// Config.IdleTTL, down to Config.MinIdle.
package pool
