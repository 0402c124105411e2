package pool

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vanyastaff/nebula/expirable"
)

// Factory creates a new instance of T. A non-nil error means no
// instance was created and no permit is consumed by the caller beyond
// what Acquire already released on failure.
type Factory[T any] func(ctx context.Context) (T, error)

// Destroyer releases any resources an instance holds (closing a
// connection, for example). Destroyer is optional; a nil Destroyer
// means instances need no explicit cleanup.
type Destroyer[T any] func(value T)

// Config controls pool sizing and idle-instance lifecycle.
type Config struct {
	// MaxSize is the maximum number of instances live at once
	// (acquired + idle). Default: 10.
	MaxSize int
	// MinIdle is the minimum number of idle instances the TTL sweep
	// will preserve even past IdleTTL. Default: 0.
	MinIdle int
	// IdleTTL is how long an idle instance may sit before the
	// background sweep destroys it. Default: 5 minutes (a zero value
	// takes the default). A negative value disables the sweep.
	IdleTTL time.Duration
	// AcquireTimeout is the default timeout applied to Acquire calls
	// whose context carries no deadline of its own. Default: 30s.
	AcquireTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxSize <= 0 {
		c.MaxSize = 10
	}
	if c.IdleTTL == 0 {
		c.IdleTTL = 5 * time.Minute
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = 30 * time.Second
	}
	return c
}

// Pool is a generic, bounded, async object pool over instances of T.
type Pool[T any] struct {
	config   Config
	factory  Factory[T]
	destroy  Destroyer[T]
	sem      *semaphore.Weighted

	mu     sync.Mutex
	idle   []instance[T] // LIFO stack; idle[len-1] is most recently returned
	closed bool

	reclaim chan reclaimed[T]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metricsMu sync.Mutex
	created   int
	destroyed int
}

type reclaimed[T any] struct {
	value   T
	discard bool
}

// New creates a Pool and starts its background reclaimer and idle-TTL
// sweep goroutines. Call Close to stop them and release all idle
// instances.
func New[T any](factory Factory[T], destroy Destroyer[T], cfg Config) *Pool[T] {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool[T]{
		config:  cfg,
		factory: factory,
		destroy: destroy,
		sem:     semaphore.NewWeighted(int64(cfg.MaxSize)),
		reclaim: make(chan reclaimed[T], 1024),
		ctx:     ctx,
		cancel:  cancel,
	}

	p.wg.Add(1)
	go p.reclaimLoop()

	if cfg.IdleTTL > 0 {
		p.wg.Add(1)
		go p.sweepLoop()
	}

	return p
}

// Acquire obtains an instance, reusing the most recently released idle
// instance (LIFO) if one is available, otherwise creating a new one via
// the factory. Acquire blocks until a permit is available, ctx is done,
// or the pool's AcquireTimeout elapses for a context with no deadline
// of its own.
func (p *Pool[T]) Acquire(ctx context.Context) (*Handle[T], error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	// Reusing an idle instance does not change the total number of live
	// instances, so it requires no semaphore permit: the permit for an
	// idle instance was acquired when it was first created and is only
	// released when the instance is eventually destroyed.
	if value, ok := p.popIdle(); ok {
		return &Handle[T]{pool: p, value: value}, nil
	}

	acquireCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.config.AcquireTimeout)
		defer cancel()
	}

	// No idle instance was available; creating one increases the total
	// live count, so a permit against MaxSize is required first.
	if err := p.sem.Acquire(acquireCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrAcquireTimeout
	}

	// An idle instance may have been returned while we waited for a
	// permit; prefer reusing it over creating a new one, releasing the
	// now-unneeded permit back.
	if value, ok := p.popIdle(); ok {
		p.sem.Release(1)
		return &Handle[T]{pool: p, value: value}, nil
	}

	created, err := p.factory(ctx)
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}
	p.metricsMu.Lock()
	p.created++
	p.metricsMu.Unlock()

	return &Handle[T]{pool: p, value: created}, nil
}

func (p *Pool[T]) popIdle() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T
	n := len(p.idle)
	if n == 0 {
		return zero, false
	}
	v := p.idle[n-1].Value()
	p.idle = p.idle[:n-1]
	return v, true
}

// idleExpiry computes the absolute eviction time for an instance
// returned to idle at "at", or the zero time if the sweep is disabled.
func (p *Pool[T]) idleExpiry(at time.Time) time.Time {
	if p.config.IdleTTL <= 0 {
		return time.Time{}
	}
	return at.Add(p.config.IdleTTL)
}

// release is called by Handle.Release/Discard. It hands the value to
// the reclaim channel; when the channel's buffer is full the value is
// handled on a separate goroutine instead, so the caller never blocks.
func (p *Pool[T]) release(value T, discard bool) {
	r := reclaimed[T]{value: value, discard: discard}
	select {
	case p.reclaim <- r:
	case <-p.ctx.Done():
		// Pool shutting down; destroy directly since the reclaimer loop
		// may already have exited. Destruction always frees the permit
		// that the instance's creation consumed.
		p.destroyOne(value)
		p.sem.Release(1)
	default:
		go p.handleReclaimed(r)
	}
}

func (p *Pool[T]) reclaimLoop() {
	defer p.wg.Done()
	for {
		select {
		case r := <-p.reclaim:
			p.handleReclaimed(r)
		case <-p.ctx.Done():
			// Drain whatever is already buffered without blocking further.
			for {
				select {
				case r := <-p.reclaim:
					p.handleReclaimed(r)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool[T]) handleReclaimed(r reclaimed[T]) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if r.discard || closed {
		// Destruction shrinks the total live count, so the permit this
		// instance's creation consumed is freed here.
		p.destroyOne(r.value)
		p.sem.Release(1)
		return
	}

	// Returning to idle keeps the total live count unchanged: the
	// permit stays held on the instance's behalf until it is later
	// reused (no-op on the semaphore) or destroyed (released above or
	// in sweepExpired/Close).
	now := time.Now()
	p.mu.Lock()
	p.idle = append(p.idle, instance[T]{expirable.New(r.value, p.idleExpiry(now))})
	p.mu.Unlock()
}

func (p *Pool[T]) destroyOne(value T) {
	p.metricsMu.Lock()
	p.destroyed++
	p.metricsMu.Unlock()
	if p.destroy != nil {
		p.destroy(value)
	}
}

func (p *Pool[T]) sweepLoop() {
	defer p.wg.Done()

	interval := p.config.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.sweepExpired()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool[T]) sweepExpired() {
	now := time.Now()

	p.mu.Lock()
	// idle is ordered oldest-first (index 0) to newest-first (index
	// len-1, the LIFO top). The MinIdle most-recently-returned entries
	// are always protected from TTL eviction regardless of age; only
	// entries older than that floor are candidates for eviction.
	protectedFrom := len(p.idle) - p.config.MinIdle
	if protectedFrom < 0 {
		protectedFrom = 0
	}

	keep := make([]instance[T], 0, len(p.idle))
	expired := make([]T, 0)
	for i, inst := range p.idle {
		if i < protectedFrom && inst.Expired(now) {
			expired = append(expired, inst.Value())
			continue
		}
		keep = append(keep, inst)
	}
	p.idle = keep
	p.mu.Unlock()

	for _, v := range expired {
		p.destroyOne(v)
		p.sem.Release(1)
	}
}

// ScaleUp synchronously pre-creates up to n additional idle instances,
// capped by however many permits remain against MaxSize. It returns the
// number actually created; running out of permits or a factory error
// stops early without failing the call.
func (p *Pool[T]) ScaleUp(ctx context.Context, n int) int {
	created := 0
	for i := 0; i < n; i++ {
		if !p.sem.TryAcquire(1) {
			break
		}
		value, err := p.factory(ctx)
		if err != nil {
			p.sem.Release(1)
			break
		}
		p.metricsMu.Lock()
		p.created++
		p.metricsMu.Unlock()

		now := time.Now()
		p.mu.Lock()
		p.idle = append(p.idle, instance[T]{expirable.New(value, p.idleExpiry(now))})
		p.mu.Unlock()
		created++
	}
	return created
}

// ScaleDown removes up to n idle instances, never going below minIdle
// idle instances remaining. It returns the number actually destroyed.
func (p *Pool[T]) ScaleDown(n, minIdle int) int {
	p.mu.Lock()
	available := len(p.idle) - minIdle
	if available <= 0 {
		p.mu.Unlock()
		return 0
	}
	if n > available {
		n = available
	}
	removed := make([]T, n)
	for i := 0; i < n; i++ {
		last := len(p.idle) - 1
		removed[i] = p.idle[last].Value()
		p.idle = p.idle[:last]
	}
	p.mu.Unlock()

	for _, v := range removed {
		p.destroyOne(v)
		p.sem.Release(1)
	}
	return len(removed)
}

// Metrics reports simple lifetime counters for observability.
type Metrics struct {
	Created   int
	Destroyed int
	Idle      int
}

// Metrics returns a snapshot of pool lifetime counters.
func (p *Pool[T]) Metrics() Metrics {
	p.metricsMu.Lock()
	created, destroyed := p.created, p.destroyed
	p.metricsMu.Unlock()

	p.mu.Lock()
	idle := len(p.idle)
	p.mu.Unlock()

	return Metrics{Created: created, Destroyed: destroyed, Idle: idle}
}

// Close stops the background goroutines and destroys all idle
// instances. In-flight handles acquired before Close are still valid
// to Release/Discard; their eventual reclaim destroys the instance
// immediately instead of returning it to the idle stack.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, inst := range idle {
		p.destroyOne(inst.Value())
		p.sem.Release(1)
	}

	p.cancel()
	p.wg.Wait()
}
