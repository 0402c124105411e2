package resource

import (
	"context"
	"fmt"
	"sync"
	"time"

	nebulaerrors "github.com/vanyastaff/nebula/errors"
	"github.com/vanyastaff/nebula/health"
	"github.com/vanyastaff/nebula/pool"
)

// Handle is a type-erased guarded handle over an acquired resource
// instance. Release/Discard behave exactly as pool.Handle's.
type Handle struct {
	inner *pool.Handle[any]
}

// Value returns the acquired instance. Callers type-assert it to the
// concrete type their resource's factory produces.
func (h *Handle) Value() any { return h.inner.Value() }

// Release returns the instance to its pool.
func (h *Handle) Release() error { return h.inner.Release() }

// Discard destroys the instance instead of returning it to the pool.
func (h *Handle) Discard() error { return h.inner.Discard() }

type poolEntry struct {
	descriptor   Descriptor
	pool         *pool.Pool[any]
	scaler       *Autoscaler
	cancelScaler context.CancelFunc
}

// Manager is a typed registry of resources: it owns the dependency DAG
// used to order initialization/shutdown, and one pool per registered
// type-tag. Acquisition matches a request Scope against each
// candidate pool's Scope using the descriptor's configured
// MatchStrategy; tenant isolation is enforced by Scope.Contains's
// deny-by-default rule (see scope.go).
//
// Lock ordering (see spec §5 deadlock-avoidance rule): Manager's own
// mutex is always acquired before touching any individual pool's
// internal state, never the reverse.
type Manager struct {
	mu    sync.RWMutex
	pools map[string]*poolEntry
	dag   *depGraph
}

// NewManager creates an empty resource manager.
func NewManager() *Manager {
	return &Manager{
		pools: make(map[string]*poolEntry),
		dag:   newDepGraph(),
	}
}

// Register validates d's config and pool policy, inserts it into the
// dependency DAG (rejecting cycles and missing dependencies), and
// builds its pool.
func (m *Manager) Register(tag string, d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.pools[tag]; exists {
		return ErrAlreadyRegistered
	}
	if err := m.dag.addNode(tag, d.Dependencies); err != nil {
		return err
	}

	factory := func(ctx context.Context) (any, error) {
		if d.Resilience != nil {
			var result any
			var ferr error
			err := d.Resilience.Execute(ctx, func(ctx context.Context) error {
				result, ferr = d.Factory(ctx, d.Config)
				return ferr
			})
			if err != nil {
				return nil, err
			}
			return result, nil
		}
		return d.Factory(ctx, d.Config)
	}

	p := pool.New[any](factory, nil, pool.Config{
		MaxSize:        d.Pool.MaxActive,
		MinIdle:        d.Pool.MinIdle,
		IdleTTL:        d.Pool.IdleTTL,
		AcquireTimeout: 30 * time.Second,
	})

	entry := &poolEntry{descriptor: d, pool: p}
	scalerCtx, cancel := context.WithCancel(context.Background())
	entry.scaler = NewAutoscaler(p, d.Pool, func(ctx context.Context, delta int) {
		scaleIdle(ctx, p, delta, d.Pool.MinIdle)
	})
	entry.cancelScaler = cancel
	go entry.scaler.Run(scalerCtx)

	m.pools[tag] = entry
	return nil
}

// Unregister removes a resource and closes its pool. It refuses to
// remove a resource that another registered resource still declares as
// a dependency, which keeps the dependency DAG consistent (the
// round-trip property in spec §8: register then unregister returns the
// manager to its prior graph).
func (m *Manager) Unregister(tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.pools[tag]
	if !ok {
		return ErrNotRegistered
	}
	if dependents := m.dag.dependents(tag); len(dependents) > 0 {
		return fmt.Errorf("%w: %s is still required by %v", ErrInvalidConfig, tag, dependents)
	}

	entry.cancelScaler()
	entry.pool.Close()
	m.dag.removeNode(tag)
	delete(m.pools, tag)
	return nil
}

// InitializationOrder returns the topological order resources should be
// warmed up in; the reverse order is the correct shutdown order.
func (m *Manager) InitializationOrder() ([]string, error) {
	return m.dag.initializationOrder()
}

// Acquire matches tag's pool against reqScope using the descriptor's
// MatchStrategy and returns a guarded Handle on success.
func (m *Manager) Acquire(ctx context.Context, tag string, reqScope Scope) (*Handle, error) {
	m.mu.RLock()
	entry, ok := m.pools[tag]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotRegistered
	}
	if !matches(entry.descriptor.MatchStrategy, entry.descriptor.Scope, reqScope) {
		return nil, nebulaerrors.Wrap(nebulaerrors.KindNotFound, "resource.Manager.Acquire",
			"no pool matches the requested scope", ErrNoMatchingPool)
	}

	h, err := entry.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Handle{inner: h}, nil
}

// Shutdown iterates pools in reverse topological order, closing each.
// pool.Close reports no error, so there are no per-pool errors to
// collect: Shutdown returns an error only when grace elapses or ctx is
// done before every pool has closed, and the closing goroutine then
// goes on with the remaining pools.
func (m *Manager) Shutdown(ctx context.Context, grace time.Duration) error {
	m.mu.Lock()
	order, err := m.dag.initializationOrder()
	if err != nil {
		// Defensive: still shut down everything we can, just not in a
		// guaranteed dependency-respecting order.
		order = make([]string, 0, len(m.pools))
		for tag := range m.pools {
			order = append(order, tag)
		}
	}
	entries := make(map[string]*poolEntry, len(m.pools))
	for k, v := range m.pools {
		entries[k] = v
	}
	m.pools = make(map[string]*poolEntry)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for i := len(order) - 1; i >= 0; i-- {
			entry, ok := entries[order[i]]
			if !ok {
				continue
			}
			entry.cancelScaler()
			entry.pool.Close()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(grace):
		return fmt.Errorf("resource: shutdown did not complete within grace period %s", grace)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HealthCheck composes every registered resource's optional health
// check into one aggregate result via health.Aggregator.
func (m *Manager) HealthCheck(ctx context.Context) health.Result {
	agg := health.NewAggregator()

	m.mu.RLock()
	defer m.mu.RUnlock()

	for tag, entry := range m.pools {
		if entry.descriptor.HealthCheck == nil {
			continue
		}
		name, checkFn, p := tag, entry.descriptor.HealthCheck, entry.pool
		agg.Register(name, health.NewCheckerFunc(name, func(ctx context.Context) health.Result {
			h, err := p.Acquire(ctx)
			if err != nil {
				return health.Unhealthy("could not acquire instance to health-check", err)
			}
			defer h.Release()
			return checkFn(ctx, h.Value())
		}))
	}

	return agg.Checker().Check(ctx)
}
