package credential

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vanyastaff/nebula/resilience"
	"github.com/vanyastaff/nebula/secret"
)

// SecretResolvable is implemented by Initialize inputs whose string
// fields may carry "secretref:<provider>:<ref>" references (see
// secret.Resolver). Manager.Register resolves them via the manager's
// configured resolver before calling Kind.Initialize, so a Kind never
// sees an unresolved reference. Inputs that don't need resolution
// (already-plain values) simply don't implement this interface.
type SecretResolvable interface {
	ResolveSecrets(ctx context.Context, resolver *secret.Resolver) (any, error)
}

// RotationPolicy governs the Validating phase of a rotation: how many
// times a transient probe failure is retried, the timeout applied to
// each probe attempt, and whether a permanent failure or retry
// exhaustion rolls back (keeping old-state) rather than simply failing.
type RotationPolicy struct {
	MaxRetries      int
	ProbeTimeout    time.Duration
	AutoRollback    bool
	RetryInitial    time.Duration
	RetryMultiplier float64
}

func (p RotationPolicy) withDefaults() RotationPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 3
	}
	if p.ProbeTimeout <= 0 {
		p.ProbeTimeout = 10 * time.Second
	}
	if p.RetryInitial <= 0 {
		p.RetryInitial = 200 * time.Millisecond
	}
	if p.RetryMultiplier <= 0 {
		p.RetryMultiplier = 2.0
	}
	return p
}

// CleanupLogger receives the error from a best-effort CleanupOld call;
// Manager never surfaces that error as a rotation failure.
type CleanupLogger func(tag string, err error)

type entry struct {
	kind   Kind
	policy RotationPolicy
	handle *Handle

	mu       sync.Mutex // serializes rotation attempts for this credential
	rotating bool
	last     Record
}

// Manager is the credential registry described in spec §4.5: one entry
// per registered tag, each with its own kind, rotation policy, shared
// handle, and single-flight rotation lock.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*entry
	onCleanupErr CleanupLogger
	resolver     *secret.Resolver
}

// NewManager creates an empty credential manager. onCleanupErr may be
// nil; it is invoked, if set, whenever a Committed rotation's
// best-effort CleanupOld call fails.
func NewManager(onCleanupErr CleanupLogger) *Manager {
	return &Manager{entries: make(map[string]*entry), onCleanupErr: onCleanupErr}
}

// WithSecretResolver sets the resolver Register uses to resolve
// secretref: references in SecretResolvable Initialize inputs. It
// returns m for chaining at construction time.
func (m *Manager) WithSecretResolver(resolver *secret.Resolver) *Manager {
	m.resolver = resolver
	return m
}

// Register initializes a credential under tag using kind.Initialize(input)
// and stores it behind a new Handle.
func (m *Manager) Register(ctx context.Context, tag string, kind Kind, policy RotationPolicy, input any) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[tag]; exists {
		return nil, ErrAlreadyRegistered
	}

	if m.resolver != nil {
		if resolvable, ok := input.(SecretResolvable); ok {
			resolved, err := resolvable.ResolveSecrets(ctx, m.resolver)
			if err != nil {
				return nil, fmt.Errorf("credential: resolve secrets for %q: %w", tag, err)
			}
			input = resolved
		}
	}

	state, err := kind.Initialize(ctx, input)
	if err != nil {
		return nil, err
	}

	e := &entry{kind: kind, policy: policy.withDefaults(), handle: newHandle(state)}
	m.entries[tag] = e
	return e.handle, nil
}

// Handle returns the registered credential's shared handle.
func (m *Manager) Handle(tag string) (*Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[tag]
	if !ok {
		return nil, ErrNotFound
	}
	return e.handle, nil
}

// LastRotation returns the most recently completed rotation Record for
// tag; a rotation still in flight is not reflected until it reaches a
// terminal phase.
func (m *Manager) LastRotation(tag string) (Record, error) {
	m.mu.RLock()
	e, ok := m.entries[tag]
	m.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last, nil
}

// Rotate drives the Draft → Validating → Committed/RolledBack/Failed
// state machine for tag. At most one rotation per credential may be
// in flight; a concurrent call returns ErrRotationInFlight.
func (m *Manager) Rotate(ctx context.Context, tag string) (Record, error) {
	m.mu.RLock()
	e, ok := m.entries[tag]
	m.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}

	rotator, ok := e.kind.(Rotator)
	if !ok {
		return Record{}, ErrNotRotatable
	}

	e.mu.Lock()
	if e.rotating {
		e.mu.Unlock()
		return Record{}, ErrRotationInFlight
	}
	e.rotating = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.rotating = false
		e.mu.Unlock()
	}()

	rec := Record{Old: e.handle.Current(), Phase: PhaseDraft, StartedAt: time.Now()}

	// Draft: mint new-state.
	newState, err := rotator.Rotate(ctx, rec.Old)
	if err != nil {
		rec.Phase = PhaseFailed
		rec.FailureError = err
		rec.FinishedAt = time.Now()
		m.finish(e, rec)
		return rec, err
	}
	rec.New = newState
	rec.Phase = PhaseValidating

	// Validating: probe under the rotation policy's retry budget.
	if err := m.validate(ctx, e, &rec); err != nil {
		if e.policy.AutoRollback {
			rec.Phase = PhaseRolledBack
		} else {
			rec.Phase = PhaseFailed
		}
		rec.FailureError = err
		rec.FinishedAt = time.Now()
		m.finish(e, rec)
		return rec, err
	}

	// Committed: atomic swap, then best-effort cleanup of old-state.
	e.handle.swap(rec.New)
	rec.Phase = PhaseCommitted
	rec.FinishedAt = time.Now()
	m.finish(e, rec)

	go func() {
		if err := rotator.CleanupOld(context.Background(), rec.Old); err != nil && m.onCleanupErr != nil {
			m.onCleanupErr(tag, err)
		}
	}()

	return rec, nil
}

func (m *Manager) validate(ctx context.Context, e *entry, rec *Record) error {
	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  e.policy.MaxRetries + 1,
		InitialDelay: e.policy.RetryInitial,
		Multiplier:   e.policy.RetryMultiplier,
		Strategy:     resilience.BackoffExponential,
		Jitter:       true,
		RetryIf: func(err error) bool {
			class := ClassifyFailure(err)
			rec.LastFailure = class
			return class.transient()
		},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			rec.Attempts = attempt
		},
	})

	return retry.Execute(ctx, func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, e.policy.ProbeTimeout)
		defer cancel()
		rec.Attempts++
		return e.kind.Validate(probeCtx, rec.New)
	})
}

func (m *Manager) finish(e *entry, rec Record) {
	e.mu.Lock()
	e.last = rec
	e.mu.Unlock()
}
