package credential

import (
	"context"
	"errors"
	"testing"

	"github.com/vanyastaff/nebula/secret"
)

type fakeRotatableKind struct {
	validateErr func(attempt int) error
	attempt     int
}

func (fakeRotatableKind) Name() string { return "fake" }

func (fakeRotatableKind) Initialize(_ context.Context, input any) (State, error) {
	return State{Kind: "fake", Payload: input, Version: 1}, nil
}

func (k *fakeRotatableKind) Validate(_ context.Context, _ State) error {
	k.attempt++
	if k.validateErr == nil {
		return nil
	}
	return k.validateErr(k.attempt)
}

func (fakeRotatableKind) Rotate(_ context.Context, old State) (State, error) {
	return State{Kind: "fake", Payload: "new", Version: old.Version + 1}, nil
}

func (fakeRotatableKind) CleanupOld(_ context.Context, _ State) error { return nil }

func TestManagerRotateCommitsOnSuccessfulValidation(t *testing.T) {
	m := NewManager(nil)
	kind := &fakeRotatableKind{}
	handle, err := m.Register(context.Background(), "svc", kind, RotationPolicy{}, "initial")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	rec, err := m.Rotate(context.Background(), "svc")
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if rec.Phase != PhaseCommitted {
		t.Fatalf("phase = %v, want Committed", rec.Phase)
	}
	if handle.Current().Payload != "new" {
		t.Fatalf("handle not swapped: %#v", handle.Current())
	}
}

func TestManagerRotateRollsBackOnPermanentFailure(t *testing.T) {
	m := NewManager(nil)
	kind := &fakeRotatableKind{validateErr: func(int) error { return errAuthFailure{} }}
	_, err := m.Register(context.Background(), "svc", kind, RotationPolicy{AutoRollback: true, MaxRetries: 2}, "initial")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	rec, err := m.Rotate(context.Background(), "svc")
	if err == nil {
		t.Fatal("expected Rotate to return an error on rollback")
	}
	if rec.Phase != PhaseRolledBack {
		t.Fatalf("phase = %v, want RolledBack", rec.Phase)
	}
}

func TestManagerRotateRejectsConcurrentRotation(t *testing.T) {
	m := NewManager(nil)
	kind := &fakeRotatableKind{}
	_, err := m.Register(context.Background(), "svc", kind, RotationPolicy{}, "initial")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	m.mu.RLock()
	entry := m.entries["svc"]
	m.mu.RUnlock()
	entry.mu.Lock()
	entry.rotating = true
	entry.mu.Unlock()

	if _, err := m.Rotate(context.Background(), "svc"); err != ErrRotationInFlight {
		t.Fatalf("expected ErrRotationInFlight, got %v", err)
	}
}

func TestManagerRotateRejectsNonRotatableKind(t *testing.T) {
	m := NewManager(nil)
	kind := BearerTokenKind{}
	_, err := m.Register(context.Background(), "svc", kind, RotationPolicy{}, BearerTokenInput{Token: "abc"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := m.Rotate(context.Background(), "svc"); err != ErrNotRotatable {
		t.Fatalf("expected ErrNotRotatable, got %v", err)
	}
}

type errAuthFailure struct{}

func (errAuthFailure) Error() string             { return "authentication failed" }
func (errAuthFailure) FailureClass() FailureClass { return FailureAuthenticationError }

func TestClassifyFailureDefaultsToUnknown(t *testing.T) {
	if got := ClassifyFailure(errors.New("boom")); got != FailureUnknown {
		t.Fatalf("ClassifyFailure = %v, want Unknown", got)
	}
}

type fakeSecretProvider struct {
	values map[string]string
}

func (p fakeSecretProvider) Name() string { return "vault" }

func (p fakeSecretProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := p.values[ref]
	if !ok {
		return "", errors.New("no such secret: " + ref)
	}
	return v, nil
}

func (fakeSecretProvider) Close() error { return nil }

func TestManagerRegisterResolvesSecretrefBeforeInitialize(t *testing.T) {
	resolver := secret.NewResolver(true, fakeSecretProvider{values: map[string]string{"api-token": "real-token"}})
	m := NewManager(nil).WithSecretResolver(resolver)

	handle, err := m.Register(context.Background(), "svc", BearerTokenKind{}, RotationPolicy{}, BearerTokenInput{Token: "secretref:vault:api-token"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if handle.Current().Payload != "real-token" {
		t.Fatalf("payload = %#v, want resolved token", handle.Current().Payload)
	}
}

func TestManagerRegisterFailsOnUnresolvableSecretref(t *testing.T) {
	resolver := secret.NewResolver(true, fakeSecretProvider{values: map[string]string{}})
	m := NewManager(nil).WithSecretResolver(resolver)

	_, err := m.Register(context.Background(), "svc", BearerTokenKind{}, RotationPolicy{}, BearerTokenInput{Token: "secretref:vault:missing"})
	if err == nil {
		t.Fatal("expected error for unresolvable secretref")
	}
}

func TestManagerRegisterWithoutResolverLeavesInputUntouched(t *testing.T) {
	m := NewManager(nil)
	handle, err := m.Register(context.Background(), "svc", BearerTokenKind{}, RotationPolicy{}, BearerTokenInput{Token: "secretref:vault:api-token"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if handle.Current().Payload != "secretref:vault:api-token" {
		t.Fatalf("payload = %#v, want untouched (no resolver configured)", handle.Current().Payload)
	}
}
