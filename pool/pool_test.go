package pool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeConn struct{ id int }

func newCountingFactory() (Factory[*fakeConn], *atomic.Int32) {
	var counter atomic.Int32
	factory := func(ctx context.Context) (*fakeConn, error) {
		id := counter.Add(1)
		return &fakeConn{id: int(id)}, nil
	}
	return factory, &counter
}

func TestAcquireReleaseReusesIdleInstance(t *testing.T) {
	factory, counter := newCountingFactory()
	p := New[*fakeConn](factory, nil, Config{MaxSize: 2})
	defer p.Close()

	h1, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	first := h1.Value()
	if err := h1.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	// Give the reclaimer goroutine a chance to push the instance to idle.
	waitForIdle(t, p, 1)

	h2, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if h2.Value() != first {
		t.Fatalf("expected the same instance to be reused from idle")
	}
	if counter.Load() != 1 {
		t.Fatalf("expected exactly one instance created, got %d", counter.Load())
	}
	h2.Release()
}

func TestAcquireBlocksAtMaxSize(t *testing.T) {
	factory, _ := newCountingFactory()
	p := New[*fakeConn](factory, nil, Config{MaxSize: 1, AcquireTimeout: 50 * time.Millisecond})
	defer p.Close()

	h1, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	_, err = p.Acquire(context.Background())
	if err != ErrAcquireTimeout {
		t.Fatalf("expected ErrAcquireTimeout while pool at capacity, got %v", err)
	}

	h1.Release()
}

func TestDiscardDestroysAndFreesPermit(t *testing.T) {
	factory, counter := newCountingFactory()
	var destroyed atomic.Int32
	destroy := func(c *fakeConn) { destroyed.Add(1) }

	p := New[*fakeConn](factory, destroy, Config{MaxSize: 1})
	defer p.Close()

	h1, _ := p.Acquire(context.Background())
	if err := h1.Discard(); err != nil {
		t.Fatalf("Discard: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for destroyed.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if destroyed.Load() != 1 {
		t.Fatalf("expected discarded instance to be destroyed")
	}

	// The freed permit should allow a new Acquire to create a fresh instance.
	h2, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire after discard: %v", err)
	}
	if counter.Load() != 2 {
		t.Fatalf("expected a second instance created after discard, got %d", counter.Load())
	}
	h2.Release()
}

func TestDoubleReleaseErrors(t *testing.T) {
	factory, _ := newCountingFactory()
	p := New[*fakeConn](factory, nil, Config{MaxSize: 1})
	defer p.Close()

	h, _ := p.Acquire(context.Background())
	if err := h.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := h.Release(); err != ErrAlreadyReleased {
		t.Fatalf("expected ErrAlreadyReleased on double release, got %v", err)
	}
}

func TestAcquireAfterCloseErrors(t *testing.T) {
	factory, _ := newCountingFactory()
	p := New[*fakeConn](factory, nil, Config{MaxSize: 1})
	p.Close()

	if _, err := p.Acquire(context.Background()); err != ErrPoolClosed {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func waitForIdle(t *testing.T, p *Pool[*fakeConn], n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if p.Metrics().Idle >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d idle instances", n)
}
