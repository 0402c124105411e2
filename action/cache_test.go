package action

import (
	"context"
	"testing"
	"time"

	"github.com/vanyastaff/nebula/cache"
)

func TestResultCacheGetSetRoundTrip(t *testing.T) {
	rc := NewResultCache(cache.NewMemoryCache(cache.Policy{}), nil, time.Minute)
	ctx := context.Background()

	if _, ok := rc.Get(ctx, "http_request", map[string]any{"url": "x"}); ok {
		t.Fatal("expected miss before Set")
	}
	rc.Set(ctx, "http_request", map[string]any{"url": "x"}, map[string]any{"status": float64(200)})

	out, ok := rc.Get(ctx, "http_request", map[string]any{"url": "x"})
	if !ok {
		t.Fatal("expected hit after Set")
	}
	got := out.(map[string]any)
	if got["status"] != float64(200) {
		t.Fatalf("unexpected cached value: %#v", got)
	}
}

func TestResultCacheNilIsSafeNoop(t *testing.T) {
	var rc *ResultCache
	ctx := context.Background()
	if _, ok := rc.Get(ctx, "n", "in"); ok {
		t.Fatal("nil ResultCache must always miss")
	}
	rc.Set(ctx, "n", "in", "out") // must not panic
}

func TestRuntimeInvokeCachedSkipsHandlerOnHit(t *testing.T) {
	r := NewRuntime(nil)
	rc := NewResultCache(cache.NewMemoryCache(cache.Policy{}), nil, time.Minute)
	meta := Metadata{NodeType: "idempotent"}

	actx := newTestContext()
	actx.Input = "same-input"
	calls := 0
	handler := func(ctx context.Context, actx *Context) (any, error) {
		calls++
		return "computed", nil
	}

	out1, err := r.InvokeCached(context.Background(), meta, actx, rc, handler)
	if err != nil {
		t.Fatalf("first InvokeCached: %v", err)
	}

	actx2 := newTestContext()
	actx2.Input = "same-input"
	out2, err := r.InvokeCached(context.Background(), meta, actx2, rc, handler)
	if err != nil {
		t.Fatalf("second InvokeCached: %v", err)
	}

	if calls != 1 {
		t.Fatalf("handler called %d times, want 1 (second call should hit cache)", calls)
	}
	if out1 != out2 {
		t.Fatalf("out1=%v out2=%v, want equal", out1, out2)
	}
}
