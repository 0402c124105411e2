package action

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vanyastaff/nebula/cache"
)

// ResultCache memoizes a node's output for a given input, for nodes
// explicitly declared idempotent. It is optional: a nil *ResultCache
// behaves as if caching were disabled, so Runtime.Invoke never needs a
// conditional caller-side check.
//
// Unlike cache.CacheMiddleware, ResultCache has no notion of "unsafe
// tags" skip rules — idempotency here is a per-node declaration
// (Metadata carries no side-effect flag to infer it from), so the
// caller decides once at registration time whether a node's results
// may be cached at all.
type ResultCache struct {
	backend cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
}

// NewResultCache builds a ResultCache backed by backend (typically
// cache.NewMemoryCache, but any cache.Cache implementation works), using
// keyer to derive keys from (nodeType, input). ttl<=0 disables storage
// of new entries while still serving any already-cached ones.
func NewResultCache(backend cache.Cache, keyer cache.Keyer, ttl time.Duration) *ResultCache {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &ResultCache{backend: backend, keyer: keyer, ttl: ttl}
}

// Get returns a previously cached output for (nodeType, input), if any.
func (c *ResultCache) Get(ctx context.Context, nodeType string, input any) (any, bool) {
	if c == nil || c.backend == nil {
		return nil, false
	}
	key, err := c.keyer.Key(nodeType, input)
	if err != nil {
		return nil, false
	}
	raw, ok := c.backend.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var output any
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, false
	}
	return output, true
}

// Set stores output for (nodeType, input). Marshal or backend failures
// are swallowed: a failed cache write must never fail the node whose
// result it was trying to memoize.
func (c *ResultCache) Set(ctx context.Context, nodeType string, input, output any) {
	if c == nil || c.backend == nil || c.ttl <= 0 {
		return
	}
	key, err := c.keyer.Key(nodeType, input)
	if err != nil {
		return
	}
	raw, err := json.Marshal(output)
	if err != nil {
		return
	}
	_ = c.backend.Set(ctx, key, raw, c.ttl)
}

// InvokeCached wraps Runtime.Invoke with a ResultCache lookup: a hit
// skips the handler entirely (and emits no NodeStarted/NodeCompleted
// telemetry, since nothing executed); a miss runs the handler normally
// and stores its output on success.
func (r *Runtime) InvokeCached(ctx context.Context, meta Metadata, actx *Context, rc *ResultCache, handler Handler) (any, error) {
	if rc != nil {
		if output, ok := rc.Get(ctx, meta.NodeType, actx.Input); ok {
			return output, nil
		}
	}

	output, err := r.Invoke(ctx, meta, actx, handler)
	if err == nil {
		rc.Set(ctx, meta.NodeType, actx.Input, output)
	}
	return output, err
}
