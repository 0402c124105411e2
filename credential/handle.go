package credential

import "sync/atomic"

// Handle is an opaque, shared reference to a credential's currently
// committed State. Readers call Current at any time and always observe
// either the pre-rotation or post-rotation state, never a torn value
// mid-swap (spec §4.5's atomic-swap guarantee).
type Handle struct {
	current atomic.Pointer[State]
}

func newHandle(initial State) *Handle {
	h := &Handle{}
	h.current.Store(&initial)
	return h
}

// Current returns the credential's currently committed state.
func (h *Handle) Current() State {
	return *h.current.Load()
}

// swap atomically replaces the committed state and returns the value
// it replaced.
func (h *Handle) swap(next State) State {
	prev := h.current.Swap(&next)
	return *prev
}
