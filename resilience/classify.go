package resilience

import (
	"context"
	"errors"
	"strings"
)

// temporary is satisfied by errors (notably some net package errors)
// that can self-report transience.
type temporary interface {
	Temporary() bool
}

// transientMarkers is the default substring heuristic used by
// IsTransient when an error carries no structured classification.
// Order does not matter; matching is case-insensitive.
var transientMarkers = []string{
	"timeout",
	"timed out",
	"connection reset",
	"connection refused",
	"i/o timeout",
	"eof",
	"temporary failure",
	"broken pipe",
	"no such host",
}

// IsTransient is the default RetryConfig.RetryIf classifier: it
// reports true for context deadline/cancellation, for errors
// implementing `interface{ Temporary() bool }`, and for errors whose
// message contains one of a fixed set of common transient-failure
// substrings. Callers with a more precise classification (e.g. an HTTP
// status code or a database driver's own error codes) should supply
// their own RetryIf instead of relying on this heuristic.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var t temporary
	if errors.As(err, &t) {
		return t.Temporary()
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
