package credential

import "errors"

var (
	// ErrNotFound is returned when a credential tag has no registered
	// entry.
	ErrNotFound = errors.New("credential: not found")

	// ErrAlreadyRegistered is returned when Register is called twice
	// with the same tag.
	ErrAlreadyRegistered = errors.New("credential: already registered")

	// ErrRotationInFlight is returned when Rotate is called while a
	// previous rotation for the same credential has not reached a
	// terminal phase.
	ErrRotationInFlight = errors.New("credential: rotation already in flight")

	// ErrNotRotatable is returned when Rotate is called against a kind
	// that does not implement Rotator.
	ErrNotRotatable = errors.New("credential: kind does not support rotation")

	// ErrValidationFailed is returned when the Validating phase's probe
	// does not succeed within its retry budget.
	ErrValidationFailed = errors.New("credential: validation failed")
)
