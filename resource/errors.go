package resource

import "errors"

var (
	// ErrAlreadyRegistered is returned when Register is called twice
	// with the same type-tag.
	ErrAlreadyRegistered = errors.New("resource: already registered")

	// ErrNotRegistered is returned when an operation references a
	// type-tag that has no registered descriptor.
	ErrNotRegistered = errors.New("resource: not registered")

	// ErrCycle is returned by Register when adding the dependency edges
	// for a new descriptor would introduce a cycle in the dependency
	// DAG.
	ErrCycle = errors.New("resource: dependency cycle detected")

	// ErrMissingDependency is returned when a descriptor declares a
	// dependency on a type-tag that is not (yet) registered.
	ErrMissingDependency = errors.New("resource: missing dependency")

	// ErrNoMatchingPool is returned by Acquire when no registered pool's
	// scope satisfies the request scope under the configured strategy.
	ErrNoMatchingPool = errors.New("resource: no pool matches the requested scope")

	// ErrInvalidConfig is returned by Register when a descriptor's
	// config fails its own validation hook.
	ErrInvalidConfig = errors.New("resource: invalid config")
)
