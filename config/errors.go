package config

import "errors"

// ErrInvalidPolicy is returned by Loader.Load when a loaded value fails
// its validation hook.
var ErrInvalidPolicy = errors.New("config: invalid policy")
