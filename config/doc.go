// Package config implements the two ambient configuration concerns
// shared by the rest of Nebula: layered parameter merging (workflow
// defaults, overridden by node overrides, overridden by runtime
// inputs) and layered policy loading (env, file, compiled-in defaults)
// for things like resource pool sizing and auto-scaler watermarks.
package config
