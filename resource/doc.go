// Package resource implements the typed resource registry described in
// spec §4.3/§4.4: a dependency-ordered set of pools, scope-aware
// acquisition, tenant isolation, and watermark-based auto-scaling.
package resource
