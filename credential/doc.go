// Package credential implements the rotation state machine and
// shared, atomically-swapped credential handles described in spec
// §4.5: Draft → Validating → Committed/RolledBack/Failed, with at
// most one rotation in flight per credential.
package credential
