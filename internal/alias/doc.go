// Package alias proposes replacement text for detected entities.
//
// The one hard guarantee is consistency: within a session, identical
// original text always maps to the same alias. The alias map enforcing
// this is owned by the caller's store; this package only reads it before
// generating and writes the new assignment back.
//
// Design decision: Generic-style numbering state lives in an explicit
// Counters value passed in by the caller rather than package globals.
// Concurrent sessions each carry their own counters and can never
// cross-contaminate numbering.
package alias
