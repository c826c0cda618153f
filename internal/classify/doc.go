// Package classify sends candidate terms to the remote dictionary
// classification service and returns per-term touchstone results.
//
// Privacy shapes every step: groups already resolved locally are never
// sent, remaining terms are mixed with synthetic decoys before leaving
// the device, and decoy responses are stripped by membership in the
// real-term set before anything is cached or returned.
//
// Failure handling is deliberately lopsided. Network errors, timeouts,
// and unexpected statuses are non-fatal: the affected batch is abandoned
// with a warning and the pipeline degrades to local-only signals. Cache
// errors, by contrast, propagate, because a broken persistence layer is
// not something this package can paper over.
package classify
