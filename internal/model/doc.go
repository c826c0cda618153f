// Package model defines the core data structures shared across the
// anonymization pipeline: tokens, detected groups, entities, remote
// classification records, and the cross-document entity graph records.
//
// Design decision: All pipeline stages exchange these types rather than
// package-private structs because:
// 1. Stages live in separate packages and need a common vocabulary
// 2. Callers (CLI, embedders) consume Entity and ProcessResult directly
// 3. Keeping the package dependency-free avoids import cycles between stages
package model
