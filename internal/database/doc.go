// Package database provides SQLite-backed persistence for session alias
// maps, the remote classification cache, and the entity graph, plus an
// in-memory store for tests and ephemeral runs.
//
// One database file holds all tables. The DB satisfies both the pipeline
// store port and the graph store port so a single Open call wires the
// whole application.
package database
