// Package graph tracks entity identity across documents over time.
//
// A persistent store behind the Store port holds three tables: known
// entities (canonicalized), per-document occurrences, and document
// records. Two pure algorithms sit on top: FindMatches proposes identity
// matches for freshly detected entities, and RecordDocument upserts
// confirmed detections.
//
// The single join key everywhere is the canonical form of the entity
// text: trimmed, upper-cased, internal whitespace collapsed. Matching is
// always a proposal with a confidence tier; nothing is rewritten
// automatically, a human confirms.
package graph
