package model

import "time"

// KnownEntity is an entity canonicalized across documents. Canonical is
// the trimmed, upper-cased, whitespace-collapsed form of the entity text
// and serves as the join key for cross-document identity.
type KnownEntity struct {
	// ID is a sortable, collision-resistant identifier
	// (kind prefix + time component + random suffix).
	ID string `json:"id"`

	// Canonical is the normalized entity text.
	Canonical string `json:"canonical"`

	// Type is the entity type recorded at first sight.
	Type EntityType `json:"type"`

	// FirstSeen is when the entity was first recorded.
	FirstSeen time.Time `json:"first_seen"`

	// LastSeen is when the entity was most recently recorded.
	LastSeen time.Time `json:"last_seen"`

	// DocumentCount is the number of distinct documents the entity
	// appears in. It is recomputed from stored occurrences on every
	// update, never blindly incremented, so concurrent writers converge.
	DocumentCount int `json:"document_count"`
}

// EntityOccurrence records one appearance of a known entity in one document.
type EntityOccurrence struct {
	// EntityID references the KnownEntity.
	EntityID string `json:"entity_id"`

	// DocumentID references the DocumentRecord.
	DocumentID string `json:"document_id"`

	// OriginalText is the exact text as it appeared in the document
	// (canonicalization may have folded case or whitespace).
	OriginalText string `json:"original_text"`

	// Alias is the replacement used for this occurrence.
	Alias string `json:"alias"`

	// Confirmed is true once a human reviewer accepted the detection.
	Confirmed bool `json:"confirmed"`
}

// DocumentRecord describes one processed document.
type DocumentRecord struct {
	// ID is the caller-assigned document identifier.
	ID string `json:"id"`

	// Label is a human-readable document name.
	Label string `json:"label"`

	// ProcessedAt is when the document was recorded.
	ProcessedAt time.Time `json:"processed_at"`

	// EntityCount is the number of entities recorded for the document.
	EntityCount int `json:"entity_count"`

	// Fingerprint is a content hash of a bounded prefix of the document
	// text, used for exact-document deduplication only, never for
	// entity matching.
	Fingerprint string `json:"fingerprint"`
}

// MatchConfidence tiers a proposed cross-document identity match.
type MatchConfidence int

// Match confidence tiers.
const (
	// MatchPossible means only a type-mismatched canonical match exists.
	MatchPossible MatchConfidence = iota

	// MatchLikely means canonical forms match but no co-occurring entity
	// from the prior document reappears.
	MatchLikely

	// MatchExact means canonical forms match and at least one co-entity
	// from the prior document also appears in the current detection set.
	MatchExact
)

// String returns the tier name.
func (m MatchConfidence) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchLikely:
		return "likely"
	default:
		return "possible"
	}
}

// EntityMatch proposes that a newly detected entity is a previously seen
// one. It is a proposal only: a human must confirm it before any alias
// is reused across documents.
type EntityMatch struct {
	// Known is the previously recorded entity.
	Known KnownEntity `json:"known_entity"`

	// Confidence tiers the match.
	Confidence MatchConfidence `json:"match_confidence"`

	// PreviousAlias is the alias used in the most recent prior occurrence.
	PreviousAlias string `json:"previous_alias"`

	// PreviousDocument is the document of that occurrence.
	PreviousDocument DocumentRecord `json:"previous_document"`

	// CoEntities lists canonical forms of other entities from the prior
	// document, for reviewer context.
	CoEntities []string `json:"co_entities"`
}
