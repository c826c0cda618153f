package graph

import (
	"context"
	"errors"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// ErrNotFound is returned by point lookups when no record exists.
var ErrNotFound = errors.New("record not found")

// Store is the persistence port for the entity graph. Any backing engine
// works as long as it supports these access patterns: lookup by
// canonical text, by type, by canonical prefix, by document, and by
// fingerprint.
type Store interface {
	// FindByCanonical returns all known entities with the given
	// canonical form, any type.
	FindByCanonical(ctx context.Context, canonical string) ([]model.KnownEntity, error)

	// FindByType returns all known entities of a type.
	FindByType(ctx context.Context, t model.EntityType) ([]model.KnownEntity, error)

	// Search returns known entities whose canonical form starts with
	// the prefix, up to limit.
	Search(ctx context.Context, canonicalPrefix string, limit int) ([]model.KnownEntity, error)

	// PutEntity inserts or replaces a known entity by ID.
	PutEntity(ctx context.Context, e model.KnownEntity) error

	// GetEntity returns the entity with the given ID, or ErrNotFound.
	GetEntity(ctx context.Context, id string) (model.KnownEntity, error)

	// AddOccurrence appends an occurrence row.
	AddOccurrence(ctx context.Context, o model.EntityOccurrence) error

	// GetOccurrences returns all occurrences of an entity, newest first.
	GetOccurrences(ctx context.Context, entityID string) ([]model.EntityOccurrence, error)

	// GetDocumentOccurrences returns all occurrences within a document.
	GetDocumentOccurrences(ctx context.Context, documentID string) ([]model.EntityOccurrence, error)

	// ConfirmOccurrence marks an entity's occurrence in a document as
	// human-confirmed.
	ConfirmOccurrence(ctx context.Context, entityID, documentID string) error

	// PutDocument inserts or replaces a document record by ID.
	PutDocument(ctx context.Context, d model.DocumentRecord) error

	// GetDocument returns the document with the given ID, or ErrNotFound.
	GetDocument(ctx context.Context, id string) (model.DocumentRecord, error)

	// FindByFingerprint returns documents with the given content
	// fingerprint (exact-duplicate detection).
	FindByFingerprint(ctx context.Context, fingerprint string) ([]model.DocumentRecord, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]model.DocumentRecord, error)

	// EntityCount returns the number of known entities.
	EntityCount(ctx context.Context) (int, error)

	// DocumentCount returns the number of documents.
	DocumentCount(ctx context.Context) (int, error)
}
