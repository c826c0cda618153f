package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// RecordDocument persists a processed document and its confirmed
// entities into the graph. For each entity it either updates the
// existing known entity of the same canonical form and type or creates
// a new one, then appends an occurrence carrying the exact original
// text and the alias used.
//
// DocumentCount is recomputed from the distinct document IDs of the
// entity's stored occurrences after the new occurrence lands, never
// incremented blindly, so re-recording the same document converges
// instead of drifting.
func RecordDocument(ctx context.Context, store Store, documentID, label, text string, entities []model.Entity) error {
	now := time.Now().UTC()

	doc := model.DocumentRecord{
		ID:          documentID,
		Label:       label,
		ProcessedAt: now,
		EntityCount: len(entities),
		Fingerprint: Fingerprint(text),
	}
	if err := store.PutDocument(ctx, doc); err != nil {
		return fmt.Errorf("record document %s: %w", documentID, err)
	}

	for _, e := range entities {
		if err := recordEntity(ctx, store, documentID, now, e); err != nil {
			return err
		}
	}
	return nil
}

// recordEntity upserts one known entity and appends its occurrence.
func recordEntity(ctx context.Context, store Store, documentID string, now time.Time, e model.Entity) error {
	canonical := Canonicalize(e.Text)

	existing, err := store.FindByCanonical(ctx, canonical)
	if err != nil {
		return fmt.Errorf("lookup entity %q: %w", canonical, err)
	}

	known, found := sameTypeEntity(existing, e.Type)
	if !found {
		known = model.KnownEntity{
			ID:        NewID("ent"),
			Canonical: canonical,
			Type:      e.Type,
			FirstSeen: now,
		}
	}
	known.LastSeen = now

	if err := store.AddOccurrence(ctx, model.EntityOccurrence{
		EntityID:     known.ID,
		DocumentID:   documentID,
		OriginalText: e.Text,
		Alias:        e.Alias(),
		Confirmed:    true,
	}); err != nil {
		return fmt.Errorf("record occurrence of %q: %w", canonical, err)
	}

	occurrences, err := store.GetOccurrences(ctx, known.ID)
	if err != nil {
		return fmt.Errorf("count documents of %q: %w", canonical, err)
	}
	known.DocumentCount = distinctDocuments(occurrences)

	if err := store.PutEntity(ctx, known); err != nil {
		return fmt.Errorf("store entity %q: %w", canonical, err)
	}
	return nil
}

// sameTypeEntity picks the entity matching the detected type, if any.
// A canonical form shared across types ("Valence" the city vs the
// surname) stays two separate known entities.
func sameTypeEntity(known []model.KnownEntity, t model.EntityType) (model.KnownEntity, bool) {
	for _, k := range known {
		if k.Type == t {
			return k, true
		}
	}
	return model.KnownEntity{}, false
}

func distinctDocuments(occurrences []model.EntityOccurrence) int {
	seen := make(map[string]struct{}, len(occurrences))
	for _, o := range occurrences {
		seen[o.DocumentID] = struct{}{}
	}
	return len(seen)
}
