package graph

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// matchLookupConcurrency bounds parallel per-candidate lookups. The
// lookups are pure reads and independent, so they parallelize safely.
const matchLookupConcurrency = 8

// Candidate is one freshly detected entity to match against the graph.
type Candidate struct {
	// Text is the detected span text.
	Text string

	// Type is the detected entity type.
	Type model.EntityType
}

// docFetch memoizes one document's record and occurrence list for the
// duration of a FindMatches call. Several candidates often trace back to
// the same prior document; fetching it once per call avoids redundant
// round-trips.
type docFetch struct {
	once        sync.Once
	doc         model.DocumentRecord
	occurrences []model.EntityOccurrence
	err         error
}

// fetchCache is the request-scoped document fetch deduplicator.
type fetchCache struct {
	mu      sync.Mutex
	store   Store
	fetches map[string]*docFetch
}

func newFetchCache(store Store) *fetchCache {
	return &fetchCache{store: store, fetches: make(map[string]*docFetch)}
}

// get fetches a document and its occurrences exactly once per call.
func (c *fetchCache) get(ctx context.Context, documentID string) (model.DocumentRecord, []model.EntityOccurrence, error) {
	c.mu.Lock()
	f, ok := c.fetches[documentID]
	if !ok {
		f = &docFetch{}
		c.fetches[documentID] = f
	}
	c.mu.Unlock()

	f.once.Do(func() {
		f.doc, f.err = c.store.GetDocument(ctx, documentID)
		if f.err != nil {
			return
		}
		f.occurrences, f.err = c.store.GetDocumentOccurrences(ctx, documentID)
	})

	return f.doc, f.occurrences, f.err
}

// FindMatches proposes identity matches for the detected candidates.
// Candidates are looked up in parallel; matches come back in candidate
// order with unmatched candidates omitted. Nothing is modified: every
// match is a proposal for a human to confirm.
//
// Tiering: exact when the canonical forms match and at least one
// co-occurring entity from the prior document also appears among the
// candidates; likely when canonical forms match without co-entity
// overlap; possible when only a type-mismatched canonical match exists.
func FindMatches(ctx context.Context, store Store, candidates []Candidate) ([]model.EntityMatch, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	// Canonical forms of the whole detection set, for co-entity overlap.
	detectedSet := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		detectedSet[Canonicalize(c.Text)] = struct{}{}
	}

	cache := newFetchCache(store)
	matches := make([]*model.EntityMatch, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(matchLookupConcurrency)

	for i, candidate := range candidates {
		g.Go(func() error {
			m, err := matchOne(gctx, store, cache, candidate, detectedSet)
			if err != nil {
				return err
			}
			matches[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.EntityMatch, 0, len(candidates))
	for _, m := range matches {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out, nil
}

// matchOne resolves a single candidate. A nil match means no proposal.
func matchOne(ctx context.Context, store Store, cache *fetchCache, candidate Candidate, detectedSet map[string]struct{}) (*model.EntityMatch, error) {
	canonical := Canonicalize(candidate.Text)

	known, err := store.FindByCanonical(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if len(known) == 0 {
		return nil, nil
	}

	best, sameType := preferSameType(known, candidate.Type)
	if !sameType {
		// Canonical collision across types ("Valence" the city vs the
		// surname): weakest proposal, no occurrence context.
		return &model.EntityMatch{
			Known:      best,
			Confidence: model.MatchPossible,
		}, nil
	}

	occurrences, err := store.GetOccurrences(ctx, best.ID)
	if err != nil {
		return nil, err
	}
	if len(occurrences) == 0 {
		return &model.EntityMatch{Known: best, Confidence: model.MatchLikely}, nil
	}
	latest := occurrences[0]

	doc, docOccurrences, err := cache.get(ctx, latest.DocumentID)
	if errors.Is(err, ErrNotFound) {
		// A document referenced by an occurrence no longer exists.
		// Inconsistent, but not an error: treat as no match.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	confidence := model.MatchLikely
	coEntities := make([]string, 0, len(docOccurrences))
	for _, occ := range docOccurrences {
		if occ.EntityID == best.ID {
			continue
		}
		coCanonical := Canonicalize(occ.OriginalText)
		coEntities = append(coEntities, coCanonical)
		if _, reappears := detectedSet[coCanonical]; reappears {
			confidence = model.MatchExact
		}
	}

	return &model.EntityMatch{
		Known:            best,
		Confidence:       confidence,
		PreviousAlias:    latest.Alias,
		PreviousDocument: doc,
		CoEntities:       coEntities,
	}, nil
}

// preferSameType picks the most-recently-seen entity of the candidate's
// type, falling back to the most recent of any type.
func preferSameType(known []model.KnownEntity, t model.EntityType) (model.KnownEntity, bool) {
	var best model.KnownEntity
	var bestSame model.KnownEntity
	foundSame := false

	for _, k := range known {
		if k.LastSeen.After(best.LastSeen) || best.ID == "" {
			best = k
		}
		if k.Type == t && (k.LastSeen.After(bestSame.LastSeen) || !foundSame) {
			bestSame = k
			foundSame = true
		}
	}

	if foundSame {
		return bestSame, true
	}
	return best, false
}
