package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hazyhaar/whiteout-ext/internal/graph"
	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// MemoryStore is an in-memory implementation of the pipeline and graph
// store ports. It backs tests and one-shot runs where nothing should
// touch disk; all methods are safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex

	aliases     map[string]map[string]string
	cache       map[string]cacheEntry
	entities    map[string]model.KnownEntity
	occurrences []model.EntityOccurrence
	documents   map[string]model.DocumentRecord
}

type cacheEntry struct {
	results   []model.TouchstoneResult
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		aliases:   make(map[string]map[string]string),
		cache:     make(map[string]cacheEntry),
		entities:  make(map[string]model.KnownEntity),
		documents: make(map[string]model.DocumentRecord),
	}
}

// GetAliasMap returns a copy of the session alias map, empty when the
// session was never seen.
func (m *MemoryStore) GetAliasMap(_ context.Context, sessionID string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.aliases[sessionID]))
	for original, alias := range m.aliases[sessionID] {
		out[original] = alias
	}
	return out, nil
}

// SetAliasMap stores a copy of the session alias map.
func (m *MemoryStore) SetAliasMap(_ context.Context, sessionID string, aliases map[string]string) error {
	stored := make(map[string]string, len(aliases))
	for original, alias := range aliases {
		stored[original] = alias
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases[sessionID] = stored
	return nil
}

// GetCachedClassification returns the cached results for a term,
// enforcing the TTL on read.
func (m *MemoryStore) GetCachedClassification(_ context.Context, term string) ([]model.TouchstoneResult, bool, error) {
	m.mu.RLock()
	entry, ok := m.cache[term]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.cache, term)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.results, true, nil
}

// SetCachedClassification stores results for a term with a TTL.
func (m *MemoryStore) SetCachedClassification(_ context.Context, term string, results []model.TouchstoneResult, ttl time.Duration) error {
	if results == nil {
		results = []model.TouchstoneResult{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[term] = cacheEntry{results: results, expiresAt: time.Now().Add(ttl)}
	return nil
}

// FindByCanonical returns all known entities with the given canonical
// form, most recently seen first.
func (m *MemoryStore) FindByCanonical(_ context.Context, canonical string) ([]model.KnownEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.KnownEntity
	for _, e := range m.entities {
		if e.Canonical == canonical {
			out = append(out, e)
		}
	}
	sortEntitiesByLastSeen(out)
	return out, nil
}

// FindByType returns all known entities of a type, most recently seen first.
func (m *MemoryStore) FindByType(_ context.Context, t model.EntityType) ([]model.KnownEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.KnownEntity
	for _, e := range m.entities {
		if e.Type == t {
			out = append(out, e)
		}
	}
	sortEntitiesByLastSeen(out)
	return out, nil
}

// Search returns known entities whose canonical form starts with the
// prefix, up to limit.
func (m *MemoryStore) Search(_ context.Context, canonicalPrefix string, limit int) ([]model.KnownEntity, error) {
	if limit <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.KnownEntity
	for _, e := range m.entities {
		if strings.HasPrefix(e.Canonical, canonicalPrefix) {
			out = append(out, e)
		}
	}
	sortEntitiesByLastSeen(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortEntitiesByLastSeen(entities []model.KnownEntity) {
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].LastSeen.Equal(entities[j].LastSeen) {
			return entities[i].ID < entities[j].ID
		}
		return entities[i].LastSeen.After(entities[j].LastSeen)
	})
}

// PutEntity inserts or replaces a known entity by ID.
func (m *MemoryStore) PutEntity(_ context.Context, e model.KnownEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[e.ID] = e
	return nil
}

// GetEntity returns the entity with the given ID.
func (m *MemoryStore) GetEntity(_ context.Context, id string) (model.KnownEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entities[id]
	if !ok {
		return model.KnownEntity{}, fmt.Errorf("entity %s: %w", id, graph.ErrNotFound)
	}
	return e, nil
}

// AddOccurrence appends an occurrence row.
func (m *MemoryStore) AddOccurrence(_ context.Context, o model.EntityOccurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.occurrences = append(m.occurrences, o)
	return nil
}

// GetOccurrences returns all occurrences of an entity, newest first.
func (m *MemoryStore) GetOccurrences(_ context.Context, entityID string) ([]model.EntityOccurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.EntityOccurrence
	for i := len(m.occurrences) - 1; i >= 0; i-- {
		if m.occurrences[i].EntityID == entityID {
			out = append(out, m.occurrences[i])
		}
	}
	return out, nil
}

// GetDocumentOccurrences returns all occurrences within a document, in
// insertion order.
func (m *MemoryStore) GetDocumentOccurrences(_ context.Context, documentID string) ([]model.EntityOccurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.EntityOccurrence
	for _, o := range m.occurrences {
		if o.DocumentID == documentID {
			out = append(out, o)
		}
	}
	return out, nil
}

// ConfirmOccurrence marks an entity's occurrence in a document as
// human-confirmed.
func (m *MemoryStore) ConfirmOccurrence(_ context.Context, entityID, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	confirmed := false
	for i := range m.occurrences {
		if m.occurrences[i].EntityID == entityID && m.occurrences[i].DocumentID == documentID {
			m.occurrences[i].Confirmed = true
			confirmed = true
		}
	}
	if !confirmed {
		return fmt.Errorf("occurrence of %s in %s: %w", entityID, documentID, graph.ErrNotFound)
	}
	return nil
}

// PutDocument inserts or replaces a document record by ID.
func (m *MemoryStore) PutDocument(_ context.Context, d model.DocumentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[d.ID] = d
	return nil
}

// GetDocument returns the document with the given ID.
func (m *MemoryStore) GetDocument(_ context.Context, id string) (model.DocumentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.documents[id]
	if !ok {
		return model.DocumentRecord{}, fmt.Errorf("document %s: %w", id, graph.ErrNotFound)
	}
	return d, nil
}

// FindByFingerprint returns documents with the given content fingerprint,
// newest first.
func (m *MemoryStore) FindByFingerprint(_ context.Context, fingerprint string) ([]model.DocumentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.DocumentRecord
	for _, d := range m.documents {
		if d.Fingerprint == fingerprint {
			out = append(out, d)
		}
	}
	sortDocumentsByProcessedAt(out)
	return out, nil
}

// ListDocuments returns all documents, newest first.
func (m *MemoryStore) ListDocuments(_ context.Context) ([]model.DocumentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.DocumentRecord, 0, len(m.documents))
	for _, d := range m.documents {
		out = append(out, d)
	}
	sortDocumentsByProcessedAt(out)
	return out, nil
}

func sortDocumentsByProcessedAt(docs []model.DocumentRecord) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].ProcessedAt.Equal(docs[j].ProcessedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].ProcessedAt.After(docs[j].ProcessedAt)
	})
}

// EntityCount returns the number of known entities.
func (m *MemoryStore) EntityCount(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities), nil
}

// DocumentCount returns the number of documents.
func (m *MemoryStore) DocumentCount(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents), nil
}
