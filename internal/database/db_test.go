package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/whiteout-ext/internal/graph"
	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, "whiteout.db")
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")

		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("expected error to contain %q, got %q", "database not found", err.Error())
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "existing-db")

		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if err := db1.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db2.Close()
	})
}

// TestAliasMap tests alias map persistence.
func TestAliasMap(t *testing.T) {
	t.Parallel()

	t.Run("unknown session yields empty map", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		aliases, err := db.GetAliasMap(context.Background(), "never-seen")
		if err != nil {
			t.Fatalf("failed to load alias map: %v", err)
		}
		if aliases == nil {
			t.Fatal("alias map should be non-nil")
		}
		if len(aliases) != 0 {
			t.Errorf("expected empty map, got %d entries", len(aliases))
		}
	})

	t.Run("round trip preserves assignments", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		want := map[string]string{
			"Jean Dupont": "Personne 1",
			"Lyon":        "Ville 1",
		}
		if err := db.SetAliasMap(ctx, "session-a", want); err != nil {
			t.Fatalf("failed to store alias map: %v", err)
		}

		got, err := db.GetAliasMap(ctx, "session-a")
		if err != nil {
			t.Fatalf("failed to load alias map: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(got))
		}
		for original, alias := range want {
			if got[original] != alias {
				t.Errorf("alias for %q = %q, want %q", original, got[original], alias)
			}
		}
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.SetAliasMap(ctx, "session-a", map[string]string{"Dupont": "Personne 1"}); err != nil {
			t.Fatalf("failed to store alias map: %v", err)
		}

		other, err := db.GetAliasMap(ctx, "session-b")
		if err != nil {
			t.Fatalf("failed to load alias map: %v", err)
		}
		if len(other) != 0 {
			t.Errorf("session-b should be empty, got %d entries", len(other))
		}
	})

	t.Run("rewrite replaces previous assignments", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.SetAliasMap(ctx, "session-a", map[string]string{"Dupont": "Personne 1", "Martin": "Personne 2"}); err != nil {
			t.Fatalf("failed to store alias map: %v", err)
		}
		if err := db.SetAliasMap(ctx, "session-a", map[string]string{"Dupont": "Personne 1"}); err != nil {
			t.Fatalf("failed to rewrite alias map: %v", err)
		}

		got, err := db.GetAliasMap(ctx, "session-a")
		if err != nil {
			t.Fatalf("failed to load alias map: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 entry after rewrite, got %d", len(got))
		}
	})
}

// TestClassificationCache tests cache storage and TTL enforcement.
func TestClassificationCache(t *testing.T) {
	t.Parallel()

	t.Run("miss on unknown term", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		_, ok, err := db.GetCachedClassification(context.Background(), "Dupont")
		if err != nil {
			t.Fatalf("failed to read cache: %v", err)
		}
		if ok {
			t.Error("expected cache miss for unknown term")
		}
	})

	t.Run("hit within TTL", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		results := []model.TouchstoneResult{
			{Dict: "insee_surnames", Match: "DUPONT", Type: "surname", Jurisdiction: "FR", Confidence: 0.98},
		}
		if err := db.SetCachedClassification(ctx, "Dupont", results, time.Hour); err != nil {
			t.Fatalf("failed to store classification: %v", err)
		}

		got, ok, err := db.GetCachedClassification(ctx, "Dupont")
		if err != nil {
			t.Fatalf("failed to read cache: %v", err)
		}
		if !ok {
			t.Fatal("expected cache hit")
		}
		if len(got) != 1 || got[0].Dict != "insee_surnames" || got[0].Type != "surname" {
			t.Errorf("unexpected cached results: %+v", got)
		}
	})

	t.Run("negative result is cached", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.SetCachedClassification(ctx, "Xyzzy", nil, time.Hour); err != nil {
			t.Fatalf("failed to store negative classification: %v", err)
		}

		got, ok, err := db.GetCachedClassification(ctx, "Xyzzy")
		if err != nil {
			t.Fatalf("failed to read cache: %v", err)
		}
		if !ok {
			t.Fatal("expected cache hit for negative result")
		}
		if len(got) != 0 {
			t.Errorf("expected empty results, got %+v", got)
		}
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		results := []model.TouchstoneResult{{Dict: "insee_surnames", Match: "MARTIN", Type: "surname"}}
		if err := db.SetCachedClassification(ctx, "Martin", results, -time.Second); err != nil {
			t.Fatalf("failed to store classification: %v", err)
		}

		_, ok, err := db.GetCachedClassification(ctx, "Martin")
		if err != nil {
			t.Fatalf("failed to read cache: %v", err)
		}
		if ok {
			t.Error("expected miss for expired entry")
		}
	})
}

// TestEntityStorage tests known-entity CRUD and lookups.
func TestEntityStorage(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("put and get round trip", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		want := model.KnownEntity{
			ID:            "ent_test1",
			Canonical:     "JEAN DUPONT",
			Type:          model.EntityPerson,
			FirstSeen:     now,
			LastSeen:      now,
			DocumentCount: 1,
		}
		if err := db.PutEntity(ctx, want); err != nil {
			t.Fatalf("failed to store entity: %v", err)
		}

		got, err := db.GetEntity(ctx, "ent_test1")
		if err != nil {
			t.Fatalf("failed to get entity: %v", err)
		}
		if got.Canonical != want.Canonical || got.Type != want.Type || got.DocumentCount != want.DocumentCount {
			t.Errorf("got %+v, want %+v", got, want)
		}
		if !got.FirstSeen.Equal(want.FirstSeen) {
			t.Errorf("FirstSeen = %v, want %v", got.FirstSeen, want.FirstSeen)
		}
	})

	t.Run("get unknown entity returns ErrNotFound", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		_, err := db.GetEntity(context.Background(), "ent_missing")
		if !errors.Is(err, graph.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("find by canonical returns newest first", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		older := model.KnownEntity{ID: "ent_old", Canonical: "VALENCE", Type: model.EntityCity, FirstSeen: now.Add(-time.Hour), LastSeen: now.Add(-time.Hour)}
		newer := model.KnownEntity{ID: "ent_new", Canonical: "VALENCE", Type: model.EntityPerson, FirstSeen: now, LastSeen: now}
		for _, e := range []model.KnownEntity{older, newer} {
			if err := db.PutEntity(ctx, e); err != nil {
				t.Fatalf("failed to store entity: %v", err)
			}
		}

		got, err := db.FindByCanonical(ctx, "VALENCE")
		if err != nil {
			t.Fatalf("failed to find entities: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 entities, got %d", len(got))
		}
		if got[0].ID != "ent_new" {
			t.Errorf("expected newest entity first, got %s", got[0].ID)
		}
	})

	t.Run("search matches prefix up to limit", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		for i, canonical := range []string{"DUPONT", "DUPUIS", "MARTIN"} {
			e := model.KnownEntity{
				ID:        "ent_search" + string(rune('a'+i)),
				Canonical: canonical,
				Type:      model.EntityPerson,
				FirstSeen: now,
				LastSeen:  now.Add(time.Duration(i) * time.Minute),
			}
			if err := db.PutEntity(ctx, e); err != nil {
				t.Fatalf("failed to store entity: %v", err)
			}
		}

		got, err := db.Search(ctx, "DUP", 10)
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 matches for prefix DUP, got %d", len(got))
		}

		limited, err := db.Search(ctx, "DUP", 1)
		if err != nil {
			t.Fatalf("failed to search with limit: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("expected 1 match with limit 1, got %d", len(limited))
		}
	})

	t.Run("entity count", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		count, err := db.EntityCount(ctx)
		if err != nil {
			t.Fatalf("failed to count entities: %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 entities, got %d", count)
		}

		if err := db.PutEntity(ctx, model.KnownEntity{ID: "ent_one", Canonical: "X", Type: model.EntityPerson, FirstSeen: now, LastSeen: now}); err != nil {
			t.Fatalf("failed to store entity: %v", err)
		}

		count, err = db.EntityCount(ctx)
		if err != nil {
			t.Fatalf("failed to count entities: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 entity, got %d", count)
		}
	})
}

// TestOccurrenceStorage tests occurrence rows and confirmation.
func TestOccurrenceStorage(t *testing.T) {
	t.Parallel()

	t.Run("occurrences come back newest first per entity", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		first := model.EntityOccurrence{EntityID: "ent_a", DocumentID: "doc-1", OriginalText: "Dupont", Alias: "Personne 1"}
		second := model.EntityOccurrence{EntityID: "ent_a", DocumentID: "doc-2", OriginalText: "DUPONT", Alias: "Personne 1"}
		for _, o := range []model.EntityOccurrence{first, second} {
			if err := db.AddOccurrence(ctx, o); err != nil {
				t.Fatalf("failed to store occurrence: %v", err)
			}
		}

		got, err := db.GetOccurrences(ctx, "ent_a")
		if err != nil {
			t.Fatalf("failed to get occurrences: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 occurrences, got %d", len(got))
		}
		if got[0].DocumentID != "doc-2" {
			t.Errorf("expected newest occurrence first, got document %s", got[0].DocumentID)
		}
	})

	t.Run("document occurrences", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		occurrences := []model.EntityOccurrence{
			{EntityID: "ent_a", DocumentID: "doc-1", OriginalText: "Dupont", Alias: "Personne 1"},
			{EntityID: "ent_b", DocumentID: "doc-1", OriginalText: "Lyon", Alias: "Ville 1"},
			{EntityID: "ent_a", DocumentID: "doc-2", OriginalText: "Dupont", Alias: "Personne 1"},
		}
		for _, o := range occurrences {
			if err := db.AddOccurrence(ctx, o); err != nil {
				t.Fatalf("failed to store occurrence: %v", err)
			}
		}

		got, err := db.GetDocumentOccurrences(ctx, "doc-1")
		if err != nil {
			t.Fatalf("failed to get document occurrences: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 occurrences in doc-1, got %d", len(got))
		}
	})

	t.Run("confirm occurrence", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		o := model.EntityOccurrence{EntityID: "ent_a", DocumentID: "doc-1", OriginalText: "Dupont", Alias: "Personne 1"}
		if err := db.AddOccurrence(ctx, o); err != nil {
			t.Fatalf("failed to store occurrence: %v", err)
		}

		if err := db.ConfirmOccurrence(ctx, "ent_a", "doc-1"); err != nil {
			t.Fatalf("failed to confirm occurrence: %v", err)
		}

		got, err := db.GetOccurrences(ctx, "ent_a")
		if err != nil {
			t.Fatalf("failed to get occurrences: %v", err)
		}
		if len(got) != 1 || !got[0].Confirmed {
			t.Errorf("occurrence should be confirmed, got %+v", got)
		}
	})

	t.Run("confirm missing occurrence returns ErrNotFound", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		err := db.ConfirmOccurrence(context.Background(), "ent_missing", "doc-missing")
		if !errors.Is(err, graph.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

// TestDocumentStorage tests document records and fingerprint lookup.
func TestDocumentStorage(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("put and get round trip", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		want := model.DocumentRecord{
			ID:          "doc-1",
			Label:       "courrier.txt",
			ProcessedAt: now,
			EntityCount: 3,
			Fingerprint: "abc123",
		}
		if err := db.PutDocument(ctx, want); err != nil {
			t.Fatalf("failed to store document: %v", err)
		}

		got, err := db.GetDocument(ctx, "doc-1")
		if err != nil {
			t.Fatalf("failed to get document: %v", err)
		}
		if got.Label != want.Label || got.EntityCount != want.EntityCount || got.Fingerprint != want.Fingerprint {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("get unknown document returns ErrNotFound", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		_, err := db.GetDocument(context.Background(), "doc-missing")
		if !errors.Is(err, graph.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("find by fingerprint", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		docs := []model.DocumentRecord{
			{ID: "doc-1", Label: "a", ProcessedAt: now.Add(-time.Hour), Fingerprint: "same"},
			{ID: "doc-2", Label: "b", ProcessedAt: now, Fingerprint: "same"},
			{ID: "doc-3", Label: "c", ProcessedAt: now, Fingerprint: "other"},
		}
		for _, doc := range docs {
			if err := db.PutDocument(ctx, doc); err != nil {
				t.Fatalf("failed to store document: %v", err)
			}
		}

		got, err := db.FindByFingerprint(ctx, "same")
		if err != nil {
			t.Fatalf("failed to find by fingerprint: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 documents, got %d", len(got))
		}
		if got[0].ID != "doc-2" {
			t.Errorf("expected newest document first, got %s", got[0].ID)
		}
	})

	t.Run("list documents newest first", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		for i, id := range []string{"doc-old", "doc-new"} {
			doc := model.DocumentRecord{ID: id, Label: id, ProcessedAt: now.Add(time.Duration(i) * time.Minute), Fingerprint: id}
			if err := db.PutDocument(ctx, doc); err != nil {
				t.Fatalf("failed to store document: %v", err)
			}
		}

		got, err := db.ListDocuments(ctx)
		if err != nil {
			t.Fatalf("failed to list documents: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 documents, got %d", len(got))
		}
		if got[0].ID != "doc-new" {
			t.Errorf("expected newest document first, got %s", got[0].ID)
		}

		count, err := db.DocumentCount(ctx)
		if err != nil {
			t.Fatalf("failed to count documents: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 documents counted, got %d", count)
		}
	})
}
