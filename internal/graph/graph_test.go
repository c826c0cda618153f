package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/hazyhaar/whiteout-ext/internal/database"
	"github.com/hazyhaar/whiteout-ext/internal/graph"
	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// TestCanonicalize tests text normalization into the cross-document key.
func TestCanonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "dupont", want: "DUPONT"},
		{name: "surrounding whitespace", in: "  Jean Dupont  ", want: "JEAN DUPONT"},
		{name: "internal whitespace collapsed", in: "Jean \t Dupont", want: "JEAN DUPONT"},
		{name: "accents preserved", in: "Société Générale", want: "SOCIÉTÉ GÉNÉRALE"},
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \t\n ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := graph.Canonicalize(tt.in)
			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}

			// Canonical forms are a fixed point.
			if again := graph.Canonicalize(got); again != got {
				t.Errorf("Canonicalize(%q) = %q, not a fixed point", got, again)
			}
		})
	}
}

// TestFingerprint tests document fingerprint behavior.
func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("identical text yields identical fingerprint", func(t *testing.T) {
		t.Parallel()
		if graph.Fingerprint("hello") != graph.Fingerprint("hello") {
			t.Error("fingerprint should be deterministic")
		}
	})

	t.Run("different text yields different fingerprint", func(t *testing.T) {
		t.Parallel()
		if graph.Fingerprint("hello") == graph.Fingerprint("world") {
			t.Error("different text should fingerprint differently")
		}
	})

	t.Run("only the prefix contributes", func(t *testing.T) {
		t.Parallel()

		prefix := strings.Repeat("a", 5000)
		if graph.Fingerprint(prefix+"tail one") != graph.Fingerprint(prefix+"tail two") {
			t.Error("text beyond the prefix should not change the fingerprint")
		}
	})
}

// TestNewID tests identifier shape and uniqueness.
func TestNewID(t *testing.T) {
	t.Parallel()

	id := graph.NewID("ent")
	if !strings.HasPrefix(id, "ent_") {
		t.Errorf("expected ent_ prefix, got %q", id)
	}
	// kind + "_" + 16 hex chars of timestamp + 16 hex chars of randomness
	if len(id) != len("ent")+1+32 {
		t.Errorf("unexpected ID length %d for %q", len(id), id)
	}

	seen := make(map[string]struct{})
	for range 100 {
		generated := graph.NewID("doc")
		if _, dup := seen[generated]; dup {
			t.Fatalf("duplicate ID generated: %q", generated)
		}
		seen[generated] = struct{}{}
	}
}

// recordTestDocument stores a document with person and city entities.
func recordTestDocument(t *testing.T, store graph.Store, docID string, entities []model.Entity) {
	t.Helper()

	if err := graph.RecordDocument(context.Background(), store, docID, docID+".txt", "contenu de "+docID, entities); err != nil {
		t.Fatalf("failed to record document %s: %v", docID, err)
	}
}

func personEntity(text, alias string) model.Entity {
	return model.Entity{Text: text, Type: model.EntityPerson, Confidence: model.ConfidenceHigh, ProposedAlias: alias}
}

func cityEntity(text, alias string) model.Entity {
	return model.Entity{Text: text, Type: model.EntityCity, Confidence: model.ConfidenceMedium, ProposedAlias: alias}
}

// TestRecordDocument tests entity upserts and document counting.
func TestRecordDocument(t *testing.T) {
	t.Parallel()

	t.Run("same entity across two documents stays one entity", func(t *testing.T) {
		t.Parallel()
		store := database.NewMemoryStore()
		ctx := context.Background()

		recordTestDocument(t, store, "doc-1", []model.Entity{
			personEntity("Jean Dupont", "Personne 1"),
			cityEntity("Lyon", "Ville 1"),
		})
		// Case and spacing differ; canonical form is the same.
		recordTestDocument(t, store, "doc-2", []model.Entity{
			personEntity("JEAN  DUPONT", "Personne 1"),
		})

		entityCount, err := store.EntityCount(ctx)
		if err != nil {
			t.Fatalf("failed to count entities: %v", err)
		}
		if entityCount != 2 {
			t.Errorf("expected 2 known entities (person + city), got %d", entityCount)
		}

		known, err := store.FindByCanonical(ctx, "JEAN DUPONT")
		if err != nil {
			t.Fatalf("failed to find entity: %v", err)
		}
		if len(known) != 1 {
			t.Fatalf("expected 1 known entity, got %d", len(known))
		}
		if known[0].DocumentCount != 2 {
			t.Errorf("DocumentCount = %d, want 2", known[0].DocumentCount)
		}
	})

	t.Run("re-recording the same document does not inflate counts", func(t *testing.T) {
		t.Parallel()
		store := database.NewMemoryStore()
		ctx := context.Background()

		entities := []model.Entity{personEntity("Jean Dupont", "Personne 1")}
		recordTestDocument(t, store, "doc-1", entities)
		recordTestDocument(t, store, "doc-1", entities)

		known, err := store.FindByCanonical(ctx, "JEAN DUPONT")
		if err != nil {
			t.Fatalf("failed to find entity: %v", err)
		}
		if len(known) != 1 {
			t.Fatalf("expected 1 known entity, got %d", len(known))
		}
		if known[0].DocumentCount != 1 {
			t.Errorf("DocumentCount = %d, want 1", known[0].DocumentCount)
		}
	})

	t.Run("same canonical different type stays separate", func(t *testing.T) {
		t.Parallel()
		store := database.NewMemoryStore()
		ctx := context.Background()

		recordTestDocument(t, store, "doc-1", []model.Entity{cityEntity("Valence", "Ville 1")})
		recordTestDocument(t, store, "doc-2", []model.Entity{personEntity("Valence", "Personne 1")})

		known, err := store.FindByCanonical(ctx, "VALENCE")
		if err != nil {
			t.Fatalf("failed to find entities: %v", err)
		}
		if len(known) != 2 {
			t.Errorf("expected 2 known entities for VALENCE, got %d", len(known))
		}
	})

	t.Run("occurrence carries original text and alias", func(t *testing.T) {
		t.Parallel()
		store := database.NewMemoryStore()
		ctx := context.Background()

		recordTestDocument(t, store, "doc-1", []model.Entity{personEntity("Jean Dupont", "Personne 1")})

		known, err := store.FindByCanonical(ctx, "JEAN DUPONT")
		if err != nil || len(known) != 1 {
			t.Fatalf("failed to find entity: %v (%d found)", err, len(known))
		}

		occurrences, err := store.GetOccurrences(ctx, known[0].ID)
		if err != nil {
			t.Fatalf("failed to get occurrences: %v", err)
		}
		if len(occurrences) != 1 {
			t.Fatalf("expected 1 occurrence, got %d", len(occurrences))
		}
		if occurrences[0].OriginalText != "Jean Dupont" || occurrences[0].Alias != "Personne 1" {
			t.Errorf("unexpected occurrence: %+v", occurrences[0])
		}
		if !occurrences[0].Confirmed {
			t.Error("recorded occurrence should be confirmed")
		}
	})
}

// TestFindMatches tests match proposal tiers.
func TestFindMatches(t *testing.T) {
	t.Parallel()

	t.Run("no prior entity means no match", func(t *testing.T) {
		t.Parallel()
		store := database.NewMemoryStore()

		matches, err := graph.FindMatches(context.Background(), store, []graph.Candidate{
			{Text: "Jean Dupont", Type: model.EntityPerson},
		})
		if err != nil {
			t.Fatalf("failed to find matches: %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("expected no matches, got %d", len(matches))
		}
	})

	t.Run("co-entity overlap upgrades to exact", func(t *testing.T) {
		t.Parallel()
		store := database.NewMemoryStore()

		recordTestDocument(t, store, "doc-1", []model.Entity{
			personEntity("Jean Dupont", "Personne 1"),
			cityEntity("Lyon", "Ville 1"),
		})

		matches, err := graph.FindMatches(context.Background(), store, []graph.Candidate{
			{Text: "jean dupont", Type: model.EntityPerson},
			{Text: "Lyon", Type: model.EntityCity},
		})
		if err != nil {
			t.Fatalf("failed to find matches: %v", err)
		}
		if len(matches) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(matches))
		}

		for _, m := range matches {
			if m.Confidence != model.MatchExact {
				t.Errorf("match for %s: confidence = %s, want exact", m.Known.Canonical, m.Confidence)
			}
			if m.PreviousDocument.ID != "doc-1" {
				t.Errorf("expected previous document doc-1, got %q", m.PreviousDocument.ID)
			}
		}
	})

	t.Run("canonical match without overlap is likely", func(t *testing.T) {
		t.Parallel()
		store := database.NewMemoryStore()

		recordTestDocument(t, store, "doc-1", []model.Entity{
			personEntity("Jean Dupont", "Personne 1"),
			cityEntity("Lyon", "Ville 1"),
		})

		matches, err := graph.FindMatches(context.Background(), store, []graph.Candidate{
			{Text: "Jean Dupont", Type: model.EntityPerson},
		})
		if err != nil {
			t.Fatalf("failed to find matches: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		if matches[0].Confidence != model.MatchLikely {
			t.Errorf("confidence = %s, want likely", matches[0].Confidence)
		}
		if matches[0].PreviousAlias != "Personne 1" {
			t.Errorf("previous alias = %q, want %q", matches[0].PreviousAlias, "Personne 1")
		}
		if len(matches[0].CoEntities) != 1 || matches[0].CoEntities[0] != "LYON" {
			t.Errorf("co-entities = %v, want [LYON]", matches[0].CoEntities)
		}
	})

	t.Run("type mismatch downgrades to possible", func(t *testing.T) {
		t.Parallel()
		store := database.NewMemoryStore()

		recordTestDocument(t, store, "doc-1", []model.Entity{cityEntity("Valence", "Ville 1")})

		matches, err := graph.FindMatches(context.Background(), store, []graph.Candidate{
			{Text: "Valence", Type: model.EntityPerson},
		})
		if err != nil {
			t.Fatalf("failed to find matches: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		if matches[0].Confidence != model.MatchPossible {
			t.Errorf("confidence = %s, want possible", matches[0].Confidence)
		}
	})

	t.Run("most recent same-type entity wins", func(t *testing.T) {
		t.Parallel()
		store := database.NewMemoryStore()

		recordTestDocument(t, store, "doc-1", []model.Entity{cityEntity("Valence", "Ville 1")})
		recordTestDocument(t, store, "doc-2", []model.Entity{personEntity("Valence", "Personne 1")})

		matches, err := graph.FindMatches(context.Background(), store, []graph.Candidate{
			{Text: "Valence", Type: model.EntityPerson},
		})
		if err != nil {
			t.Fatalf("failed to find matches: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		if matches[0].Known.Type != model.EntityPerson {
			t.Errorf("matched type = %s, want person", matches[0].Known.Type)
		}
		if matches[0].Confidence == model.MatchPossible {
			t.Error("same-type match should not be downgraded to possible")
		}
	})
}
