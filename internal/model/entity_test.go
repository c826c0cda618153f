package model

import "testing"

// TestEntityTypeString tests the EntityType string round trip.
func TestEntityTypeString(t *testing.T) {
	t.Parallel()

	types := []EntityType{
		EntityPerson, EntityCompany, EntityAddress, EntityCity,
		EntityEmail, EntityPhone, EntityIBAN, EntitySSN, EntityURL,
		EntityUnknown,
	}

	for _, et := range types {
		if got := ParseEntityType(et.String()); got != et {
			t.Errorf("ParseEntityType(%q) = %v, expected %v", et.String(), got, et)
		}
	}

	t.Run("unrecognized name maps to unknown", func(t *testing.T) {
		t.Parallel()
		if got := ParseEntityType("starship"); got != EntityUnknown {
			t.Errorf("got %v, expected EntityUnknown", got)
		}
	})
}

// TestEntityAlias tests alias selection precedence.
func TestEntityAlias(t *testing.T) {
	t.Parallel()

	t.Run("proposed alias used when no accepted alias", func(t *testing.T) {
		t.Parallel()
		e := Entity{ProposedAlias: "Personne 1"}
		if got := e.Alias(); got != "Personne 1" {
			t.Errorf("got %q, expected %q", got, "Personne 1")
		}
	})

	t.Run("accepted alias wins over proposed", func(t *testing.T) {
		t.Parallel()
		e := Entity{ProposedAlias: "Personne 1", AcceptedAlias: "Mme Martin"}
		if got := e.Alias(); got != "Mme Martin" {
			t.Errorf("got %q, expected %q", got, "Mme Martin")
		}
	})
}

// TestGroupOffsets tests DetectedGroup span helpers.
func TestGroupOffsets(t *testing.T) {
	t.Parallel()

	group := DetectedGroup{
		Tokens: []Token{
			{Text: "Jean", Start: 3, End: 7, Kind: KindWord},
			{Text: "Dupont", Start: 8, End: 14, Kind: KindWord},
		},
		Text: "Jean Dupont",
	}

	if group.Start() != 3 {
		t.Errorf("Start() = %d, expected 3", group.Start())
	}
	if group.End() != 14 {
		t.Errorf("End() = %d, expected 14", group.End())
	}

	terms := group.WordTerms()
	if len(terms) != 2 || terms[0] != "Jean" || terms[1] != "Dupont" {
		t.Errorf("WordTerms() = %v, expected [Jean Dupont]", terms)
	}

	t.Run("empty group has zero span", func(t *testing.T) {
		t.Parallel()
		var empty DetectedGroup
		if empty.Start() != 0 || empty.End() != 0 {
			t.Error("expected zero span for empty group")
		}
	})
}
