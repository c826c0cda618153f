package token

import (
	"testing"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// TestTokenizePartition tests that tokens partition the input exactly.
func TestTokenizePartition(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"M. Dupont habite à Lyon depuis dix ans.",
		"Contacter jean.dupont@gmail.com au 06 12 34 56 78",
		"IBAN: FR7630006000011234567890189 (compte principal)",
		"Jean-Pierre et l'équipe — voir https://example.com/doc?x=1",
		"   \t\nwhitespace   only\n",
	}

	for _, input := range inputs {
		tokens := Tokenize(input)

		pos := 0
		for i, tok := range tokens {
			if tok.Start != pos {
				t.Errorf("input %q: token %d starts at %d, expected %d", input, i, tok.Start, pos)
			}
			if tok.Text != input[tok.Start:tok.End] {
				t.Errorf("input %q: token %d text %q does not match offsets", input, i, tok.Text)
			}
			pos = tok.End
		}
		if pos != len(input) {
			t.Errorf("input %q: tokens end at %d, expected %d", input, pos, len(input))
		}
	}
}

// TestTokenizeEmpty tests the empty-input edge case.
func TestTokenizeEmpty(t *testing.T) {
	t.Parallel()

	tokens := Tokenize("")
	if tokens == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(tokens) != 0 {
		t.Errorf("got %d tokens, expected 0", len(tokens))
	}
}

// TestTokenizePatterns tests structured pattern detection.
func TestTokenizePatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		pattern model.PatternType
	}{
		{
			name:    "email",
			input:   "Contacter jean.dupont@gmail.com svp",
			want:    "jean.dupont@gmail.com",
			pattern: model.PatternEmail,
		},
		{
			name:    "national phone",
			input:   "au 06 12 34 56 78 demain",
			want:    "06 12 34 56 78",
			pattern: model.PatternPhone,
		},
		{
			name:    "international phone",
			input:   "numéro +33 6 12 34 56 78 uniquement",
			want:    "+33 6 12 34 56 78",
			pattern: model.PatternPhone,
		},
		{
			name:    "valid iban",
			input:   "compte FR7630006000011234567890189 actif",
			want:    "FR7630006000011234567890189",
			pattern: model.PatternIBAN,
		},
		{
			name:    "url",
			input:   "voir https://example.com/page pour plus",
			want:    "https://example.com/page",
			pattern: model.PatternURL,
		},
		{
			name:    "national id",
			input:   "NIR 1 85 05 78 006 084 36 enregistré",
			want:    "1 85 05 78 006 084 36",
			pattern: model.PatternNationalID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens := Tokenize(tt.input)
			var found *model.Token
			for i := range tokens {
				if tokens[i].Kind == model.KindPattern && tokens[i].Pattern == tt.pattern {
					found = &tokens[i]
					break
				}
			}
			if found == nil {
				t.Fatalf("no %v pattern token in %q", tt.pattern, tt.input)
			}
			if found.Text != tt.want {
				t.Errorf("got %q, expected %q", found.Text, tt.want)
			}
		})
	}
}

// TestTokenizeInvalidIBAN tests that a bad checksum demotes the candidate
// to plain tokens.
func TestTokenizeInvalidIBAN(t *testing.T) {
	t.Parallel()

	// Same shape as a valid French IBAN but the last digit is wrong.
	tokens := Tokenize("compte FR7630006000011234567890180 actif")
	for _, tok := range tokens {
		if tok.Pattern == model.PatternIBAN {
			t.Fatalf("invalid IBAN tokenized as pattern: %q", tok.Text)
		}
	}
}

// TestTokenizeWords tests fill-phase word handling.
func TestTokenizeWords(t *testing.T) {
	t.Parallel()

	t.Run("embedded hyphen stays in one word", func(t *testing.T) {
		t.Parallel()
		tokens := Tokenize("Jean-Pierre arrive")
		if tokens[0].Text != "Jean-Pierre" || tokens[0].Kind != model.KindWord {
			t.Errorf("got %q (%v), expected word %q", tokens[0].Text, tokens[0].Kind, "Jean-Pierre")
		}
	})

	t.Run("embedded apostrophe stays in one word", func(t *testing.T) {
		t.Parallel()
		tokens := Tokenize("l'entreprise ferme")
		if tokens[0].Text != "l'entreprise" || tokens[0].Kind != model.KindWord {
			t.Errorf("got %q (%v), expected word %q", tokens[0].Text, tokens[0].Kind, "l'entreprise")
		}
	})

	t.Run("trailing hyphen is punctuation", func(t *testing.T) {
		t.Parallel()
		tokens := Tokenize("avant- propos")
		if tokens[0].Text != "avant" {
			t.Errorf("got %q, expected %q", tokens[0].Text, "avant")
		}
		if tokens[1].Text != "-" || tokens[1].Kind != model.KindPunct {
			t.Errorf("got %q (%v), expected punctuation %q", tokens[1].Text, tokens[1].Kind, "-")
		}
	})

	t.Run("accented letters are word material", func(t *testing.T) {
		t.Parallel()
		tokens := Tokenize("Société Générale")
		if tokens[0].Text != "Société" {
			t.Errorf("got %q, expected %q", tokens[0].Text, "Société")
		}
	})
}

// TestTokenizeURLRejectsBogusHost tests the public-suffix gate.
func TestTokenizeURLRejectsBogusHost(t *testing.T) {
	t.Parallel()

	tokens := Tokenize("voir https://intranet.localdomain/x pour plus")
	for _, tok := range tokens {
		if tok.Pattern == model.PatternURL {
			t.Fatalf("URL with unknown suffix tokenized as pattern: %q", tok.Text)
		}
	}
}

// TestValidIBAN tests the mod-97 checksum directly.
func TestValidIBAN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"valid french iban", "FR7630006000011234567890189", true},
		{"valid german iban", "DE89370400440532013000", true},
		{"valid with spaces", "FR76 3000 6000 0112 3456 7890 189", true},
		{"bad check digit", "FR7630006000011234567890180", false},
		{"too short", "FR761234", false},
		{"not an iban at all", "BONJOUR LE MONDE", false},
		{"lowercase accepted", "de89370400440532013000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidIBAN(tt.candidate); got != tt.want {
				t.Errorf("ValidIBAN(%q) = %v, expected %v", tt.candidate, got, tt.want)
			}
		})
	}
}
