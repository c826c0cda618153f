package detect

import (
	"strings"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// DefaultLanguage is used when no language wins the stop-word vote.
const DefaultLanguage = "fr"

// Language guesses the document language from the token stream by
// stop-word frequency voting: the language whose stop words match the
// most word tokens wins. Ties, including the empty document, default to
// DefaultLanguage.
//
// The closed candidate set (fr, en, de) mirrors the dictionaries this
// package ships; reporting a language it has no stop words for would
// only mislead downstream consumers.
func Language(tokens []model.Token) string {
	votes := make(map[string]int, len(stopWords))

	for _, tok := range tokens {
		if tok.Kind != model.KindWord {
			continue
		}
		lower := strings.ToLower(tok.Text)
		for lang, words := range stopWords {
			if _, ok := words[lower]; ok {
				votes[lang]++
			}
		}
	}

	best := DefaultLanguage
	bestVotes := votes[DefaultLanguage]
	// Deterministic order so ties resolve the same way every run.
	for _, lang := range []string{"en", "de"} {
		if votes[lang] > bestVotes {
			best = lang
			bestVotes = votes[lang]
		}
	}

	return best
}
