package token

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// matcher pairs a compiled regex with the pattern type it produces and an
// optional validation hook. Matchers run in slice order; when two matchers
// claim overlapping text, the earlier matcher in the slice wins.
type matcher struct {
	re      *regexp.Regexp
	pattern model.PatternType

	// validate rejects candidates that match the regex but fail a
	// stronger local check (IBAN checksum, known public suffix).
	// Rejected candidates fall through to ordinary tokenization.
	validate func(string) bool
}

// patternMatchers is the ordered matcher set for the pattern phase.
// Order encodes priority: URL before email (an email can hide inside a
// URL query string), IBAN before national ID and phones (an IBAN body is
// mostly digits and would otherwise shred into number tokens).
var patternMatchers = []matcher{
	{
		re:       regexp.MustCompile(`https?://[^\s<>"')]+`),
		pattern:  model.PatternURL,
		validate: validURLHost,
	},
	{
		re:       regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		pattern:  model.PatternEmail,
		validate: validEmailDomain,
	},
	{
		re:       regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}(?: ?[A-Z0-9]{2,4}){3,8}\b`),
		pattern:  model.PatternIBAN,
		validate: ValidIBAN,
	},
	{
		// French NIR: sex digit, year, month, department, commune,
		// order number, optional two-digit key.
		re:      regexp.MustCompile(`\b[12] ?[0-9]{2} ?[0-9]{2} ?[0-9]{2} ?[0-9]{3} ?[0-9]{3}(?: ?[0-9]{2})?\b`),
		pattern: model.PatternNationalID,
	},
	{
		// International phone format, e.g. "+33 6 12 34 56 78".
		re:      regexp.MustCompile(`\+[0-9]{1,3}(?:[ .\-]?[0-9]{1,4}){3,6}`),
		pattern: model.PatternPhone,
	},
	{
		// French national phone format, e.g. "06 12 34 56 78".
		re:      regexp.MustCompile(`\b0[1-9](?:[ .\-]?[0-9]{2}){4}\b`),
		pattern: model.PatternPhone,
	},
}

// validURLHost reports whether the URL parses and its host ends in an
// ICANN-managed public suffix. This keeps version strings and dotted
// identifiers ("v1.2.3") from ever reaching the pattern phase as URLs.
func validURLHost(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return false
	}
	return hasICANNSuffix(u.Hostname())
}

// validEmailDomain applies the same public-suffix check to the domain
// part of an email candidate.
func validEmailDomain(candidate string) bool {
	at := strings.LastIndexByte(candidate, '@')
	if at < 0 {
		return false
	}
	return hasICANNSuffix(candidate[at+1:])
}

func hasICANNSuffix(host string) bool {
	suffix, icann := publicsuffix.PublicSuffix(strings.ToLower(host))
	return icann && suffix != ""
}

// span is an accepted pattern match, half-open over byte offsets.
type span struct {
	start, end int
	pattern    model.PatternType
}

// Tokenize splits text into a token stream that partitions it exactly.
// It is deterministic and pure; empty input yields an empty slice.
func Tokenize(text string) []model.Token {
	if text == "" {
		return []model.Token{}
	}

	spans := matchPatterns(text)

	tokens := make([]model.Token, 0, len(text)/4)
	pos := 0
	for _, sp := range spans {
		if pos < sp.start {
			tokens = appendFill(tokens, text, pos, sp.start)
		}
		tokens = append(tokens, model.Token{
			Text:    text[sp.start:sp.end],
			Start:   sp.start,
			End:     sp.end,
			Kind:    model.KindPattern,
			Pattern: sp.pattern,
		})
		pos = sp.end
	}
	if pos < len(text) {
		tokens = appendFill(tokens, text, pos, len(text))
	}

	return tokens
}

// matchPatterns runs all matchers in priority order and returns the
// accepted, non-overlapping spans sorted by start offset.
func matchPatterns(text string) []span {
	accepted := make([]span, 0, 8)

	for _, m := range patternMatchers {
		for _, loc := range m.re.FindAllStringIndex(text, -1) {
			if overlapsAny(accepted, loc[0], loc[1]) {
				continue
			}
			if m.validate != nil && !m.validate(text[loc[0]:loc[1]]) {
				continue
			}
			accepted = append(accepted, span{start: loc[0], end: loc[1], pattern: m.pattern})
		}
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })
	return accepted
}

func overlapsAny(spans []span, start, end int) bool {
	for _, sp := range spans {
		if start < sp.end && sp.start < end {
			return true
		}
	}
	return false
}

// appendFill tokenizes the unclaimed range text[from:to] into word,
// number, punctuation, and whitespace tokens.
func appendFill(tokens []model.Token, text string, from, to int) []model.Token {
	segment := text[from:to]

	i := 0
	for i < len(segment) {
		r, size := decodeRune(segment[i:])

		switch {
		case unicode.IsSpace(r):
			j := i + size
			for j < len(segment) {
				r2, s2 := decodeRune(segment[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += s2
			}
			tokens = append(tokens, fillToken(text, from+i, from+j, model.KindSpace))
			i = j

		case unicode.IsLetter(r):
			j := scanWord(segment, i)
			tokens = append(tokens, fillToken(text, from+i, from+j, model.KindWord))
			i = j

		case unicode.IsDigit(r):
			j := i + size
			for j < len(segment) {
				r2, s2 := decodeRune(segment[j:])
				if !unicode.IsDigit(r2) {
					break
				}
				j += s2
			}
			tokens = append(tokens, fillToken(text, from+i, from+j, model.KindNumber))
			i = j

		default:
			tokens = append(tokens, fillToken(text, from+i, from+i+size, model.KindPunct))
			i += size
		}
	}

	return tokens
}

// scanWord consumes letters starting at i, allowing hyphens and
// apostrophes only between letters ("Jean-Pierre", "d'Artagnan").
func scanWord(segment string, i int) int {
	j := i
	for j < len(segment) {
		r, size := decodeRune(segment[j:])
		if unicode.IsLetter(r) {
			j += size
			continue
		}
		if r == '-' || r == '\'' || r == '’' {
			// Only join when another letter follows immediately.
			next, nsize := decodeRune(segment[j+size:])
			if nsize > 0 && unicode.IsLetter(next) {
				j += size
				continue
			}
		}
		break
	}
	return j
}

func fillToken(text string, start, end int, kind model.TokenKind) model.Token {
	return model.Token{Text: text[start:end], Start: start, End: end, Kind: kind}
}

// decodeRune tolerates the empty string (returns size 0) so lookahead in
// scanWord does not need a bounds check.
func decodeRune(s string) (rune, int) {
	if s == "" {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s)
}
