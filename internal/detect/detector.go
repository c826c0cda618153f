package detect

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// DefaultMaxAddressWords bounds how many capitalized words an address
// group absorbs after its street-type seed. Street names are short;
// a large bound would swallow following sentence content.
const DefaultMaxAddressWords = 4

// Detector finds candidate entity groups in a token stream.
type Detector struct {
	// jurisdictions restricts which legal-form dictionaries apply.
	jurisdictions []string

	// maxAddressWords bounds address-group absorption.
	maxAddressWords int
}

// Option configures a Detector.
type Option func(*Detector)

// WithJurisdictions restricts legal-form lookups to the given
// jurisdiction codes. Unknown codes are ignored.
func WithJurisdictions(jurisdictions []string) Option {
	return func(d *Detector) {
		if len(jurisdictions) > 0 {
			d.jurisdictions = jurisdictions
		}
	}
}

// New creates a Detector with the given options.
func New(opts ...Option) *Detector {
	d := &Detector{
		jurisdictions:   DefaultJurisdictions,
		maxAddressWords: DefaultMaxAddressWords,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Groups runs the detection passes over the token stream and returns the
// detected groups sorted by start offset.
//
// Pass order is significant and fixed: patterns, legal forms, street
// types, honorifics, bare capitalized candidates. A token claimed by an
// earlier pass is invisible to later ones, so pass order is also the
// precedence rule when a token could satisfy several passes (a company
// legal form wins over an honorific, which wins over bare capitalization).
func (d *Detector) Groups(tokens []model.Token, lang string) []model.DetectedGroup {
	claimed := make([]bool, len(tokens))
	groups := make([]model.DetectedGroup, 0, 8)

	groups = append(groups, d.patternPass(tokens, claimed)...)
	groups = append(groups, d.legalFormPass(tokens, claimed, lang)...)
	groups = append(groups, d.streetTypePass(tokens, claimed, lang)...)
	groups = append(groups, d.honorificPass(tokens, claimed, lang)...)
	groups = append(groups, d.candidatePass(tokens, claimed, lang)...)

	sort.Slice(groups, func(i, j int) bool { return groups[i].Start() < groups[j].Start() })
	return groups
}

// patternPass turns every validated pattern token into a one-token group.
// Pattern groups are fully resolved locally and must never be sent to the
// remote classifier.
func (d *Detector) patternPass(tokens []model.Token, claimed []bool) []model.DetectedGroup {
	groups := make([]model.DetectedGroup, 0, 2)
	for i, tok := range tokens {
		if claimed[i] || tok.Kind != model.KindPattern {
			continue
		}
		claimed[i] = true
		groups = append(groups, model.DetectedGroup{
			Tokens:     []model.Token{tok},
			Text:       tok.Text,
			Local:      model.LocalPattern,
			Confidence: model.GroupCertain,
			SkipRemote: true,
		})
	}
	return groups
}

// legalFormPass seeds company groups at legal-form tokens (SARL, GmbH,
// Ltd, ...) and absorbs immediately-following capitalized non-stop-word
// tokens. A lone legal form with nothing to absorb is released back to
// later passes.
func (d *Detector) legalFormPass(tokens []model.Token, claimed []bool, lang string) []model.DetectedGroup {
	groups := make([]model.DetectedGroup, 0, 2)
	for i, tok := range tokens {
		if claimed[i] || tok.Kind != model.KindWord || !d.isLegalForm(tok.Text) {
			continue
		}

		end, absorbed := absorbCapitalized(tokens, claimed, i, lang, -1)
		if absorbed == 0 {
			continue // released: a bare "SA" is more likely an abbreviation
		}

		groups = append(groups, claimRange(tokens, claimed, i, end,
			model.LocalCompanyCandidate, model.GroupProbable))
	}
	return groups
}

// streetTypePass seeds address groups at street-type tokens. It looks one
// token back for an adjacent street number, then absorbs forward up to
// maxAddressWords capitalized words (lowercase connective stop words like
// "de"/"la" are passed over when a capitalized word follows), stopping at
// sentence punctuation.
func (d *Detector) streetTypePass(tokens []model.Token, claimed []bool, lang string) []model.DetectedGroup {
	groups := make([]model.DetectedGroup, 0, 1)
	for i, tok := range tokens {
		if claimed[i] || tok.Kind != model.KindWord {
			continue
		}
		if _, ok := streetTypes[strings.ToLower(tok.Text)]; !ok {
			continue
		}

		start := i
		if prev, ok := prevSolid(tokens, claimed, i); ok && tokens[prev].Kind == model.KindNumber {
			start = prev
		}

		end, absorbed := absorbCapitalized(tokens, claimed, i, lang, d.maxAddressWords)
		if start == i && absorbed == 0 {
			continue // a lone street word is ordinary prose
		}

		groups = append(groups, claimRange(tokens, claimed, start, end,
			model.LocalAddressFragment, model.GroupProbable))
	}
	return groups
}

// honorificPass seeds person groups at honorific tokens (M., Mme, Dr,
// Herr, ...). Single-letter honorifics additionally require a trailing
// period token, which is absorbed into the group. Absorption then works
// exactly like the legal-form pass.
func (d *Detector) honorificPass(tokens []model.Token, claimed []bool, lang string) []model.DetectedGroup {
	groups := make([]model.DetectedGroup, 0, 2)
	for i, tok := range tokens {
		if claimed[i] || tok.Kind != model.KindWord {
			continue
		}

		lower := strings.TrimSuffix(strings.ToLower(tok.Text), ".")
		if _, ok := honorifics[lower]; !ok {
			continue
		}

		seedEnd := i
		hasPeriod := i+1 < len(tokens) && tokens[i+1].Kind == model.KindPunct && tokens[i+1].Text == "."
		if hasPeriod {
			seedEnd = i + 1
		} else if utf8.RuneCountInString(lower) == 1 {
			// "M" alone is just a capital letter; only "M." is an honorific.
			continue
		}

		end, absorbed := absorbCapitalized(tokens, claimed, seedEnd, lang, -1)
		if absorbed == 0 {
			continue // released: "Dr" with no name following
		}

		groups = append(groups, claimRange(tokens, claimed, i, end,
			model.LocalPersonCandidate, model.GroupProbable))
	}
	return groups
}

// candidatePass claims whatever capitalized material remains: unclaimed,
// non-stop-word word tokens of at least two runes. Consecutive
// capitalized words merge into one group. A candidate that starts a
// sentence is skipped unless fully upper-case, which removes most false
// positives on sentence-initial capitalization.
func (d *Detector) candidatePass(tokens []model.Token, claimed []bool, lang string) []model.DetectedGroup {
	groups := make([]model.DetectedGroup, 0, 4)

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if claimed[i] || !isCandidateWord(tok, lang) {
			continue
		}
		if sentenceStart(tokens, i) && !isAllUpper(tok.Text) {
			continue
		}

		// Merge consecutive capitalized words separated by one space.
		end := i
		for {
			next, ok := nextSolid(tokens, claimed, end)
			if !ok || !isCandidateWord(tokens[next], lang) {
				break
			}
			end = next
		}

		groups = append(groups, claimRange(tokens, claimed, i, end,
			model.LocalNone, model.GroupCandidate))
		i = end
	}

	return groups
}

// absorbCapitalized walks forward from seed absorbing capitalized
// non-stop-word word tokens. maxWords < 0 means unbounded. It returns the
// index of the last absorbed token (seed if none) and how many words were
// absorbed. Lowercase connective stop words are passed over only when a
// capitalized word follows them.
func absorbCapitalized(tokens []model.Token, claimed []bool, seed int, lang string, maxWords int) (int, int) {
	end := seed
	absorbed := 0

	i := seed
	for maxWords < 0 || absorbed < maxWords {
		next, found := scanAbsorbable(tokens, claimed, i, lang)
		if !found {
			break
		}
		end = next
		absorbed++
		i = next
	}

	return end, absorbed
}

// scanAbsorbable finds the next absorbable capitalized word after i,
// passing over a short run of lowercase connective stop words ("rue de la
// Paix"). It returns false at sentence punctuation, non-word tokens,
// claimed tokens, or when no capitalized word anchors the connectives.
func scanAbsorbable(tokens []model.Token, claimed []bool, i int, lang string) (int, bool) {
	connectives := 0
	for {
		next, ok := nextSolid(tokens, claimed, i)
		if !ok {
			return 0, false
		}
		tok := tokens[next]
		if tok.Kind != model.KindWord {
			return 0, false
		}
		if isCapitalized(tok.Text) && !isStopWord(lang, tok.Text) {
			return next, true
		}
		if !isStopWord(lang, tok.Text) || connectives >= 2 {
			return 0, false
		}
		connectives++
		i = next
	}
}

// claimRange marks tokens[start..end] claimed and builds the group over
// the full contiguous range, interior whitespace included, so the group
// text matches the original document slice exactly.
func claimRange(tokens []model.Token, claimed []bool, start, end int, local model.LocalType, conf model.GroupConfidence) model.DetectedGroup {
	var text strings.Builder
	run := make([]model.Token, 0, end-start+1)
	for i := start; i <= end; i++ {
		claimed[i] = true
		run = append(run, tokens[i])
		text.WriteString(tokens[i].Text)
	}
	return model.DetectedGroup{
		Tokens:     run,
		Text:       text.String(),
		Local:      local,
		Confidence: conf,
	}
}

// nextSolid returns the index of the next unclaimed non-whitespace token
// after i, if one exists with at most one whitespace token in between.
func nextSolid(tokens []model.Token, claimed []bool, i int) (int, bool) {
	j := i + 1
	if j < len(tokens) && tokens[j].Kind == model.KindSpace {
		j++
	}
	if j >= len(tokens) || claimed[j] {
		return 0, false
	}
	return j, true
}

// prevSolid returns the index of the previous unclaimed non-whitespace
// token before i, allowing at most one whitespace token in between.
func prevSolid(tokens []model.Token, claimed []bool, i int) (int, bool) {
	j := i - 1
	if j >= 0 && tokens[j].Kind == model.KindSpace {
		j--
	}
	if j < 0 || claimed[j] {
		return 0, false
	}
	return j, true
}

func isCandidateWord(tok model.Token, lang string) bool {
	return tok.Kind == model.KindWord &&
		utf8.RuneCountInString(tok.Text) >= 2 &&
		isCapitalized(tok.Text) &&
		!isStopWord(lang, tok.Text)
}

// sentenceStart reports whether the token at i begins a sentence: it is
// the first non-whitespace token of the document, or the nearest solid
// token before it is sentence punctuation.
func sentenceStart(tokens []model.Token, i int) bool {
	j := i - 1
	for j >= 0 && tokens[j].Kind == model.KindSpace {
		j--
	}
	if j < 0 {
		return true
	}
	return tokens[j].Kind == model.KindPunct && isSentencePunct(tokens[j].Text)
}

func isSentencePunct(s string) bool {
	switch s {
	case ".", "!", "?", ";", ":", "…":
		return true
	default:
		return false
	}
}

func isCapitalized(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isStopWord(lang, text string) bool {
	words, ok := stopWords[lang]
	if !ok {
		words = stopWords[DefaultLanguage]
	}
	_, found := words[strings.ToLower(text)]
	return found
}

func (d *Detector) isLegalForm(text string) bool {
	lower := strings.ToLower(text)
	for _, j := range d.jurisdictions {
		if forms, ok := legalForms[j]; ok {
			if _, found := forms[lower]; found {
				return true
			}
		}
	}
	return false
}
