package model

import "strings"

// LocalType is the heuristic classification a detection pass assigns to a
// group before any remote signal is available.
type LocalType int

// Local types, roughly strongest signal first. The detector's pass order
// (patterns, legal forms, street types, honorifics, bare capitalization)
// decides precedence when a token could satisfy more than one.
const (
	// LocalNone means no local classification; the group is a bare
	// capitalized-word candidate.
	LocalNone LocalType = iota

	// LocalPattern marks a group built from a single validated pattern token.
	LocalPattern

	// LocalCompanyCandidate marks a group seeded by a legal-form token
	// (SARL, GmbH, Ltd, ...).
	LocalCompanyCandidate

	// LocalAddressFragment marks a group seeded by a street-type token.
	LocalAddressFragment

	// LocalPersonCandidate marks a group seeded by an honorific (M., Dr, ...).
	LocalPersonCandidate
)

// String returns the local type name for logging.
func (l LocalType) String() string {
	switch l {
	case LocalPattern:
		return "pattern"
	case LocalCompanyCandidate:
		return "company_candidate"
	case LocalAddressFragment:
		return "address_fragment"
	case LocalPersonCandidate:
		return "person_candidate"
	default:
		return "candidate"
	}
}

// GroupConfidence expresses how sure the local detector is that a group
// is a real entity. It degrades monotonically with pass order: patterns
// are certain, dictionary-seeded groups probable, bare capitalization
// only a candidate.
type GroupConfidence int

// Group confidence levels.
const (
	// GroupCandidate is the weakest signal (bare capitalized words).
	GroupCandidate GroupConfidence = iota

	// GroupProbable is a dictionary-corroborated group.
	GroupProbable

	// GroupCertain is a locally validated structured pattern.
	GroupCertain
)

// String returns the confidence level name.
func (c GroupConfidence) String() string {
	switch c {
	case GroupCertain:
		return "certain"
	case GroupProbable:
		return "probable"
	default:
		return "candidate"
	}
}

// DetectedGroup is an ordered run of tokens believed to form one entity
// candidate. Groups are produced by the local detector and consumed by the
// classification client and the assembler.
type DetectedGroup struct {
	// Tokens are the claimed tokens in document order.
	Tokens []Token `json:"tokens"`

	// Text is the group text as it appears in the document, covering the
	// span from the first to the last token.
	Text string `json:"text"`

	// Local is the heuristic classification, if any pass assigned one.
	Local LocalType `json:"local_type"`

	// Confidence is the local detector's confidence in the group.
	Confidence GroupConfidence `json:"confidence"`

	// SkipRemote marks groups that are already fully resolved locally
	// (e.g. a checksum-validated IBAN). Such groups must never be sent
	// to the remote classifier: there is nothing to learn and the value
	// itself is sensitive.
	SkipRemote bool `json:"skip_remote"`
}

// Start returns the byte offset of the group's first token.
func (g DetectedGroup) Start() int {
	if len(g.Tokens) == 0 {
		return 0
	}
	return g.Tokens[0].Start
}

// End returns the byte offset one past the group's last token.
func (g DetectedGroup) End() int {
	if len(g.Tokens) == 0 {
		return 0
	}
	return g.Tokens[len(g.Tokens)-1].End
}

// WordTerms returns the individual word-token texts of the group. The
// remote dictionary matches single words, so multi-word groups are
// decomposed before lookup (a surname inside "Jean Dupont" would not
// match as a phrase).
func (g DetectedGroup) WordTerms() []string {
	terms := make([]string, 0, len(g.Tokens))
	for _, t := range g.Tokens {
		if t.Kind == KindWord && strings.TrimSpace(t.Text) != "" {
			terms = append(terms, t.Text)
		}
	}
	return terms
}

// TouchstoneResult is one remote classification record for a term. A term
// may have zero, one, or several results, one per matching dictionary.
type TouchstoneResult struct {
	// Dict names the dictionary that matched (e.g. "insee_surnames").
	Dict string `json:"dict"`

	// Match is the matched term as the dictionary stores it.
	Match string `json:"match"`

	// Type is the dictionary's classification, e.g. "surname",
	// "first_name", "city", "commune", "company".
	Type string `json:"type"`

	// Jurisdiction is the dictionary's jurisdiction code (e.g. "FR").
	Jurisdiction string `json:"jurisdiction"`

	// Confidence is the dictionary's match confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Metadata carries optional dictionary-specific details.
	Metadata map[string]string `json:"metadata,omitempty"`
}
