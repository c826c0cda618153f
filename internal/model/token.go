package model

// TokenKind classifies a token produced by the tokenizer.
type TokenKind int

// Token kinds. Whitespace is tokenized rather than dropped so that the
// token stream partitions the input exactly and offset math stays sound
// for the final substitution pass.
const (
	// KindWord is a run of letters, allowing embedded hyphens and
	// apostrophes ("Jean-Pierre", "d'Artagnan").
	KindWord TokenKind = iota

	// KindNumber is a run of decimal digits.
	KindNumber

	// KindPunct is a single punctuation or symbol character.
	KindPunct

	// KindSpace is a run of whitespace characters.
	KindSpace

	// KindPattern is a validated structured pattern (email, phone, IBAN,
	// national ID, URL) matched before ordinary tokenization.
	KindPattern
)

// String returns the token kind name for logging.
func (k TokenKind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindNumber:
		return "number"
	case KindPunct:
		return "punctuation"
	case KindSpace:
		return "whitespace"
	case KindPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// PatternType identifies which structured pattern a KindPattern token matched.
type PatternType int

// Pattern types in matcher priority order. When two matchers claim
// overlapping text, the one listed first here wins.
const (
	// PatternNone marks non-pattern tokens.
	PatternNone PatternType = iota

	// PatternURL is an http(s) URL.
	PatternURL

	// PatternEmail is an email address.
	PatternEmail

	// PatternIBAN is an IBAN that passed the ISO 13616 mod-97 checksum.
	PatternIBAN

	// PatternNationalID is a national identification number
	// (e.g. the 13+2 digit French NIR).
	PatternNationalID

	// PatternPhone is a phone number in international or national format.
	PatternPhone
)

// String returns the pattern type name for logging and reports.
func (p PatternType) String() string {
	switch p {
	case PatternURL:
		return "url"
	case PatternEmail:
		return "email"
	case PatternIBAN:
		return "iban"
	case PatternNationalID:
		return "national_id"
	case PatternPhone:
		return "phone"
	default:
		return "none"
	}
}

// Token is one unit of tokenized text. Tokens are immutable once created.
//
// Start and End are byte offsets into the original text, with
// Text == original[Start:End]. An invariant of the tokenizer is that the
// tokens of a document partition it: no gaps, no overlaps.
type Token struct {
	// Text is the exact slice of the original input.
	Text string `json:"text"`

	// Start is the byte offset of the first byte of Text in the input.
	Start int `json:"start"`

	// End is the byte offset one past the last byte of Text.
	End int `json:"end"`

	// Kind classifies the token.
	Kind TokenKind `json:"kind"`

	// Pattern is the structured pattern type for KindPattern tokens,
	// PatternNone otherwise.
	Pattern PatternType `json:"pattern,omitempty"`
}

// IsWordLike reports whether the token is a word or pattern token, i.e.
// something a detection pass may claim as entity material.
func (t Token) IsWordLike() bool {
	return t.Kind == KindWord || t.Kind == KindPattern
}
