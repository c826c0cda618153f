package model

// EntityType is the final classification of an anonymizable span.
//
// Design decision: We use a closed enum rather than free-form strings so
// the assembler and alias generator can switch exhaustively over it. New
// types require touching every switch, which is intentional: a type the
// alias generator cannot handle must not exist.
type EntityType int

// Entity types.
const (
	// EntityUnknown marks spans the system could not classify but still
	// surfaces for human review.
	EntityUnknown EntityType = iota

	// EntityPerson is a personal name.
	EntityPerson

	// EntityCompany is a company or organization name.
	EntityCompany

	// EntityAddress is a street address or address fragment.
	EntityAddress

	// EntityCity is a city or commune name.
	EntityCity

	// EntityEmail is an email address.
	EntityEmail

	// EntityPhone is a phone number.
	EntityPhone

	// EntityIBAN is an international bank account number.
	EntityIBAN

	// EntitySSN is a national identification number.
	EntitySSN

	// EntityURL is a web address.
	EntityURL
)

// String returns the entity type name used in reports and stored records.
func (t EntityType) String() string {
	switch t {
	case EntityPerson:
		return "person"
	case EntityCompany:
		return "company"
	case EntityAddress:
		return "address"
	case EntityCity:
		return "city"
	case EntityEmail:
		return "email"
	case EntityPhone:
		return "phone"
	case EntityIBAN:
		return "iban"
	case EntitySSN:
		return "ssn"
	case EntityURL:
		return "url"
	default:
		return "unknown"
	}
}

// ParseEntityType maps a stored type name back to its enum value.
// Unrecognized names map to EntityUnknown.
func ParseEntityType(s string) EntityType {
	switch s {
	case "person":
		return EntityPerson
	case "company":
		return EntityCompany
	case "address":
		return EntityAddress
	case "city":
		return EntityCity
	case "email":
		return EntityEmail
	case "phone":
		return EntityPhone
	case "iban":
		return EntityIBAN
	case "ssn":
		return EntitySSN
	case "url":
		return EntityURL
	default:
		return EntityUnknown
	}
}

// EntityConfidence expresses how much the system trusts an entity's type.
type EntityConfidence int

// Entity confidence levels.
const (
	// ConfidenceLow marks entities surfaced for review only.
	ConfidenceLow EntityConfidence = iota

	// ConfidenceMedium marks entities with a single corroborating signal.
	ConfidenceMedium

	// ConfidenceHigh marks locally validated patterns and entities with
	// both local and remote corroboration.
	ConfidenceHigh
)

// String returns the confidence level name.
func (c EntityConfidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// Entity is the final unit of anonymization: a typed, confidence-scored
// span of the original document with a proposed replacement.
//
// Spans are byte offsets into the original document and are never adjusted
// after the assembler emits them; the substitution pass processes entities
// end-to-start precisely so spans stay valid without shifting.
type Entity struct {
	// Text is the original span text.
	Text string `json:"text"`

	// Start is the byte offset of the span in the original document.
	Start int `json:"start"`

	// End is the byte offset one past the span's last byte.
	End int `json:"end"`

	// Type is the resolved entity type.
	Type EntityType `json:"type"`

	// Confidence is the resolved confidence level.
	Confidence EntityConfidence `json:"confidence"`

	// Sources lists the signals that contributed to the classification,
	// e.g. "pattern:iban", "local:legal_form", "remote:insee_surnames".
	Sources []string `json:"sources"`

	// ProposedAlias is the replacement text generated by the alias
	// generator.
	ProposedAlias string `json:"proposed_alias"`

	// AcceptedAlias is set by a human reviewer outside this core. When
	// empty, ProposedAlias is used at substitution time.
	AcceptedAlias string `json:"accepted_alias,omitempty"`
}

// Alias returns the replacement text to substitute for this entity:
// the accepted alias when a reviewer set one, the proposed alias otherwise.
func (e Entity) Alias() string {
	if e.AcceptedAlias != "" {
		return e.AcceptedAlias
	}
	return e.ProposedAlias
}
