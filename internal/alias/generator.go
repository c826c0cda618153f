package alias

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// Style selects how aliases look.
type Style int

// Alias styles.
const (
	// StyleGeneric produces numbered labels ("Personne 1", "Société 2")
	// and format-preserving placeholders for structured values.
	StyleGeneric Style = iota

	// StyleRealistic produces plausible substitutes: random names,
	// synthetic addresses, masked account numbers.
	StyleRealistic
)

// String returns the style name used in configuration files.
func (s Style) String() string {
	if s == StyleRealistic {
		return "realistic"
	}
	return "generic"
}

// ParseStyle maps a configuration string to a Style. Unrecognized values
// fall back to the generic style, which is the safer default: it is
// obviously synthetic to any reader.
func ParseStyle(s string) Style {
	if strings.EqualFold(s, "realistic") {
		return StyleRealistic
	}
	return StyleGeneric
}

// Counters is the per-session numbering state for generic aliases.
// A fresh Counters starts every processing session.
type Counters map[model.EntityType]int

// NewCounters creates empty numbering state.
func NewCounters() Counters {
	return make(Counters)
}

// next increments and returns the counter for a type.
func (c Counters) next(t model.EntityType) int {
	c[t]++
	return c[t]
}

// SeedCounters rebuilds numbering state from an existing alias map, so a
// later pipeline call in the same session continues numbering where the
// previous call stopped instead of reissuing "Personne 1".
func SeedCounters(aliases map[string]string) Counters {
	c := NewCounters()
	for _, v := range aliases {
		for t, label := range genericLabels {
			if n, ok := numberedSuffix(v, label); ok && n > c[t] {
				c[t] = n
			}
		}
	}
	return c
}

// numberedSuffix parses "<label> <n>" and returns n.
func numberedSuffix(v, label string) (int, bool) {
	if !strings.HasPrefix(v, label+" ") {
		return 0, false
	}
	rest := v[len(label)+1:]
	n := 0
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if rest == "" {
		return 0, false
	}
	return n, true
}

// genericLabels are the per-type labels for generic aliases.
var genericLabels = map[model.EntityType]string{
	model.EntityPerson:  "Personne",
	model.EntityCompany: "Société",
	model.EntityAddress: "Adresse",
	model.EntityCity:    "Ville",
	model.EntityURL:     "Site",
	model.EntityUnknown: "Élément",
}

// Generator produces aliases in a fixed style using caller-owned
// numbering state.
type Generator struct {
	style    Style
	counters Counters
}

// NewGenerator creates a Generator. The counters belong to one session;
// reusing them across sessions leaks numbering continuity between
// documents that should look unrelated.
func NewGenerator(style Style, counters Counters) *Generator {
	if counters == nil {
		counters = NewCounters()
	}
	return &Generator{style: style, counters: counters}
}

// Generate returns the alias for originalText, creating and recording a
// new one if the alias map has no assignment yet. Identical original text
// always yields the identical alias for the lifetime of the map.
func (g *Generator) Generate(t model.EntityType, originalText string, aliasMap map[string]string) string {
	if existing, ok := aliasMap[originalText]; ok {
		return existing
	}

	var generated string
	if g.style == StyleRealistic {
		generated = g.realistic(t, originalText)
	} else {
		generated = g.generic(t, originalText)
	}

	if isAllUpper(originalText) && (t == model.EntityPerson || t == model.EntityCompany || t == model.EntityCity) {
		generated = strings.ToUpper(generated)
	}

	aliasMap[originalText] = generated
	return generated
}

// generic produces numbered labels, keeping structured values
// format-preserving so documents stay machine-readable.
func (g *Generator) generic(t model.EntityType, original string) string {
	switch t {
	case model.EntityEmail:
		return fmt.Sprintf("email%d@exemple.org", g.counters.next(t))
	case model.EntityPhone:
		return numberedDigits(original, g.counters.next(t))
	case model.EntityIBAN, model.EntitySSN:
		return maskKeepFirst4(original)
	case model.EntityPerson, model.EntityCompany, model.EntityAddress,
		model.EntityCity, model.EntityURL, model.EntityUnknown:
		return fmt.Sprintf("%s %d", genericLabels[t], g.counters.next(t))
	default:
		return fmt.Sprintf("%s %d", genericLabels[model.EntityUnknown], g.counters.next(model.EntityUnknown))
	}
}

// realistic produces plausible substitutes per type.
func (g *Generator) realistic(t model.EntityType, original string) string {
	switch t {
	case model.EntityPerson:
		return realisticPerson(original)
	case model.EntityCompany:
		return realisticCompany(original)
	case model.EntityAddress:
		return fmt.Sprintf("%d %s %s",
			1+pick(60), StreetTypes[pick(len(StreetTypes))], StreetNames[pick(len(StreetNames))])
	case model.EntityCity:
		return CityNames[pick(len(CityNames))]
	case model.EntityEmail:
		first := asciiFold(strings.ToLower(FirstNames[pick(len(FirstNames))]))
		last := asciiFold(strings.ToLower(LastNames[pick(len(LastNames))]))
		return fmt.Sprintf("%s.%s@%s", first, last, EmailDomains[pick(len(EmailDomains))])
	case model.EntityPhone:
		return regenerateDigits(original)
	case model.EntityIBAN, model.EntitySSN:
		return maskKeepFirst4(original)
	case model.EntityURL:
		return fmt.Sprintf("https://www.example.org/%s",
			asciiFold(strings.ToLower(CompanyNames[pick(len(CompanyNames))])))
	case model.EntityUnknown:
		return fmt.Sprintf("%s %d", genericLabels[model.EntityUnknown], g.counters.next(t))
	default:
		return fmt.Sprintf("%s %d", genericLabels[model.EntityUnknown], g.counters.next(model.EntityUnknown))
	}
}

// realisticPerson picks a random name matching the original's word count:
// a single word gets a single surname, anything longer gets first + last.
func realisticPerson(original string) string {
	if len(strings.Fields(original)) <= 1 {
		return LastNames[pick(len(LastNames))]
	}
	return FirstNames[pick(len(FirstNames))] + " " + LastNames[pick(len(LastNames))]
}

// realisticCompany preserves a recognized legal-form prefix and swaps the
// name part ("SARL Martin" becomes "SARL Quartz").
func realisticCompany(original string) string {
	fragment := CompanyNames[pick(len(CompanyNames))]
	fields := strings.Fields(original)
	if len(fields) > 1 && looksLikeLegalForm(fields[0]) {
		return fields[0] + " " + fragment
	}
	return fragment
}

// legalFormPrefixes recognized when preserving a company alias prefix.
var legalFormPrefixes = map[string]struct{}{
	"sarl": {}, "sas": {}, "sasu": {}, "sa": {}, "sci": {}, "eurl": {},
	"snc": {}, "gmbh": {}, "ag": {}, "ltd": {}, "llc": {}, "inc": {}, "plc": {},
}

func looksLikeLegalForm(word string) bool {
	_, ok := legalFormPrefixes[strings.ToLower(word)]
	return ok
}

// maskKeepFirst4 masks an account or ID number, preserving exactly the
// first four characters and every separator so the overall format
// survives. "FR76 3000 6000" becomes "FR76 XXXX XXXX".
func maskKeepFirst4(original string) string {
	var b strings.Builder
	kept := 0
	for _, r := range original {
		switch {
		case kept < 4:
			b.WriteRune(r)
			kept++
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune('X')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// numberedDigits zeroes every digit of the original, then stamps the
// counter into the last digit positions, preserving separators and any
// leading "+" prefix ("06 12 34 56 78" with n=3 → "00 00 00 00 03").
func numberedDigits(original string, n int) string {
	runes := []rune(original)
	positions := make([]int, 0, len(runes))
	for i, r := range runes {
		if unicode.IsDigit(r) {
			runes[i] = '0'
			positions = append(positions, i)
		}
	}

	suffix := fmt.Sprintf("%d", n)
	if len(positions) > 0 {
		if len(suffix) > len(positions) {
			suffix = suffix[len(suffix)-len(positions):]
		}
		offset := len(positions) - len(suffix)
		for i := 0; i < len(suffix); i++ {
			runes[positions[offset+i]] = rune(suffix[i])
		}
	}

	return string(runes)
}

// regenerateDigits replaces every digit with a random one, preserving
// the recognized international-prefix format: a leading "+" and up to
// three following digits stay untouched.
func regenerateDigits(original string) string {
	runes := []rune(original)

	start := 0
	if len(runes) > 0 && runes[0] == '+' {
		start = 1
		kept := 0
		for start < len(runes) && kept < 2 {
			if unicode.IsDigit(runes[start]) {
				kept++
			}
			start++
		}
	}

	for i := start; i < len(runes); i++ {
		if unicode.IsDigit(runes[i]) {
			runes[i] = rune('0' + pick(10))
		}
	}

	return string(runes)
}

// asciiFold strips combining marks after NFD decomposition, so pool names
// with accents stay usable in email local parts and URL paths.
func asciiFold(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) || r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
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

// pick returns a uniform random index in [0, n) from crypto/rand.
func pick(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("alias: crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}
