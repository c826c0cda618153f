package assemble

import (
	"sort"
	"strings"

	"github.com/hazyhaar/whiteout-ext/internal/alias"
	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// maxMergeGap is the widest whitespace gap (in bytes) across which two
// adjacent person entities merge into one. One space or one newline;
// anything wider is prose, not a split name.
const maxMergeGap = 2

// Entities resolves every detected group into an entity, merges adjacent
// person fragments, and assigns aliases. The original text is needed to
// inspect the gap between adjacent entities and to slice merged spans.
//
// Every group produces exactly one entity before merging; none are
// dropped. Aliases are assigned after merging so the merged text is the
// consistency key ("Jean" + "Dupont" aliases as "Jean Dupont").
func Entities(text string, groups []model.DetectedGroup, remote map[string][]model.TouchstoneResult, aliasMap map[string]string, gen *alias.Generator) []model.Entity {
	entities := make([]model.Entity, 0, len(groups))
	for _, group := range groups {
		entities = append(entities, resolve(group, remote))
	}

	sort.Slice(entities, func(i, j int) bool { return entities[i].Start < entities[j].Start })
	entities = mergeAdjacentPersons(text, entities)

	for i := range entities {
		entities[i].ProposedAlias = gen.Generate(entities[i].Type, entities[i].Text, aliasMap)
	}

	return entities
}

// resolve cross-references one group's local type against the remote
// results for its text and constituent tokens.
func resolve(group model.DetectedGroup, remote map[string][]model.TouchstoneResult) model.Entity {
	entity := model.Entity{
		Text:  group.Text,
		Start: group.Start(),
		End:   group.End(),
	}

	matches := remoteFor(group, remote)

	switch group.Local {
	case model.LocalPattern:
		// Patterns are locally validated; the remote lookup is bypassed
		// entirely and cannot change the outcome.
		entity.Type = patternEntityType(group)
		entity.Confidence = model.ConfidenceHigh
		entity.Sources = []string{"pattern:" + patternOf(group).String()}

	case model.LocalCompanyCandidate:
		entity.Type = model.EntityCompany
		entity.Confidence = corroborated(matches)
		entity.Sources = append([]string{"local:legal_form"}, remoteSources(matches)...)

	case model.LocalPersonCandidate:
		entity.Type = model.EntityPerson
		entity.Confidence = corroborated(matches)
		entity.Sources = append([]string{"local:honorific"}, remoteSources(matches)...)

	case model.LocalAddressFragment:
		entity.Type = model.EntityAddress
		entity.Confidence = corroborated(matches)
		entity.Sources = append([]string{"local:street_type"}, remoteSources(matches)...)

	case model.LocalNone:
		entity.Type, entity.Confidence = classifyCandidate(matches)
		entity.Sources = append([]string{"local:capitalization"}, remoteSources(matches)...)
	}

	return entity
}

// corroborated upgrades a dictionary-seeded group to high confidence when
// any remote match agrees that its words are entity material.
func corroborated(matches []model.TouchstoneResult) model.EntityConfidence {
	if len(matches) > 0 {
		return model.ConfidenceHigh
	}
	return model.ConfidenceMedium
}

// classifyCandidate types a bare candidate group from its remote matches.
// Person evidence outranks place evidence outranks company evidence; a
// match that maps to no known type, or no match at all, yields an
// unknown/low entity that is surfaced rather than dropped.
func classifyCandidate(matches []model.TouchstoneResult) (model.EntityType, model.EntityConfidence) {
	var hasPerson, hasCity, hasCompany, hasOther bool
	for _, m := range matches {
		switch m.Type {
		case "first_name", "surname":
			hasPerson = true
		case "city", "commune":
			hasCity = true
		case "company":
			hasCompany = true
		default:
			hasOther = true
		}
	}

	switch {
	case hasPerson:
		return model.EntityPerson, model.ConfidenceMedium
	case hasCity:
		return model.EntityCity, model.ConfidenceMedium
	case hasCompany:
		return model.EntityCompany, model.ConfidenceMedium
	case hasOther:
		return model.EntityUnknown, model.ConfidenceLow
	default:
		return model.EntityUnknown, model.ConfidenceLow
	}
}

// remoteFor gathers the remote results for the group text and for every
// word token inside it.
func remoteFor(group model.DetectedGroup, remote map[string][]model.TouchstoneResult) []model.TouchstoneResult {
	matches := make([]model.TouchstoneResult, 0, 2)
	matches = append(matches, remote[group.Text]...)
	for _, term := range group.WordTerms() {
		if term == group.Text {
			continue
		}
		matches = append(matches, remote[term]...)
	}
	return matches
}

// remoteSources lists the dictionaries that matched, deduplicated.
func remoteSources(matches []model.TouchstoneResult) []string {
	seen := make(map[string]struct{}, len(matches))
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		key := "remote:" + m.Dict
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		sources = append(sources, key)
	}
	return sources
}

// patternOf returns the group's pattern type.
func patternOf(group model.DetectedGroup) model.PatternType {
	if len(group.Tokens) > 0 {
		return group.Tokens[0].Pattern
	}
	return model.PatternNone
}

// patternEntityType maps a pattern group to its entity type.
func patternEntityType(group model.DetectedGroup) model.EntityType {
	switch patternOf(group) {
	case model.PatternEmail:
		return model.EntityEmail
	case model.PatternPhone:
		return model.EntityPhone
	case model.PatternIBAN:
		return model.EntityIBAN
	case model.PatternNationalID:
		return model.EntitySSN
	case model.PatternURL:
		return model.EntityURL
	default:
		return model.EntityUnknown
	}
}

// mergeAdjacentPersons joins touching person entities whose gap is pure
// whitespace of at most maxMergeGap bytes. "Jean" and "Dupont" detected
// as two candidates are really one full name; the merged entity spans
// both, takes the higher confidence, and unions the sources.
func mergeAdjacentPersons(text string, entities []model.Entity) []model.Entity {
	if len(entities) < 2 {
		return entities
	}

	merged := make([]model.Entity, 0, len(entities))
	current := entities[0]

	for _, next := range entities[1:] {
		if current.Type == model.EntityPerson && next.Type == model.EntityPerson &&
			mergeableGap(text, current.End, next.Start) {
			current = model.Entity{
				Text:       text[current.Start:next.End],
				Start:      current.Start,
				End:        next.End,
				Type:       model.EntityPerson,
				Confidence: maxConfidence(current.Confidence, next.Confidence),
				Sources:    unionSources(current.Sources, next.Sources),
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}

	return append(merged, current)
}

func mergeableGap(text string, end, start int) bool {
	if start < end || start-end > maxMergeGap || end > len(text) || start > len(text) {
		return false
	}
	return strings.TrimSpace(text[end:start]) == ""
}

func maxConfidence(a, b model.EntityConfidence) model.EntityConfidence {
	if a > b {
		return a
	}
	return b
}

func unionSources(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	union := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		union = append(union, s)
	}
	return union
}
