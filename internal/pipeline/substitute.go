package pipeline

import (
	"sort"
	"strings"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// Substitute replaces every entity span in text with its alias
// (the accepted alias when a reviewer set one, the proposed one
// otherwise). It is pure and stateless.
//
// Entities are processed by descending start offset: replacing from the
// end of the text backward keeps every remaining span's offsets valid
// without tracking shifts. Spans are never adjusted here or anywhere
// after the assembler emits them.
func Substitute(text string, entities []model.Entity) string {
	ordered := make([]model.Entity, len(entities))
	copy(ordered, entities)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	out := text
	for _, e := range ordered {
		if e.Start < 0 || e.End > len(out) || e.Start >= e.End {
			continue
		}
		replacement := e.Alias()
		if replacement == "" {
			continue
		}
		out = out[:e.Start] + replacement + out[e.End:]
	}

	return out
}

// AliasTable builds the alias→original lookup for Deanonymize from an
// entity list.
func AliasTable(entities []model.Entity) map[string]string {
	table := make(map[string]string, len(entities))
	for _, e := range entities {
		if a := e.Alias(); a != "" {
			table[a] = e.Text
		}
	}
	return table
}

// Deanonymize restores original texts by replacing each alias with its
// original. Longer aliases are replaced first so a numbered alias never
// clobbers another that it prefixes ("Personne 1" inside "Personne 12").
func Deanonymize(text string, aliasTable map[string]string) string {
	aliases := make([]string, 0, len(aliasTable))
	for a := range aliasTable {
		aliases = append(aliases, a)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})

	out := text
	for _, a := range aliases {
		out = strings.ReplaceAll(out, a, aliasTable[a])
	}
	return out
}
