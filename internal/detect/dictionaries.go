package detect

// Dictionaries are intentionally small: they exist to seed detection
// passes with high-precision anchors, not to enumerate the world. The
// remote classification service carries the large dictionaries.

// stopWords per supported language, lowercase. Used both for language
// voting and to keep function words out of candidate groups.
var stopWords = map[string]map[string]struct{}{
	"fr": setOf(
		"le", "la", "les", "un", "une", "des", "du", "de", "d'", "au", "aux",
		"et", "ou", "mais", "donc", "or", "ni", "car", "que", "qui", "quoi",
		"dont", "où", "je", "tu", "il", "elle", "on", "nous", "vous", "ils",
		"elles", "ce", "cet", "cette", "ces", "mon", "ton", "son", "ma", "ta",
		"sa", "mes", "tes", "ses", "notre", "votre", "leur", "leurs", "à",
		"dans", "par", "pour", "en", "vers", "avec", "sans", "sous", "sur",
		"est", "sont", "été", "être", "avoir", "fait", "faire", "plus",
		"moins", "très", "bien", "tout", "toute", "tous", "toutes", "autre",
		"même", "aussi", "comme", "depuis", "pendant", "avant", "après",
		"entre", "pas", "ne", "non", "oui", "si", "se", "s'", "y", "lui",
	),
	"en": setOf(
		"the", "a", "an", "and", "or", "but", "nor", "for", "yet", "so",
		"of", "to", "in", "on", "at", "by", "with", "from", "into", "about",
		"as", "is", "are", "was", "were", "be", "been", "being", "have",
		"has", "had", "do", "does", "did", "will", "would", "shall",
		"should", "may", "might", "can", "could", "must", "i", "you", "he",
		"she", "it", "we", "they", "this", "that", "these", "those", "my",
		"your", "his", "her", "its", "our", "their", "not", "no", "yes",
		"all", "any", "some", "more", "most", "other", "such", "than",
		"then", "there", "here", "when", "where", "which", "who", "whom",
	),
	"de": setOf(
		"der", "die", "das", "ein", "eine", "einen", "einem", "einer",
		"und", "oder", "aber", "denn", "sondern", "doch", "von", "zu",
		"in", "an", "auf", "bei", "mit", "nach", "seit", "aus", "für",
		"durch", "gegen", "ohne", "um", "ist", "sind", "war", "waren",
		"sein", "haben", "hat", "hatte", "wird", "werden", "wurde", "kann",
		"ich", "du", "er", "sie", "es", "wir", "ihr", "mein", "dein",
		"nicht", "kein", "ja", "nein", "auch", "noch", "schon", "nur",
		"sehr", "mehr", "alle", "als", "wenn", "dann", "dort", "hier",
		"was", "wer", "wie", "wo", "dass", "dem", "den", "des",
	),
}

// legalForms per jurisdiction, lowercase. A legal-form token seeds a
// company candidate group.
var legalForms = map[string]map[string]struct{}{
	"FR": setOf(
		"sarl", "sas", "sasu", "sa", "sci", "eurl", "snc", "scp", "scop",
		"selarl", "gie",
	),
	"DE": setOf(
		"gmbh", "ag", "kg", "ohg", "ug", "ev", "e.v.", "gbr", "kgaa",
	),
	"EN": setOf(
		"ltd", "llc", "inc", "corp", "plc", "llp", "co", "gmbh",
	),
}

// honorifics, lowercase with trailing periods stripped. Single-letter
// entries ("m") additionally require a trailing period token in the
// stream to avoid claiming stray capitals.
var honorifics = map[string]struct{}{
	"m": {}, "mme": {}, "mlle": {}, "me": {}, "dr": {}, "pr": {},
	"mr": {}, "mrs": {}, "ms": {}, "miss": {}, "prof": {}, "sir": {},
	"herr": {}, "frau": {},
}

// streetTypes, lowercase. A street-type token seeds an address group.
var streetTypes = map[string]struct{}{
	// French
	"rue": {}, "avenue": {}, "boulevard": {}, "allée": {}, "impasse": {},
	"place": {}, "chemin": {}, "quai": {}, "cours": {}, "passage": {},
	"square": {},
	// English
	"street": {}, "road": {}, "lane": {}, "drive": {}, "court": {},
	// German
	"straße": {}, "strasse": {}, "weg": {}, "platz": {}, "gasse": {},
}

// DefaultJurisdictions is the legal-form lookup order when the caller
// does not restrict jurisdictions.
var DefaultJurisdictions = []string{"FR", "DE", "EN"}

func setOf(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}
