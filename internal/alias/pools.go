package alias

// Name pools used both for realistic alias generation and for decoy
// synthesis. Sharing one source matters for privacy: decoys drawn from
// the same distribution as generated aliases are statistically
// indistinguishable from genuine document terms.

// FirstNames is the first-name pool.
var FirstNames = []string{
	"Antoine", "Camille", "Claire", "Émile", "Hélène", "Julien", "Louise",
	"Marc", "Mathilde", "Nicolas", "Pauline", "Pierre", "Sophie", "Thomas",
	"Victor", "Anna", "Bruno", "Cécile", "David", "Élise", "François",
	"Isabelle", "Laurent", "Margaux", "Olivier", "Sarah", "Stéphane",
	"Valérie", "Xavier", "Yvonne",
}

// LastNames is the surname pool.
var LastNames = []string{
	"Arnaud", "Bernard", "Blanc", "Bonnet", "Chevalier", "Clément",
	"Dubois", "Faure", "Fontaine", "Garnier", "Gauthier", "Girard",
	"Lambert", "Laurent", "Lefèvre", "Legrand", "Leroy", "Marchand",
	"Mercier", "Meunier", "Morel", "Moreau", "Perrin", "Renard", "Robert",
	"Rousseau", "Roux", "Simon", "Vidal", "Vincent",
}

// CompanyNames is the company name-fragment pool.
var CompanyNames = []string{
	"Alizé", "Boréal", "Cristal", "Delta", "Éclat", "Horizon", "Lumen",
	"Méridien", "Nordet", "Octant", "Phare", "Quartz", "Rivage", "Sillage",
	"Tramont", "Vertex", "Zénith", "Altair", "Corail", "Granit",
}

// CityNames is the city pool for realistic city aliases.
var CityNames = []string{
	"Amiens", "Angers", "Besançon", "Brest", "Caen", "Dijon", "Grenoble",
	"Limoges", "Metz", "Nancy", "Nîmes", "Orléans", "Perpignan", "Reims",
	"Rennes", "Rouen", "Tours", "Troyes", "Valence",
}

// StreetNames is the street-name pool for realistic address aliases.
var StreetNames = []string{
	"des Acacias", "des Bleuets", "du Commerce", "des Érables",
	"de la Fontaine", "des Genêts", "de l'Horloge", "des Jardins",
	"des Lilas", "du Moulin", "des Noyers", "de l'Observatoire",
	"des Peupliers", "de la République", "des Sorbiers", "des Tilleuls",
}

// StreetTypes is the street-type pool for realistic address aliases.
var StreetTypes = []string{"rue", "avenue", "boulevard", "allée", "impasse", "place"}

// EmailDomains is the domain pool for realistic email aliases.
var EmailDomains = []string{
	"example.com", "example.org", "example.net", "mail.example.com",
}

// DecoyPool returns the combined term pool decoys are drawn from.
// First names, surnames, company fragments, and cities all appear, so a
// decoy batch has the same shape as real extracted candidates.
func DecoyPool() []string {
	pool := make([]string, 0, len(FirstNames)+len(LastNames)+len(CompanyNames)+len(CityNames))
	pool = append(pool, FirstNames...)
	pool = append(pool, LastNames...)
	pool = append(pool, CompanyNames...)
	pool = append(pool, CityNames...)
	return pool
}
