package decoy

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/hazyhaar/whiteout-ext/internal/alias"
)

// Mix returns the real terms mixed with synthetic decoys, shuffled, plus
// the set of real terms so the caller can strip decoy responses later.
//
// The decoy budget is min(ceil(len(real)*ratio), maxBatch-len(real)):
// real terms are never dropped to make room for decoys; only the decoy
// count shrinks under batch-size pressure.
func Mix(realTerms []string, ratio float64, maxBatch int) ([]string, map[string]struct{}) {
	realSet := make(map[string]struct{}, len(realTerms))
	for _, t := range realTerms {
		realSet[t] = struct{}{}
	}

	decoyCount := int(math.Ceil(float64(len(realTerms)) * ratio))
	if room := maxBatch - len(realTerms); room < decoyCount {
		decoyCount = room
	}
	if decoyCount < 0 {
		decoyCount = 0
	}

	mixed := make([]string, 0, len(realTerms)+decoyCount)
	mixed = append(mixed, realTerms...)
	mixed = append(mixed, draw(alias.DecoyPool(), decoyCount, realSet)...)

	shuffle(mixed)
	return mixed, realSet
}

// draw picks n distinct terms from the pool, skipping any that collide
// with a real term: a pool term that is also in the document must stay
// classified, so it cannot double as a decoy.
func draw(pool []string, n int, exclude map[string]struct{}) []string {
	picked := make([]string, 0, n)
	used := make(map[string]struct{}, n)

	// Bounded attempts: the pool is finite and may be mostly excluded.
	for attempts := 0; len(picked) < n && attempts < n*10; attempts++ {
		term := pool[randIndex(len(pool))]
		if _, dup := used[term]; dup {
			continue
		}
		if _, real := exclude[term]; real {
			continue
		}
		used[term] = struct{}{}
		picked = append(picked, term)
	}

	return picked
}

// shuffle performs a Fisher-Yates shuffle driven by crypto/rand.
func shuffle(terms []string) {
	for i := len(terms) - 1; i > 0; i-- {
		j := randIndex(i + 1)
		terms[i], terms[j] = terms[j], terms[i]
	}
}

// randIndex returns a uniform random index in [0, n) from crypto/rand.
// Randomness failure here would be a broken operating system; falling
// back to a weaker source would silently void the privacy property, so
// we panic instead.
func randIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("decoy: crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}
