package graph

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fingerprintPrefix bounds how much document text feeds the fingerprint.
// 4KiB distinguishes real-world documents reliably; hashing entire large
// documents would cost time for no extra dedup value.
const fingerprintPrefix = 4096

var upperCaser = cases.Upper(language.French)

// Canonicalize normalizes entity text into its cross-document join key:
// trim, collapse internal whitespace, uppercase. It is a fixed point:
// canonicalizing a canonical form returns it unchanged.
func Canonicalize(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	return upperCaser.String(collapsed)
}

// Fingerprint hashes a bounded prefix of the document text. It
// identifies exact re-submissions of the same document and is never used
// for entity matching.
func Fingerprint(text string) string {
	prefix := text
	if len(prefix) > fingerprintPrefix {
		prefix = prefix[:fingerprintPrefix]
	}
	sum := blake2b.Sum256([]byte(prefix))
	return hex.EncodeToString(sum[:])
}

// NewID generates a sortable, collision-resistant identifier: a kind
// prefix, a big-endian millisecond timestamp, and 8 random bytes.
// Time first keeps IDs roughly insertion-ordered in indexes; the random
// suffix makes concurrent generation safe.
func NewID(kind string) string {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(time.Now().UnixMilli())) //nolint:gosec // UnixMilli is non-negative

	var suffix [8]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		panic("graph: crypto/rand unavailable: " + err.Error())
	}

	return fmt.Sprintf("%s_%s%s", kind, hex.EncodeToString(ts[:]), hex.EncodeToString(suffix[:]))
}
