package token

import "strings"

// ValidIBAN reports whether the candidate passes the ISO 13616 mod-97
// checksum. Spaces are ignored; letters are case-insensitive.
//
// The check rearranges the first four characters to the end, maps letters
// A-Z to 10-35, and computes the resulting big number modulo 97
// digit-by-digit. A valid IBAN leaves remainder 1.
func ValidIBAN(candidate string) bool {
	s := strings.ToUpper(strings.ReplaceAll(candidate, " ", ""))
	if len(s) < 15 || len(s) > 34 {
		return false
	}

	// Country code, two check digits, then BBAN.
	if !isUpperAlpha(s[0]) || !isUpperAlpha(s[1]) || !isDigit(s[2]) || !isDigit(s[3]) {
		return false
	}

	rearranged := s[4:] + s[:4]

	// Digit-by-digit mod 97 avoids big-integer arithmetic: the number has
	// up to 38 decimal digits once letters are expanded.
	remainder := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case isDigit(c):
			remainder = (remainder*10 + int(c-'0')) % 97
		case isUpperAlpha(c):
			v := int(c-'A') + 10
			remainder = (remainder*100 + v) % 97
		default:
			return false
		}
	}

	return remainder == 1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isUpperAlpha(c byte) bool { return c >= 'A' && c <= 'Z' }
