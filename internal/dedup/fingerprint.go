package dedup

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns text in the form fingerprints are computed over.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = cases.Lower(language.Und).String(text)
	return strings.Join(strings.Fields(text), " ")
}

// Fingerprint returns the hex digest of the normalized text.
func Fingerprint(text string) string {
	sum := blake2b.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}
