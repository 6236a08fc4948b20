package inventorycheck

import (
	"strings"
	"unicode"
)

// NormalizeName canonicalizes a raw drug name for comparison: lower-case,
// trim, punctuation replaced by spaces, whitespace runs collapsed.
// Idempotent; empty input yields empty output.
func NormalizeName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
