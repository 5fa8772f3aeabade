// Package phone canonicalizes Uzbek phone numbers so they can serve as a
// uniqueness key. This is a single-country rule, not a general E.164 library.
package phone

import "strings"

const (
	// Uzbekistan calling code and national significant-number length.
	CountryCode    = "998"
	NationalLength = 9
)

// Normalize strips everything except digits and a leading +, then applies the
// Uzbek regional rule. Total function: every input produces an output.
func Normalize(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	normalized := b.String()

	switch {
	case strings.HasPrefix(normalized, CountryCode):
		normalized = "+" + normalized
	case strings.HasPrefix(normalized, "+"+CountryCode):
		// already canonical
	case len(normalized) == NationalLength:
		// local number without country code
		normalized = "+" + CountryCode + normalized
	case !strings.HasPrefix(normalized, "+"):
		normalized = "+" + normalized
	}

	return normalized
}
