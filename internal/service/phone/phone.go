// Package phone normalizes raw phone strings into the digit form the
// messaging provider expects. It never rejects input; the provider is the
// source of truth for number validity.
package phone

import "strings"

// DefaultCountryPrefix is prepended when a number does not already carry it.
const DefaultCountryPrefix = "55"

// Normalize strips every non-digit character and prepends the default
// country prefix when absent. Empty or malformed input yields a best-effort
// digit string, possibly just the prefix.
func Normalize(raw string) string {
	return NormalizeWithPrefix(raw, DefaultCountryPrefix)
}

// NormalizeWithPrefix is Normalize with an explicit country prefix.
func NormalizeWithPrefix(raw, prefix string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if !strings.HasPrefix(digits, prefix) {
		return prefix + digits
	}
	return digits
}
