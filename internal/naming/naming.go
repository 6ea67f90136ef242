package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SafeName converts a source name into a URL-safe identifier suitable
// for use as a proxy path segment.
// Runs of characters outside [a-zA-Z0-9_-] are collapsed to a single
// underscore, repeated underscores are collapsed, leading and trailing
// underscores are trimmed, and the result is lowercased.
// Example: "Billing Service (v2)" -> "billing_service_v2"
func SafeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-':
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		default:
			// '_' and every disallowed rune map to a single underscore
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}

var titleCaser = cases.Title(language.English)

// DisplayName converts a source name into a human-readable label for
// documentation surfaces. Separators become spaces and each word is
// title-cased. Example: "billing-service" -> "Billing Service"
func DisplayName(name string) string {
	if name == "" {
		return ""
	}
	cleaned := strings.NewReplacer("_", " ", "-", " ", ".", " ", "/", " ").Replace(name)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return titleCaser.String(cleaned)
}
