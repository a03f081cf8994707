package domain

import "strings"

// CanonicalHostname returns a hostname in canonical query form:
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot; transports append the root dot when building messages.
func CanonicalHostname(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}
