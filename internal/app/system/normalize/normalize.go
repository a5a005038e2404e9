// Package normalize canonicalizes user-supplied strings before they are
// stored or compared.
package normalize

import "strings"

// Email trims surrounding whitespace and lowercases the address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of
// whitespace to a single space. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role trims and lowercases a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status trims a task status. Case is preserved since status is free-form.
func Status(s string) string {
	return strings.TrimSpace(s)
}

// Text trims leading and trailing whitespace from free text such as
// comments and descriptions.
func Text(s string) string {
	return strings.TrimSpace(s)
}
