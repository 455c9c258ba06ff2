// Package normalize holds small input normalizers applied before validation
// and storage. Handlers normalize first, then validate, so that equivalent
// inputs ("  User@Example.COM " vs "user@example.com") behave identically.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Enum lowercases and trims an enum-valued field (status, role, vote value).
func Enum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Text trims surrounding whitespace from free-form text (titles,
// descriptions, comments, join-request messages).
func Text(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a query or form parameter.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
