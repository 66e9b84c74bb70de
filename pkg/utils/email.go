package utils

import "strings"

// NormalizeEmail canonicalizes an email address for storage and
// lookup: trimmed and lowercased, so the same mailbox always matches
// the same row.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
