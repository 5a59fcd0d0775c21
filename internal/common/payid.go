package common

import "strings"

// MinPayIDLength is the minimum length of a sanitized pay-id.
const MinPayIDLength = 3

// SanitizePayID normalizes a pay-id alias before any comparison or storage:
// surrounding whitespace is trimmed and the alias is lowercased. The result
// is stable under re-application.
func SanitizePayID(payID string) string {
	return strings.ToLower(strings.TrimSpace(payID))
}

// IsValidPayID reports whether a sanitized pay-id is acceptable: long enough
// and limited to lowercase letters, digits, '.', '_' and '-'.
func IsValidPayID(payID string) bool {
	if len(payID) < MinPayIDLength {
		return false
	}
	for _, r := range payID {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
