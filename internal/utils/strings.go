package utils

import "strings"

// Safe returns v trimmed, or fallback when blank.
func Safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
