package service

import (
	"regexp"
	"strings"
	"time"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// sanitizeString collapses whitespace and trims the result. It is applied
// to free-text queries only.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// trimTitle strips surrounding whitespace from a title. Titles match
// exactly, so inner whitespace is kept.
func trimTitle(value string) string {
	return strings.TrimSpace(value)
}

// clampDepth applies def to non-positive values and caps the result at limit.
func clampDepth(value, def, limit int) int {
	if value <= 0 {
		value = def
	}
	if limit > 0 && value > limit {
		value = limit
	}
	if value < 1 {
		value = 1
	}
	return value
}

// clampTimeout applies def to non-positive values and caps the result at limit.
func clampTimeout(value, def, limit time.Duration) time.Duration {
	if value <= 0 {
		value = def
	}
	if limit > 0 && value > limit {
		value = limit
	}
	return value
}
