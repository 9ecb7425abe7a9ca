package util

import (
	"regexp"
	"strings"
)

var (
	// multiSpacePattern matches runs of whitespace, including newlines inside header cells.
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// CleanCell trims a spreadsheet cell and collapses internal whitespace.
// Non-breaking spaces, common in exported sheets, are treated as spaces.
func CleanCell(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// HeaderKey normalizes a header label for lookups: cleaned and upper-cased.
func HeaderKey(label string) string {
	return strings.ToUpper(CleanCell(label))
}

// NormalizeSector is the sector form used by the sector pages: trimmed and upper-cased.
func NormalizeSector(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
