package usecase

import (
	"regexp"
	"strings"
)

var (
	// Exactly one character is allowed on each side of the word, so
	// "(pronunciation)" and "(English pronunciation: x)" are left alone.
	pronunciationPattern = regexp.MustCompile(`(?i)\([^)]pronunciation[^)]\)`)
	citationPattern      = regexp.MustCompile(`\[\p{Nd}+\]`)
)

// Clean strips pronunciation notes and numeric citation markers from an
// encyclopedia summary and collapses whitespace.
func Clean(text string) string {
	text = pronunciationPattern.ReplaceAllString(text, "")
	text = citationPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
