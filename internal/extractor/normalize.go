package extractor

import (
	"regexp"
	"strings"
)

var (
	spacesRun     = regexp.MustCompile(`[ \t]+`)
	threePlusNewlines = regexp.MustCompile(`\n{3,}`)
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
)

// normalize collapses runs of horizontal whitespace to a single space, runs
// of three or more newlines to exactly two (paragraph breaks survive,
// excess blank lines don't), and trims leading/trailing whitespace, per
// spec.md §4.2.
func normalize(text string) string {
	s := trailingSpace.ReplaceAllString(text, "\n")
	s = spacesRun.ReplaceAllString(s, " ")
	s = threePlusNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
