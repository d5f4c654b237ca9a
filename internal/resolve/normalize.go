package resolve

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// normalize prepares a hint or candidate for matching: NFKC normalization,
// Unicode case folding, and whitespace collapsing.
func normalize(s string) string {
	s = norm.NFKC.String(s)
	s = foldCaser.String(s)
	return strings.Join(strings.Fields(s), " ")
}
