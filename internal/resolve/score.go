package resolve

import "github.com/xrash/smetrics"

// SimilarityThreshold is the minimum normalized edit-distance similarity
// for a fuzzy match to be accepted.
const SimilarityThreshold = 0.6

// similarity returns a normalized Levenshtein similarity in [0, 1].
// Inputs are expected to be normalized already.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 1)
	return 1 - float64(dist)/float64(longest)
}
