// Package fuzzy implements the token-sort similarity score used for
// watchlist screening.
package fuzzy

import (
	"sort"
	"strings"
)

// TokenSortRatio scores the similarity of two names on a 0-100 scale.
// Both sides are lowercased and their whitespace-separated tokens sorted
// before comparison, so word order never affects the score. The comparison
// is an insert/delete edit distance normalised by the combined length;
// a substitution counts as one deletion plus one insertion.
func TokenSortRatio(a, b string) float64 {
	na := normalize(a)
	nb := normalize(b)
	if na == "" && nb == "" {
		return 100
	}
	if na == "" || nb == "" {
		return 0
	}
	ra := []rune(na)
	rb := []rune(nb)
	dist := indelDistance(ra, rb)
	return 100 * (1 - float64(dist)/float64(len(ra)+len(rb)))
}

func normalize(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func indelDistance(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}
	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 2
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution as delete+insert
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
