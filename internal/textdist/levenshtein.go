// Package textdist implements Levenshtein-distance based "did you mean"
// suggestions for unknown frontmatter keys and invalid configuration enum
// values. The algorithm shape is grounded on the closest-match schema-field
// suggestion logic used elsewhere in the retrieved corpus for invalid YAML
// field names, rewritten here for Calvin's own suggestion call sites.
package textdist

import (
	"sort"
	"strings"
)

// maxSuggestDistance is the maximum edit distance considered a plausible
// typo, per spec section 4.1 ("Levenshtein-based did-you-mean suggestion
// (<=2 edits)").
const maxSuggestDistance = 2

// Distance computes the Levenshtein edit distance between a and b: the
// minimum number of single-character insertions, deletions, or
// substitutions required to turn a into b.
func Distance(a, b string) int {
	aLen := len(a)
	bLen := len(b)

	if aLen == 0 {
		return bLen
	}
	if bLen == 0 {
		return aLen
	}

	previousRow := make([]int, bLen+1)
	currentRow := make([]int, bLen+1)

	for i := 0; i <= bLen; i++ {
		previousRow[i] = i
	}

	for i := 1; i <= aLen; i++ {
		currentRow[0] = i

		for j := 1; j <= bLen; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			deletion := previousRow[j] + 1
			insertion := currentRow[j-1] + 1
			substitution := previousRow[j-1] + cost

			currentRow[j] = min(deletion, min(insertion, substitution))
		}

		previousRow, currentRow = currentRow, previousRow
	}

	return previousRow[bLen]
}

// Suggest finds the closest match to target among candidates whose edit
// distance is within maxSuggestDistance. Ties are broken alphabetically.
// Returns "" if no candidate is close enough.
func Suggest(target string, candidates []string) string {
	matches := closestMatches(target, candidates, 1)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// SuggestMessage wraps Suggest into a ready-to-display hint, e.g.
// `did you mean "targets"?`. Returns "" when no suggestion is available.
func SuggestMessage(target string, candidates []string) string {
	s := Suggest(target, candidates)
	if s == "" {
		return ""
	}
	return `did you mean "` + s + `"?`
}

type match struct {
	value    string
	distance int
}

// closestMatches returns up to maxResults candidates within
// maxSuggestDistance of target, sorted by distance then alphabetically.
func closestMatches(target string, candidates []string, maxResults int) []string {
	targetLower := strings.ToLower(target)

	var matches []match
	for _, c := range candidates {
		cLower := strings.ToLower(c)
		if cLower == targetLower {
			continue
		}
		d := Distance(targetLower, cLower)
		if d <= maxSuggestDistance {
			matches = append(matches, match{value: c, distance: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].value < matches[j].value
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.value
	}
	return out
}
