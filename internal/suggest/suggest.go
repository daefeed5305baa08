// Package suggest finds the registered name closest to a misspelt one, for
// "did you mean" hints in decode errors.
package suggest

import (
	"strings"
	"unicode"
)

// MinScore is the similarity a candidate needs to be suggested.
const MinScore = 0.6

// Closest returns the candidate most similar to name. Ties keep the earlier
// candidate. ok is false when no candidate reaches MinScore.
func Closest(name string, candidates []string) (best string, ok bool) {
	key := normalize(name)
	top := MinScore

	for _, c := range candidates {
		if s := similarity(key, normalize(c)); s >= top && (!ok || s > top) {
			best, top, ok = c, s, true
		}
	}

	return best, ok
}

// normalize folds case and drops the separators markup names commonly use.
func normalize(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch r {
		case '-', '_', '.', ' ':
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// similarity maps the edit distance of a and b onto [0, 1].
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)

	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}

	return 1 - float64(distance(ra, rb))/float64(longest)
}

// distance is the Levenshtein distance of a and b in runes, computed over two
// rows.
func distance(a, b []rune) int {
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}
