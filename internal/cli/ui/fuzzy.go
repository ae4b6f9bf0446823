// Package ui holds small terminal output helpers for the weft CLI.
package ui

import (
	"fmt"
	"sort"
	"strings"
)

const (
	maxEditDistance = 3
	maxSuggestions  = 3
)

// Suggest returns up to three candidates within a small edit distance of
// input, closest first. Matching is case-insensitive. Used to turn unknown
// preset and image names into "did you mean" hints.
func Suggest(input string, candidates []string) []string {
	type scored struct {
		value string
		dist  int
	}

	var matches []scored
	lower := strings.ToLower(input)
	for _, candidate := range candidates {
		dist := editDistance(lower, strings.ToLower(candidate))
		if dist <= maxEditDistance {
			matches = append(matches, scored{value: candidate, dist: dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].dist < matches[j].dist
	})

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		out = append(out, matches[i].value)
	}
	return out
}

// DidYouMean formats suggestions as a hint line, or returns "" when there is
// nothing close enough to offer.
func DidYouMean(input string, candidates []string) string {
	matches := Suggest(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	quoted := make([]string, len(matches))
	for i, m := range matches {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return "did you mean " + strings.Join(quoted, " or ") + "?"
}

// editDistance is the Levenshtein distance between two strings, computed with
// a rolling pair of rows.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minOf(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minOf(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
