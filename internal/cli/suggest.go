// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggest.go - "Did you mean?" suggestions for mistyped commands.
//
// Uses Levenshtein distance with a length-scaled threshold so short
// typos ("bnech" -> "bench") are caught without suggesting wildly
// unrelated commands.

package cli

import "strings"

// validCommands lists all top-level commands for typo suggestions.
var validCommands = []string{
	"demo",
	"bench",
	"watch",
	"history",
	"export",
	"config",
	"repl",
	"version",
	"help",
}

// SuggestCommand returns the closest valid command to the input, or
// empty string if nothing is close enough.
func SuggestCommand(input string) string {
	return suggestFrom(input, validCommands)
}

// suggestFrom returns the closest candidate to input within a
// length-scaled edit distance, or "" when no candidate qualifies.
// An exact match returns "" (nothing to suggest).
func suggestFrom(input string, candidates []string) string {
	if len(input) < 2 {
		return ""
	}

	input = strings.ToLower(input)

	// Scale the allowed distance with input length: longer words
	// tolerate more edits before a suggestion stops making sense.
	maxDistance := 1
	if len(input) >= 4 {
		maxDistance = 2
	}
	if len(input) > 8 {
		maxDistance = 3
	}

	best := ""
	bestDistance := maxDistance + 1
	for _, candidate := range candidates {
		d := levenshteinDistance(input, strings.ToLower(candidate))
		if d == 0 {
			return "" // exact match, no suggestion needed
		}
		if d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}

	if bestDistance <= maxDistance {
		return best
	}
	return ""
}

// levenshteinDistance computes edit distance using two rows.
func levenshteinDistance(a, b string) int {
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

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
