// Package namematch scores how well a typed player name matches a listed one.
package namematch

import (
	"slices"
	"strings"
)

// partialDiscount keeps a surname-only hit below an exact full-name hit.
const partialDiscount = 0.95

// Score returns a similarity in [0,1] between a query and a candidate name. It is
// case and accent insensitive and tolerates swapped given/family order, surname-only
// queries and initials ("L. Messi").
func Score(query, candidate string) float64 {
	q, c := Normalize(query), Normalize(candidate)
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1
	}

	qTokens, cTokens := strings.Fields(q), strings.Fields(c)

	best := similarity(q, c)
	if len(qTokens) > 1 {
		best = max(best, similarity(strings.Join(reversed(qTokens), " "), c))
		best = max(best, similarity(sortedJoin(qTokens), sortedJoin(cTokens)))
	}
	if len(qTokens) < len(cTokens) {
		best = max(best, partialDiscount*bestWindow(qTokens, cTokens))
	}
	if initialsMatch(qTokens, cTokens) || initialsMatch(reversed(qTokens), cTokens) {
		best = max(best, partialDiscount)
	}

	return clamp(best)
}

// bestWindow aligns the query tokens, in both orders, against every contiguous
// candidate window of the same length.
func bestWindow(qTokens, cTokens []string) float64 {
	n := len(qTokens)
	forward := strings.Join(qTokens, " ")
	backward := strings.Join(reversed(qTokens), " ")

	best := 0.0
	for start := 0; start+n <= len(cTokens); start++ {
		window := strings.Join(cTokens[start:start+n], " ")
		best = max(best, similarity(forward, window))
		if n > 1 {
			best = max(best, similarity(backward, window))
		}
	}
	return best
}

// initialsMatch accepts "l messi" for "lionel messi": same token count, every token
// equal or a one-letter prefix, and at least one full token.
func initialsMatch(qTokens, cTokens []string) bool {
	if len(qTokens) != len(cTokens) || len(qTokens) < 2 {
		return false
	}
	full := 0
	for i, qt := range qTokens {
		switch {
		case qt == cTokens[i]:
			full++
		case len([]rune(qt)) == 1 && strings.HasPrefix(cTokens[i], qt):
		default:
			return false
		}
	}
	return full > 0
}

func reversed(tokens []string) []string {
	out := slices.Clone(tokens)
	slices.Reverse(out)
	return out
}

func sortedJoin(tokens []string) string {
	out := slices.Clone(tokens)
	slices.Sort(out)
	return strings.Join(out, " ")
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
