package namematch

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  Lionel   MESSI ":     "lionel messi",
		"Ødegaard-Müller, J.":   "odegaard muller j",
		"Radamel Falcao García": "radamel falcao garcia",
		"Łukasz Piszczek":       "lukasz piszczek",
		"Thomas Müßig":          "thomas mussig",
		"N'Golo Kanté":          "n golo kante",
		"":                      "",
		"---":                   "",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q): got=%q want=%q", in, got, want)
		}
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		candidate string
		min       float64
		max       float64
	}{
		{name: "identical", query: "Lionel Messi", candidate: "Lionel Messi", min: 1, max: 1},
		{name: "case and accents", query: "kylian mbappe", candidate: "Kylian Mbappé", min: 1, max: 1},
		{name: "swapped order", query: "Messi Lionel", candidate: "Lionel Messi", min: 1, max: 1},
		{name: "surname only", query: "Messi", candidate: "Lionel Messi", min: 0.95, max: 0.95},
		{name: "initial", query: "L. Messi", candidate: "Lionel Messi", min: 0.95, max: 0.95},
		{name: "typo", query: "Erling Halland", candidate: "Erling Haaland", min: 0.92, max: 0.93},
		{name: "suffix", query: "Ronaldo", candidate: "Ronaldinho", min: 0.7, max: 0.7},
		{name: "accented typo", query: "Odegard", candidate: "Martin Ødegaard", min: 0.95 * 7 / 8, max: 0.95 * 7 / 8},
		{name: "unrelated", query: "Zzzqqq", candidate: "Lionel Messi", min: 0, max: 0},
		{name: "empty query", query: " ", candidate: "Lionel Messi", min: 0, max: 0},
		{name: "empty candidate", query: "Messi", candidate: "", min: 0, max: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Score(tt.query, tt.candidate)
			if got < tt.min-1e-9 || got > tt.max+1e-9 {
				t.Fatalf("Score(%q, %q): got=%v want in [%v,%v]", tt.query, tt.candidate, got, tt.min, tt.max)
			}
		})
	}
}

func TestScoreFullNameBeatsSurname(t *testing.T) {
	t.Parallel()

	full := Score("Messi", "Messi")
	partial := Score("Messi", "Lionel Messi")
	if full <= partial {
		t.Fatalf("exact match should outrank surname window: full=%v partial=%v", full, partial)
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	t.Parallel()

	a := similarity("abcd", "bcda")
	b := similarity("bcda", "abcd")
	if math.Abs(a-b) > 1e-12 {
		t.Fatalf("similarity not symmetric: %v vs %v", a, b)
	}
}

func TestSimilarityCountsRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want float64
	}{
		{a: "messi", b: "messias", want: 1 - 2.0/7.0},
		{a: "muller", b: "müller", want: 1 - 1.0/6.0},
		{a: "", b: "", want: 1},
		{a: "abc", b: "", want: 0},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("similarity(%q, %q): got=%v want=%v", tt.a, tt.b, got, tt.want)
		}
	}
}
