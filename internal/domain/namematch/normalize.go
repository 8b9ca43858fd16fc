package namematch

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// transform.Chain keeps state between calls, so each goroutine takes its own.
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

// Letters that carry no combining mark and therefore survive NFD folding.
var letterFold = map[rune]string{
	'ø': "o",
	'ß': "ss",
	'æ': "ae",
	'œ': "oe",
	'ł': "l",
	'đ': "d",
	'ð': "d",
	'ı': "i",
	'þ': "th",
}

// Normalize lowercases name, strips diacritics and reduces punctuation to single
// spaces. "Ødegaard-Müller, J." becomes "odegaard muller j".
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	t := foldPool.Get().(transform.Transformer)
	folded, _, err := transform.String(t, name)
	t.Reset()
	foldPool.Put(t)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if repl, ok := letterFold[r]; ok {
			b.WriteString(repl)
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits a normalized name into words.
func Tokens(name string) []string {
	return strings.Fields(Normalize(name))
}
