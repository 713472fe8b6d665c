// Package textnorm produces the canonical form of an utterance used by all
// matching in the pipeline: lowercased, diacritics folded, punctuation and
// whitespace collapsed. Normalized text is derived and disposable; it is
// never persisted.
package textnorm

import (
	"strings"
	"unicode"
)

// foldTable maps Polish (and common Latin) diacritics to ASCII base letters.
var foldTable = map[rune]rune{
	'ą': 'a', 'ć': 'c', 'ę': 'e', 'ł': 'l', 'ń': 'n',
	'ó': 'o', 'ś': 's', 'ź': 'z', 'ż': 'z',
	'á': 'a', 'à': 'a', 'ä': 'a', 'â': 'a',
	'é': 'e', 'è': 'e', 'ë': 'e', 'ê': 'e',
	'í': 'i', 'ì': 'i', 'ï': 'i', 'î': 'i',
	'ö': 'o', 'ô': 'o', 'ò': 'o',
	'ú': 'u', 'ù': 'u', 'ü': 'u', 'û': 'u',
	'ý': 'y', 'ç': 'c', 'ñ': 'n', 'š': 's', 'č': 'c', 'ž': 'z',
}

// FoldDiacritics lowercases the input and replaces accented letters with
// their ASCII base forms.
func FoldDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if folded, ok := foldTable[r]; ok {
			b.WriteRune(folded)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the canonical matching form of an utterance: lowercase,
// diacritics folded, punctuation turned into spaces, whitespace collapsed.
func Normalize(s string) string {
	folded := FoldDiacritics(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Words splits normalized text into tokens. Input is normalized first, so
// callers may pass raw utterances.
func Words(s string) []string {
	return strings.Fields(Normalize(s))
}

// ContainsWord reports whether the normalized text contains the given word
// with word boundaries (no substring bleed: "rak" does not match "frytki").
func ContainsWord(text, word string) bool {
	w := Normalize(word)
	if w == "" {
		return false
	}
	for _, tok := range Words(text) {
		if tok == w {
			return true
		}
	}
	return false
}

// ContainsPhrase reports whether the normalized text contains the normalized
// phrase as a contiguous word sequence.
func ContainsPhrase(text, phrase string) bool {
	p := Normalize(phrase)
	if p == "" {
		return false
	}
	t := Normalize(text)
	if t == p {
		return true
	}
	return strings.Contains(" "+t+" ", " "+p+" ")
}
