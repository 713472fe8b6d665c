// Package extract pulls structured entities (quantity, location, cuisine)
// out of free text using lexicons, regular expressions, and a grammatical
// suffix normalizer for Polish place names.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/zamowbot/zamowbot/internal/textnorm"
)

// quantityUnitRe matches a numeral with an explicit count unit, e.g.
// "2x", "3 razy", "4 sztuki", "2 pieces". Checked first so that bare IDs or
// years are not misread as quantities.
var quantityUnitRe = regexp.MustCompile(`(\d+)\s*(x|razy|raz|sztuk\w*|times|pieces?)\b`)

// bareIntRe is the cautious fallback: a small standalone integer.
var bareIntRe = regexp.MustCompile(`\b([1-9]|1[0-9])\b`)

// NumberWords is the Polish (plus English) number-word lexicon.
var NumberWords = map[string]int{
	"jeden": 1, "jedna": 1, "jedno": 1,
	"dwa": 2, "dwie": 2,
	"trzy": 3, "cztery": 4,
	"piec": 5, "szesc": 6, "siedem": 7, "osiem": 8,
	"dziewiec": 9, "dziesiec": 10,
	"jedenascie": 11, "dwanascie": 12,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// Quantity extracts an item count from text, defaulting to 1.
func Quantity(text string) int {
	norm := textnorm.Normalize(text)

	if m := quantityUnitRe.FindStringSubmatch(norm); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}

	for _, word := range strings.Fields(norm) {
		if n, ok := NumberWords[word]; ok {
			return n
		}
	}

	if m := bareIntRe.FindStringSubmatch(norm); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 19 {
			return n
		}
	}

	return 1
}

// capitalizedPhraseRe matches a capitalized word sequence in the raw
// (un-normalized) utterance, diacritics included.
var capitalizedPhraseRe = regexp.MustCompile(`\p{Lu}[\p{Ll}]+(?:\s+\p{Lu}[\p{Ll}]+)*`)

// prepositionRe anchors a location at a preceding preposition.
var prepositionRe = regexp.MustCompile(`(?:^|\s)(?:w|we|na|pod|kolo|koło|obok|niedaleko|in|near|at)\s+(\p{Lu}[\p{Ll}]+(?:\s+\p{Lu}[\p{Ll}]+)*)`)

// locationBlacklist holds capitalized dish, drink, and brand words that must
// never be read as a city.
var locationBlacklist = map[string]bool{
	"pizza": true, "margherita": true, "pepperoni": true, "hawajska": true,
	"kebab": true, "frytki": true, "sushi": true, "burger": true,
	"pierogi": true, "cola": true, "coca": true, "pepsi": true,
	"sprite": true, "fanta": true, "red": true, "bull": true,
}

// caseSuffixes denoises Polish locative/instrumental endings toward the
// nominative city form, in replacement order.
var caseSuffixes = []struct {
	suffix      string
	replacement string
}{
	{"ach", "y"},
	{"ich", "ie"},
	{"ami", "a"},
	{"im", "ie"},
	{"iu", ""},
}

// Location extracts a place name from the raw utterance. It prefers a
// preposition-anchored capitalized phrase, falls back to the last
// capitalized phrase not on the blacklist, and returns "" when no confident
// candidate exists.
func Location(raw string) string {
	if m := prepositionRe.FindStringSubmatch(raw); m != nil {
		if candidate := filterBlacklisted(m[1]); candidate != "" {
			return denoiseCase(candidate)
		}
	}

	phrases := capitalizedPhraseRe.FindAllStringIndex(raw, -1)
	for i := len(phrases) - 1; i >= 0; i-- {
		start, end := phrases[i][0], phrases[i][1]
		if start == 0 {
			// Sentence-initial capitals are casing, not a place name.
			continue
		}
		if candidate := filterBlacklisted(raw[start:end]); candidate != "" {
			return denoiseCase(candidate)
		}
	}

	return ""
}

func filterBlacklisted(phrase string) string {
	for _, w := range strings.Fields(phrase) {
		if locationBlacklist[textnorm.FoldDiacritics(w)] {
			return ""
		}
	}
	return phrase
}

// denoiseCase rewrites the final word's grammatical ending toward the
// nominative ("Katowicach" -> "Katowicy" style), leaving short words alone.
func denoiseCase(phrase string) string {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return phrase
	}
	last := words[len(words)-1]
	lower := strings.ToLower(last)
	for _, cs := range caseSuffixes {
		if len(lower) > len(cs.suffix)+2 && strings.HasSuffix(lower, cs.suffix) {
			stem := last[:len(last)-len(cs.suffix)]
			words[len(words)-1] = stem + cs.replacement
			break
		}
	}
	return strings.Join(words, " ")
}

// cuisineLexicon maps keywords to canonical cuisine labels; first match wins.
var cuisineLexicon = []struct {
	keyword string
	cuisine string
}{
	{"pizza", "italian"},
	{"wloska", "italian"},
	{"wloskiej", "italian"},
	{"makaron", "italian"},
	{"kebab", "kebab"},
	{"sushi", "japanese"},
	{"japonska", "japanese"},
	{"chinska", "chinese"},
	{"chinskie", "chinese"},
	{"burger", "american"},
	{"burgery", "american"},
	{"amerykanska", "american"},
	{"indyjska", "indian"},
	{"curry", "indian"},
	{"wietnamska", "vietnamese"},
	{"pho", "vietnamese"},
	{"pierogi", "polish"},
	{"polska", "polish"},
	{"meksykanska", "mexican"},
	{"tacos", "mexican"},
}

// Cuisine returns the canonical cuisine label for the first matching keyword
// in the text, or "" when none matches.
func Cuisine(text string) string {
	norm := textnorm.Normalize(text)
	for _, entry := range cuisineLexicon {
		if textnorm.ContainsWord(norm, entry.keyword) {
			return entry.cuisine
		}
	}
	return ""
}
