// Package intent classifies one utterance into an IntentResult using an
// ordered cascade of rule guards, catalog rules, regex rules, and a
// pluggable fallback classifier.
package intent

import (
	"regexp"

	"github.com/zamowbot/zamowbot/internal/textnorm"
)

// Keyword families. All entries are in normalized (lowercase, folded) form;
// matching is word/phrase based, never raw substring.

var orderVerbs = []string{
	"zamow", "zamawiam", "zamowic", "zamowie", "poprosze", "prosze o",
	"wezme", "kupie", "chce zamowic", "chcialbym zamowic", "chcialabym zamowic",
	"dodaj", "zamowmy",
	"order", "buy",
}

var discoveryKeywords = []string{
	"znajdz", "wyszukaj", "szukam", "poszukaj", "gdzie zjem", "gdzie moge zjesc",
	"jakies restauracje", "restauracje w poblizu", "cos do jedzenia",
	"find", "search", "nearby",
}

var recommendKeywords = []string{
	"polec", "polecasz", "co polecasz", "zaproponuj", "zaproponujesz",
	"co warto", "cos dobrego", "recommend",
}

var uncertaintyKeywords = []string{
	"nie wiem", "wszystko jedno", "obojetnie", "cokolwiek", "sam wybierz",
}

var moreOptionsKeywords = []string{
	"wiecej", "pokaz wiecej", "inne", "inne opcje", "cos innego",
	"nastepne", "kolejne", "more", "other options",
}

var menuKeywords = []string{
	"menu", "karta", "karte", "co macie", "co maja", "co jest w menu",
	"co mozna zamowic", "oferta",
}

var yesWords = []string{
	"tak", "pewnie", "jasne", "ok", "okej", "oczywiscie", "zgadza sie",
	"potwierdzam", "yes", "yep", "sure",
}

var noWords = []string{
	"nie", "anuluj", "rezygnuje", "nie chce", "no", "nope", "cancel",
}

var showWords = []string{"pokaz", "wyswietl", "zobacz", "show"}

var restaurantWords = []string{"restauracja", "restauracje", "restauracji", "lokal", "lokale", "knajpa", "knajpy"}

// foodWords is the exploratory lexicon: dish words that alone suggest the
// user is thinking about food, not yet ordering.
var foodWords = []string{
	"pizza", "pizze", "kebab", "kebaba", "frytki", "sushi", "burger", "burgera",
	"pierogi", "zupa", "zupe", "salatka", "salatke", "kurczak", "kurczaka",
	"makaron", "lazania", "tortilla", "nalesniki", "ramen", "pho", "curry",
	"kanapka", "kanapke", "hot dog", "hotdog", "lody", "deser", "ciasto",
	"schabowy", "bigos", "golabki", "placki",
}

// Structural regexes, over normalized text.
var (
	// bareNumeralRe matches an utterance that is only a small number,
	// optionally with a polite wrapper ("poprosze 2", "numer 3").
	bareNumeralRe = regexp.MustCompile(`^(?:poprosze |numer |opcja )?([1-9]|1[0-9]|20)$`)

	// menuRequestRe catches menu phrasing like "pokaz menu", "jakie jest menu",
	// "co maja w menu".
	menuRequestRe = regexp.MustCompile(`\b(pokaz|poprosze|jakie jest|co jest w|co maja w|daj)\b.*\bmenu\b|\bmenu\b.*\b(poprosze|prosze)\b`)

	// discoveryRe catches discovery phrasing like "gdzie zjem pizze w krakowie",
	// "cos na miasto".
	discoveryRe = regexp.MustCompile(`\b(gdzie|jakie|jaka|co)\b.*\b(zjem|zjesc|restauracj\w*|polecasz|dobrego)\b`)
)

func containsAny(norm string, phrases []string) bool {
	for _, p := range phrases {
		if textnorm.ContainsPhrase(norm, p) {
			return true
		}
	}
	return false
}

// ContainsFoodWord reports whether the text mentions a known dish word.
func ContainsFoodWord(text string) bool {
	return containsAny(textnorm.Normalize(text), foodWords)
}

// ContainsOrderVerb reports whether the text carries an ordering verb.
func ContainsOrderVerb(text string) bool {
	return containsAny(textnorm.Normalize(text), orderVerbs)
}

// isBareAffirmation reports whether the utterance is nothing but agreement.
func isBareAffirmation(norm string) bool {
	if norm == "" {
		return false
	}
	for _, w := range yesWords {
		if norm == w {
			return true
		}
	}
	return norm == "tak tak" || norm == "no tak"
}

// isNegation reports whether the utterance reads as refusal.
func isNegation(norm string) bool {
	return containsAny(norm, noWords)
}
