package textnorm

import "testing"

func TestFoldDiacritics(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Zamów żółć", "zamow zolc"},
		{"Kraków", "krakow"},
		{"ŁÓDŹ", "lodz"},
		{"plain ascii", "plain ascii"},
	}
	for _, c := range cases {
		if got := FoldDiacritics(c.in); got != c.want {
			t.Errorf("FoldDiacritics(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Poproszę   PIZZĘ!  ", "poprosze pizze"},
		{"co-macie, w menu?", "co macie w menu"},
		{"", ""},
		{"?!.,", ""},
		{"2x frytki", "2x frytki"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestContainsWordBoundaries(t *testing.T) {
	if !ContainsWord("poprosze frytki belgijskie", "frytki") {
		t.Error("expected word match for frytki")
	}
	if ContainsWord("poprosze frytki", "rak") {
		t.Error("substring must not match across word boundaries")
	}
	if ContainsWord("cokolwiek", "") {
		t.Error("empty word must not match")
	}
}

func TestContainsPhrase(t *testing.T) {
	if !ContainsPhrase("gdzie moge zjesc pizze", "moge zjesc") {
		t.Error("expected contiguous phrase match")
	}
	if ContainsPhrase("gdzie moge dzisiaj zjesc", "moge zjesc") {
		t.Error("non-contiguous words must not match as a phrase")
	}
	if !ContainsPhrase("Pizzeria Napoli", "pizzeria napoli") {
		t.Error("expected whole-string phrase match")
	}
}

func TestWordsNormalizesFirst(t *testing.T) {
	words := Words("Poproszę, dwie PIZZE!")
	want := []string{"poprosze", "dwie", "pizze"}
	if len(words) != len(want) {
		t.Fatalf("Words returned %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, words[i], want[i])
		}
	}
}
