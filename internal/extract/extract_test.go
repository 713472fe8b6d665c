package extract

import "testing"

func TestQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"poprosze 2x frytki", 2},
		{"3 razy kebab", 3},
		{"dwie pizze", 2},
		{"five burgers", 5},
		{"poprosze 4 sztuki", 4},
		{"poprosze pizze", 1},
		{"", 1},
	}
	for _, c := range cases {
		if got := Quantity(c.in); got != c.want {
			t.Errorf("Quantity(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestLocationPrepositionAnchored(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"znajdz pizze w Krakowie", "Krakowie"},
		{"szukam restauracji we Wroclawiu", "Wroclaw"},
		{"gdzie zjem kebaba w Nowym Targu", "Nowym Targu"},
		{"poprosze pizze", ""},
	}
	for _, c := range cases {
		if got := Location(c.in); got != c.want {
			t.Errorf("Location(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLocationSkipsBlacklistAndSentenceStart(t *testing.T) {
	if got := Location("Poprosze jedna Pizza Margherita"); got != "" {
		t.Errorf("dish name read as location: %q", got)
	}
	if got := Location("Znajdz cos dobrego"); got != "" {
		t.Errorf("sentence-initial capital read as location: %q", got)
	}
}

func TestCuisine(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"najlepsza pizza w miescie", "italian"},
		{"mam ochote na sushi", "japanese"},
		{"cos z kuchni polska", "polish"},
		{"cokolwiek", ""},
	}
	for _, c := range cases {
		if got := Cuisine(c.in); got != c.want {
			t.Errorf("Cuisine(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
