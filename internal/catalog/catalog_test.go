package catalog

import "testing"

func TestMatchPrefersLongestName(t *testing.T) {
	m := NewMatcher([]string{"Pizzeria Roma", "Pizzeria Roma Express", "Kebab King"})
	name, ok := m.Match("zamow cos z Pizzeria Roma Express prosze")
	if !ok || name != "Pizzeria Roma Express" {
		t.Fatalf("got (%q, %v), want the longer catalog name", name, ok)
	}
}

func TestMatchWholePhraseOnly(t *testing.T) {
	m := NewMatcher([]string{"Bar Krakus"})
	if _, ok := m.Match("bar krakusem sie nie interesuje"); ok {
		t.Error("partial word must not match the catalog name")
	}
	if name, ok := m.Match("Poprosze pierogi z Bar Krakus"); !ok || name != "Bar Krakus" {
		t.Errorf("got (%q, %v), want whole-phrase match", name, ok)
	}
}

func TestMatchNormalizesDiacritics(t *testing.T) {
	m := NewMatcher([]string{"Zajazd Złoty Róg"})
	name, ok := m.Match("jadlem w zajazd zloty rog wczoraj")
	if !ok || name != "Zajazd Złoty Róg" {
		t.Fatalf("got (%q, %v), want diacritic-folded match", name, ok)
	}
}

func TestMatchEmptyCatalogAndText(t *testing.T) {
	m := NewMatcher(nil)
	if _, ok := m.Match("cokolwiek"); ok {
		t.Error("empty catalog must not match")
	}
	m = NewMatcher([]string{"Kebab King"})
	if _, ok := m.Match("   "); ok {
		t.Error("blank text must not match")
	}
}

func TestNamesDedupes(t *testing.T) {
	m := NewMatcher([]string{"Kebab King", "KEBAB KING", "Pizzeria Napoli"})
	if got := len(m.Names()); got != 2 {
		t.Errorf("Names() returned %d entries, want 2 after dedupe", got)
	}
}
