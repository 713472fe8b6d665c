// Package catalog matches known restaurant display names inside free text.
// The catalog is a small static list loaded from the menu repository, so a
// per-name normalized phrase check stays effectively constant time.
package catalog

import (
	"log/slog"
	"sort"

	"github.com/zamowbot/zamowbot/internal/textnorm"
)

// Matcher holds the normalized catalog of restaurant display names.
type Matcher struct {
	// entries are sorted longest-first so "Pizzeria Roma Express" wins over
	// "Pizzeria Roma" when both appear in the catalog.
	entries []entry
}

type entry struct {
	normalized string
	display    string
}

// NewMatcher builds a matcher from restaurant display names.
func NewMatcher(names []string) *Matcher {
	m := &Matcher{entries: make([]entry, 0, len(names))}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		norm := textnorm.Normalize(name)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		m.entries = append(m.entries, entry{normalized: norm, display: name})
	}
	sort.Slice(m.entries, func(i, j int) bool {
		return len(m.entries[i].normalized) > len(m.entries[j].normalized)
	})
	slog.Debug("catalog matcher built", "names", len(m.entries))
	return m
}

// Match returns the display name of the first (longest) catalog restaurant
// whose name occurs in the text as a whole phrase.
func (m *Matcher) Match(text string) (string, bool) {
	norm := textnorm.Normalize(text)
	if norm == "" {
		return "", false
	}
	for _, e := range m.entries {
		if textnorm.ContainsPhrase(norm, e.normalized) {
			return e.display, true
		}
	}
	return "", false
}

// Names returns the catalog display names, longest first.
func (m *Matcher) Names() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.display
	}
	return out
}
