// Package models defines menu and disambiguation structures for zamowbot.
package models

// Restaurant is one known venue in the catalog.
type Restaurant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Cuisine  string `json:"cuisine,omitempty"`
}

// MenuItem is one orderable dish. PriceGrosze is kept in the repository only;
// it must never appear in anything derived from language-model output.
type MenuItem struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
	PriceGrosze  int    `json:"price_grosze,omitempty"`
	Available    bool   `json:"available"`
}

// DisambiguationKind tags the variant of a DisambiguationResult.
type DisambiguationKind string

const (
	// DisambiguationItemNotFound means no menu item matched the query.
	DisambiguationItemNotFound DisambiguationKind = "ITEM_NOT_FOUND"
	// DisambiguationAddItem means the query resolved to a single item.
	DisambiguationAddItem DisambiguationKind = "ADD_ITEM"
	// DisambiguationRequired means matches span multiple restaurants and the
	// caller must ask the user which one they meant.
	DisambiguationRequired DisambiguationKind = "DISAMBIGUATION_REQUIRED"
)

// CandidateGroup is one restaurant and its matching items, used when
// disambiguation is required.
type CandidateGroup struct {
	Restaurant Restaurant `json:"restaurant"`
	Items      []MenuItem `json:"items"`
}

// DisambiguationResult is computed fresh per call and never cached across
// turns, since menu state can change between turns.
type DisambiguationResult struct {
	Kind       DisambiguationKind `json:"kind"`
	Item       *MenuItem          `json:"item,omitempty"`
	Restaurant *Restaurant        `json:"restaurant,omitempty"`
	Candidates []CandidateGroup   `json:"candidates,omitempty"`
}
