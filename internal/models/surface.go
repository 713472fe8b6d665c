// Package models defines the reply-surface contract for zamowbot.
package models

// SurfaceKey names one class of system reply. The catalog is closed and
// versioned: adding a key requires adding a template and, where applicable,
// a detection rule — treat that as a schema migration.
type SurfaceKey string

const (
	SurfaceAskLocation           SurfaceKey = "ask_location"
	SurfaceChooseRestaurant      SurfaceKey = "choose_restaurant"
	SurfaceAskRestaurantForMenu  SurfaceKey = "ask_restaurant_for_menu"
	SurfaceAskRestaurantForOrder SurfaceKey = "ask_restaurant_for_order"
	SurfaceClarifyItems          SurfaceKey = "clarify_items"
	SurfaceItemNotFound          SurfaceKey = "item_not_found"
	SurfaceItemUnavailable       SurfaceKey = "item_unavailable"
	SurfaceConfirmAdd            SurfaceKey = "confirm_add"
	SurfaceCartEmpty             SurfaceKey = "cart_empty"
	SurfaceRestaurantsFound      SurfaceKey = "restaurants_found"
	SurfaceMenuListing           SurfaceKey = "menu_listing"
	SurfaceOrderSummary          SurfaceKey = "order_summary"
	SurfaceOrderConfirmed        SurfaceKey = "order_confirmed"
	SurfaceOrderCancelled        SurfaceKey = "order_cancelled"
	SurfaceHelp                  SurfaceKey = "help"
	SurfaceError                 SurfaceKey = "error"
)

// SurfaceOption is one selectable choice attached to a reply.
type SurfaceOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DialogSurface is a render request: which surface, with which facts.
type DialogSurface struct {
	Key     SurfaceKey     `json:"key"`
	Facts   map[string]any `json:"facts,omitempty"`
	Options []SurfaceOption `json:"options,omitempty"`
}

// UIHints accompany a rendered reply so channel frontends can show choices.
type UIHints struct {
	SurfaceKey SurfaceKey      `json:"surface_key"`
	Options    []SurfaceOption `json:"options,omitempty"`
}

// RenderedSurface is the deterministic baseline reply for one turn.
type RenderedSurface struct {
	Reply   string  `json:"reply"`
	UIHints UIHints `json:"ui_hints"`
}

// HandlerResult is what a domain handler returns for one turn. Its optional
// fields are the exact contract surface detection pattern-matches against.
type HandlerResult struct {
	Reply              string           `json:"reply,omitempty"`
	Surface            *DialogSurface   `json:"surface,omitempty"`
	NeedsClarification bool             `json:"needs_clarification,omitempty"`
	ClarifyCandidates  []CandidateGroup `json:"clarify_candidates,omitempty"`
	UnknownItems       []string         `json:"unknown_items,omitempty"`
	NeedsLocation      bool             `json:"needs_location,omitempty"`
	Restaurants        []Restaurant     `json:"restaurants,omitempty"`
	MenuItems          []MenuItem       `json:"menu_items,omitempty"`
	PendingOrder       *PendingOrder    `json:"pending_order,omitempty"`
	ContextUpdates     map[string]any   `json:"context_updates,omitempty"`
}
