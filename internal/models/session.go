// Package models defines session state structures for zamowbot conversations.
package models

import "time"

// ConversationPhase tracks where in the ordering funnel a session is.
type ConversationPhase string

const (
	PhaseGreeting   ConversationPhase = "greeting"
	PhaseDiscovery  ConversationPhase = "discovery"
	PhaseBrowsing   ConversationPhase = "browsing"
	PhaseOrdering   ConversationPhase = "ordering"
	PhaseConfirming ConversationPhase = "confirming"
	PhaseDone       ConversationPhase = "done"
)

// ExpectedContext values the router's context-lock guards key on.
const (
	ExpectedConfirmOrder        = "confirm_order"
	ExpectedRestaurantSelection = "restaurant_selection"
	ExpectedDishSelection       = "dish_selection"
)

// MaxDialogStack bounds the dialog history ring; oldest entries are evicted.
const MaxDialogStack = 10

// DialogEntry is one rendered turn kept for back/repeat/next navigation.
type DialogEntry struct {
	Reply      string     `json:"reply"`
	SurfaceKey SurfaceKey `json:"surface_key"`
	At         time.Time  `json:"at"`
}

// PendingOrder is an order being assembled, awaiting confirmation.
type PendingOrder struct {
	RestaurantID string        `json:"restaurant_id"`
	Restaurant   string        `json:"restaurant"`
	Items        []OrderedItem `json:"items"`
}

// Session is the long-lived conversation state, keyed by session identifier
// and owned by the session store. Core components read it and propose
// updates; only the owning handler of a turn writes it back.
type Session struct {
	ID                  string            `json:"id"`
	LastIntent          Intent            `json:"last_intent,omitempty"`
	ExpectedContext     string            `json:"expected_context,omitempty"`
	Awaiting            string            `json:"awaiting,omitempty"`
	PendingDish         string            `json:"pending_dish,omitempty"`
	PendingOrder        *PendingOrder     `json:"pending_order,omitempty"`
	CurrentRestaurant   string            `json:"current_restaurant,omitempty"`
	CurrentRestaurantID string            `json:"current_restaurant_id,omitempty"`
	LastRestaurant      string            `json:"last_restaurant,omitempty"`
	LastLocation        string            `json:"last_location,omitempty"`
	LastRestaurantsList []string          `json:"last_restaurants_list,omitempty"`
	ConversationPhase   ConversationPhase `json:"conversation_phase,omitempty"`
	DialogStack         []DialogEntry     `json:"dialog_stack,omitempty"`
	DialogStackIndex    int               `json:"dialog_stack_index"`
	InteractionCount    int               `json:"interaction_count"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// HasRestaurantContext reports whether any restaurant is locked or remembered.
func (s *Session) HasRestaurantContext() bool {
	return s != nil && (s.CurrentRestaurant != "" || s.LastRestaurant != "")
}
