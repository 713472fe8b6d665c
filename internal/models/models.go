// Package models defines the core data structures for zamowbot.
//
// It includes the intent taxonomy, extracted entities, and the per-turn
// result types shared across the decision pipeline.
package models

import "errors"

// Intent is the canonical classification of what the user wants.
type Intent string

const (
	// IntentFindNearby asks for restaurants near a location.
	IntentFindNearby Intent = "find_nearby"
	// IntentRecommend asks for a suggestion without a concrete location.
	IntentRecommend Intent = "recommend"
	// IntentShowMoreOptions asks for more results after a discovery turn.
	IntentShowMoreOptions Intent = "show_more_options"
	// IntentSelectRestaurant picks one restaurant from a presented list.
	IntentSelectRestaurant Intent = "select_restaurant"
	// IntentMenuRequest asks for a restaurant's menu.
	IntentMenuRequest Intent = "menu_request"
	// IntentCreateOrder starts or extends an order.
	IntentCreateOrder Intent = "create_order"
	// IntentConfirmOrder confirms a pending order.
	IntentConfirmOrder Intent = "confirm_order"
	// IntentCancelOrder abandons a pending order.
	IntentCancelOrder Intent = "cancel_order"
	// IntentConfirm is a bare affirmation outside an order confirmation.
	IntentConfirm Intent = "confirm"
	// IntentClarify signals the system needs more information.
	IntentClarify Intent = "clarify"
	// IntentUnknown is the terminal fallback.
	IntentUnknown Intent = "unknown"
)

// IntentDomain groups intents for routing and reporting.
type IntentDomain string

const (
	DomainFood     IntentDomain = "food"
	DomainOrdering IntentDomain = "ordering"
	DomainSystem   IntentDomain = "system"
)

// DomainOf returns the domain an intent belongs to.
func DomainOf(intent Intent) IntentDomain {
	switch intent {
	case IntentFindNearby, IntentRecommend, IntentShowMoreOptions, IntentSelectRestaurant, IntentMenuRequest:
		return DomainFood
	case IntentCreateOrder, IntentConfirmOrder, IntentCancelOrder, IntentConfirm:
		return DomainOrdering
	default:
		return DomainSystem
	}
}

// IsValidIntent checks whether the given intent is part of the taxonomy.
func IsValidIntent(intent Intent) bool {
	switch intent {
	case IntentFindNearby, IntentRecommend, IntentShowMoreOptions, IntentSelectRestaurant,
		IntentMenuRequest, IntentCreateOrder, IntentConfirmOrder, IntentCancelOrder,
		IntentConfirm, IntentClarify, IntentUnknown:
		return true
	default:
		return false
	}
}

// OrderedItem is one requested menu item with a quantity.
type OrderedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Entities holds the structured values extracted from one utterance.
// All fields are optional; Quantity defaults to 1 when absent.
type Entities struct {
	Location       string        `json:"location,omitempty"`
	Cuisine        string        `json:"cuisine,omitempty"`
	Quantity       int           `json:"quantity,omitempty"`
	Restaurant     string        `json:"restaurant,omitempty"`
	RestaurantID   string        `json:"restaurant_id,omitempty"`
	Dish           string        `json:"dish,omitempty"`
	Items          []OrderedItem `json:"items,omitempty"`
	SelectionIndex int           `json:"selection_index,omitempty"`
}

// IntentResult is the router's verdict for one turn. It is created once per
// turn and never mutated after creation.
type IntentResult struct {
	Intent     Intent       `json:"intent"`
	Confidence float64      `json:"confidence"`
	Entities   Entities     `json:"entities"`
	Source     string       `json:"source"`
	Domain     IntentDomain `json:"domain"`
}

// Error variables shared across packages.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrAlreadyFinalized   = errors.New("response already finalized for this turn")
	ErrEmptyUtterance     = errors.New("utterance cannot be empty")
)
