// Package guards provides stateless predicates over session shape and the
// conversation phase transition function. Handlers use them to decide next
// steps; the guards never mutate the session.
package guards

import (
	"github.com/zamowbot/zamowbot/internal/intent"
	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/textnorm"
)

// IsRestaurantLocked reports whether the session has one restaurant in play.
func IsRestaurantLocked(s *models.Session) bool {
	return s != nil && s.CurrentRestaurant != ""
}

// InOrderingContext reports whether the session is mid-order.
func InOrderingContext(s *models.Session) bool {
	if s == nil {
		return false
	}
	if s.PendingOrder != nil || s.PendingDish != "" {
		return true
	}
	return s.ConversationPhase == models.PhaseOrdering || s.ConversationPhase == models.PhaseConfirming
}

// AwaitingConfirmation reports whether the session expects a yes/no answer.
func AwaitingConfirmation(s *models.Session) bool {
	return s != nil && s.ExpectedContext == models.ExpectedConfirmOrder
}

// LooksLikeDish reports whether a short phrase reads as a dish name rather
// than an instruction: a known food word, or a short phrase with no intent
// signal in it.
func LooksLikeDish(text string) bool {
	norm := textnorm.Normalize(text)
	if norm == "" {
		return false
	}
	if intent.ContainsFoodWord(norm) {
		return true
	}
	words := textnorm.Words(norm)
	return len(words) <= 3 && !intent.ContainsOrderVerb(norm)
}

// NextPhase is the conversation phase-transition function.
func NextPhase(current models.ConversationPhase, detected models.Intent) models.ConversationPhase {
	switch detected {
	case models.IntentFindNearby, models.IntentRecommend, models.IntentShowMoreOptions:
		return models.PhaseDiscovery
	case models.IntentSelectRestaurant, models.IntentMenuRequest:
		return models.PhaseBrowsing
	case models.IntentCreateOrder:
		return models.PhaseOrdering
	case models.IntentConfirmOrder:
		return models.PhaseDone
	case models.IntentCancelOrder:
		return models.PhaseDiscovery
	case models.IntentConfirm:
		if current == models.PhaseConfirming {
			return models.PhaseDone
		}
		return current
	default:
		if current == "" {
			return models.PhaseGreeting
		}
		return current
	}
}
