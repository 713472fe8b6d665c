package guards

import (
	"testing"

	"github.com/zamowbot/zamowbot/internal/models"
)

func TestSessionPredicates(t *testing.T) {
	if IsRestaurantLocked(nil) {
		t.Error("nil session must not count as locked")
	}
	s := &models.Session{ID: "s1"}
	if IsRestaurantLocked(s) {
		t.Error("empty CurrentRestaurant must not count as locked")
	}
	s.CurrentRestaurant = "r1"
	if !IsRestaurantLocked(s) {
		t.Error("expected locked restaurant")
	}

	if InOrderingContext(&models.Session{}) {
		t.Error("fresh session is not in ordering context")
	}
	if !InOrderingContext(&models.Session{PendingDish: "frytki"}) {
		t.Error("pending dish means ordering context")
	}
	if !InOrderingContext(&models.Session{ConversationPhase: models.PhaseConfirming}) {
		t.Error("confirming phase means ordering context")
	}

	if AwaitingConfirmation(&models.Session{}) {
		t.Error("no expected context, no confirmation")
	}
	if !AwaitingConfirmation(&models.Session{ExpectedContext: models.ExpectedConfirmOrder}) {
		t.Error("expected confirmation context not detected")
	}
}

func TestLooksLikeDish(t *testing.T) {
	if LooksLikeDish("") {
		t.Error("empty text is not a dish")
	}
	if !LooksLikeDish("pierogi ruskie") {
		t.Error("known food word should read as a dish")
	}
	if LooksLikeDish("zamow mi cos dobrego taniego szybko") {
		t.Error("long instruction with an order verb is not a dish")
	}
}

func TestNextPhase(t *testing.T) {
	cases := []struct {
		current models.ConversationPhase
		intent  models.Intent
		want    models.ConversationPhase
	}{
		{models.PhaseGreeting, models.IntentFindNearby, models.PhaseDiscovery},
		{models.PhaseDiscovery, models.IntentSelectRestaurant, models.PhaseBrowsing},
		{models.PhaseBrowsing, models.IntentCreateOrder, models.PhaseOrdering},
		{models.PhaseOrdering, models.IntentConfirmOrder, models.PhaseDone},
		{models.PhaseOrdering, models.IntentCancelOrder, models.PhaseDiscovery},
		{models.PhaseConfirming, models.IntentConfirm, models.PhaseDone},
		{models.PhaseBrowsing, models.IntentConfirm, models.PhaseBrowsing},
		{models.PhaseBrowsing, models.IntentUnknown, models.PhaseBrowsing},
		{"", models.IntentUnknown, models.PhaseGreeting},
	}
	for _, c := range cases {
		if got := NextPhase(c.current, c.intent); got != c.want {
			t.Errorf("NextPhase(%q, %q) = %q, want %q", c.current, c.intent, got, c.want)
		}
	}
}
