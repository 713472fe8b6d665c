package intent

import (
	"context"
	"testing"

	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/store"
)

func testMenu(t *testing.T) *store.InMemoryMenuRepository {
	t.Helper()
	repo := store.NewInMemoryMenuRepository()
	ctx := context.Background()
	for _, r := range []models.Restaurant{
		{ID: "r1", Name: "Pizzeria Napoli", Location: "Krakow", Cuisine: "italian"},
		{ID: "r2", Name: "Kebab King", Location: "Warszawa", Cuisine: "kebab"},
	} {
		if err := repo.UpsertRestaurant(ctx, r); err != nil {
			t.Fatalf("seed restaurant: %v", err)
		}
	}
	return repo
}

func TestDetectConfirmContext(t *testing.T) {
	r := NewRouter(testMenu(t), nil)
	session := &models.Session{ID: "s1", ExpectedContext: models.ExpectedConfirmOrder}

	got := r.Detect(context.Background(), "tak", session)
	if got.Intent != models.IntentConfirmOrder || got.Confidence != 1.0 {
		t.Errorf("got %s/%v, want confirm_order/1.0", got.Intent, got.Confidence)
	}
	if got.Source != "guard.confirm_context" {
		t.Errorf("source = %q, want guard.confirm_context", got.Source)
	}

	got = r.Detect(context.Background(), "nie, anuluj", session)
	if got.Intent != models.IntentCancelOrder || got.Confidence != 1.0 {
		t.Errorf("got %s/%v, want cancel_order/1.0", got.Intent, got.Confidence)
	}
}

func TestDetectSelectionContextNumeral(t *testing.T) {
	r := NewRouter(testMenu(t), nil)
	session := &models.Session{ID: "s1", ExpectedContext: models.ExpectedRestaurantSelection}

	got := r.Detect(context.Background(), "poprosze 2", session)
	if got.Intent != models.IntentSelectRestaurant {
		t.Fatalf("intent = %s, want select_restaurant", got.Intent)
	}
	if got.Entities.SelectionIndex != 2 {
		t.Errorf("selection index = %d, want 2", got.Entities.SelectionIndex)
	}
	if got.Source != "guard.selection_context" {
		t.Errorf("source = %q, want guard.selection_context", got.Source)
	}
}

func TestDetectCatalogMatchWithOrderVerb(t *testing.T) {
	r := NewRouter(testMenu(t), nil)

	got := r.Detect(context.Background(), "zamow frytki z Pizzeria Napoli", &models.Session{ID: "s1"})
	if got.Intent != models.IntentCreateOrder {
		t.Fatalf("intent = %s, want create_order", got.Intent)
	}
	if got.Source != "rule.catalog_match" {
		t.Errorf("source = %q, want rule.catalog_match", got.Source)
	}
	if got.Entities.Restaurant != "Pizzeria Napoli" || got.Entities.RestaurantID != "r1" {
		t.Errorf("restaurant = %q/%q, want Pizzeria Napoli/r1", got.Entities.Restaurant, got.Entities.RestaurantID)
	}
	if got.Entities.Dish != "frytki" {
		t.Errorf("dish = %q, want frytki", got.Entities.Dish)
	}
}

func TestDetectDiscoveryKeywords(t *testing.T) {
	r := NewRouter(testMenu(t), nil)

	got := r.Detect(context.Background(), "znajdz restauracje w Krakowie", nil)
	if got.Intent != models.IntentFindNearby || got.Confidence != 0.99 {
		t.Fatalf("got %s/%v, want find_nearby/0.99", got.Intent, got.Confidence)
	}
	if got.Entities.Location != "Krakowie" {
		t.Errorf("location = %q, want Krakowie", got.Entities.Location)
	}

	got = r.Detect(context.Background(), "co polecasz", nil)
	if got.Intent != models.IntentRecommend || got.Confidence != 0.99 {
		t.Errorf("got %s/%v, want recommend/0.99", got.Intent, got.Confidence)
	}
}

func TestDetectOrderVerbNeedsRestaurantContext(t *testing.T) {
	r := NewRouter(testMenu(t), nil)

	// No restaurant anywhere: the router must not guess an order.
	got := r.Detect(context.Background(), "poprosze kebaba", nil)
	if got.Intent == models.IntentCreateOrder {
		t.Fatal("order verb without restaurant context must not create an order")
	}
	if got.Intent != models.IntentFindNearby || got.Source != "rule.food_word" {
		t.Errorf("got %s/%s, want find_nearby via rule.food_word", got.Intent, got.Source)
	}

	// Locked restaurant makes the same utterance an order.
	session := &models.Session{ID: "s1", CurrentRestaurant: "r2"}
	got = r.Detect(context.Background(), "poprosze kebaba", session)
	if got.Intent != models.IntentCreateOrder || got.Source != "rule.order_verb" {
		t.Errorf("got %s/%s, want create_order via rule.order_verb", got.Intent, got.Source)
	}
	if got.Entities.Dish != "kebaba" {
		t.Errorf("dish = %q, want kebaba", got.Entities.Dish)
	}
}

func TestDetectMoreOptionsAfterDiscovery(t *testing.T) {
	r := NewRouter(testMenu(t), nil)

	session := &models.Session{ID: "s1", LastIntent: models.IntentFindNearby}
	got := r.Detect(context.Background(), "pokaz wiecej", session)
	if got.Intent != models.IntentShowMoreOptions {
		t.Errorf("intent = %s, want show_more_options", got.Intent)
	}

	// Same words without a discovery turn behind them do not page.
	got = r.Detect(context.Background(), "pokaz wiecej", &models.Session{ID: "s2"})
	if got.Intent == models.IntentShowMoreOptions {
		t.Error("more options must require a preceding discovery intent")
	}
}

func TestDetectBareYesOutsideConfirm(t *testing.T) {
	r := NewRouter(testMenu(t), nil)
	got := r.Detect(context.Background(), "tak", &models.Session{ID: "s1"})
	if got.Intent != models.IntentConfirm || got.Confidence != 0.9 {
		t.Errorf("got %s/%v, want confirm/0.9", got.Intent, got.Confidence)
	}
}

func TestDetectUnknownWithoutFallback(t *testing.T) {
	r := NewRouter(testMenu(t), nil)
	got := r.Detect(context.Background(), "ble ble niezrozumiale", nil)
	if got.Intent != models.IntentUnknown || got.Confidence != 0 {
		t.Errorf("got %s/%v, want unknown/0", got.Intent, got.Confidence)
	}
	if got.Source != "rule.unknown" {
		t.Errorf("source = %q, want rule.unknown", got.Source)
	}
}

// stubClassifier is a fixed-verdict fallback.
type stubClassifier struct {
	result models.IntentResult
}

func (s *stubClassifier) Name() string { return "stub" }

func (s *stubClassifier) Classify(_ context.Context, _ string, _ Hints) models.IntentResult {
	return s.result
}

func TestDetectFallbackVerdictUsedAndSkipped(t *testing.T) {
	menu := testMenu(t)

	r := NewRouter(menu, &stubClassifier{result: models.IntentResult{
		Intent: models.IntentMenuRequest, Confidence: 0.7, Source: "stub",
	}})
	got := r.Detect(context.Background(), "ble ble niezrozumiale", nil)
	if got.Intent != models.IntentMenuRequest || got.Source != "stub" {
		t.Errorf("got %s/%s, want menu_request from stub", got.Intent, got.Source)
	}

	// Weak clarification with no entities is skipped.
	r = NewRouter(menu, &stubClassifier{result: models.IntentResult{
		Intent: models.IntentClarify, Confidence: 0.7, Source: "stub",
	}})
	got = r.Detect(context.Background(), "ble ble niezrozumiale", nil)
	if got.Intent != models.IntentUnknown {
		t.Errorf("got %s, want unknown when fallback clarifies with no entities", got.Intent)
	}
}
