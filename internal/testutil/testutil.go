// Package testutil provides common test utilities and fixtures for zamowbot tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zamowbot/zamowbot/internal/dialognav"
	"github.com/zamowbot/zamowbot/internal/disambig"
	"github.com/zamowbot/zamowbot/internal/handlers"
	"github.com/zamowbot/zamowbot/internal/intent"
	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/pipeline"
	"github.com/zamowbot/zamowbot/internal/policy"
	"github.com/zamowbot/zamowbot/internal/respond"
	"github.com/zamowbot/zamowbot/internal/store"
)

// SeedMenuRepository builds an in-memory menu with three restaurants that
// all serve fries, so disambiguation paths are exercised, plus items unique
// to each restaurant.
func SeedMenuRepository(t *testing.T) *store.InMemoryMenuRepository {
	t.Helper()
	repo := store.NewInMemoryMenuRepository()
	ctx := context.Background()

	restaurants := []models.Restaurant{
		{ID: "r1", Name: "Bar Mleczny Krakus", Location: "Krakow", Cuisine: "polish"},
		{ID: "r2", Name: "Pizzeria Napoli", Location: "Krakow", Cuisine: "italian"},
		{ID: "r3", Name: "Kebab King", Location: "Warszawa", Cuisine: "kebab"},
	}
	items := []models.MenuItem{
		{ID: "i1", RestaurantID: "r1", Name: "Pierogi ruskie", PriceGrosze: 2400, Available: true},
		{ID: "i2", RestaurantID: "r1", Name: "Frytki", PriceGrosze: 1000, Available: true},
		{ID: "i3", RestaurantID: "r2", Name: "Pizza Margherita", PriceGrosze: 3200, Available: true},
		{ID: "i4", RestaurantID: "r2", Name: "Frytki", PriceGrosze: 1200, Available: true},
		{ID: "i5", RestaurantID: "r3", Name: "Kebab w bulce", PriceGrosze: 2200, Available: true},
		{ID: "i6", RestaurantID: "r3", Name: "Frytki belgijskie", PriceGrosze: 1400, Available: true},
		{ID: "i7", RestaurantID: "r3", Name: "Lahmacun", PriceGrosze: 2600, Available: false},
	}
	for _, r := range restaurants {
		if err := repo.UpsertRestaurant(ctx, r); err != nil {
			t.Fatalf("seed restaurant %s: %v", r.ID, err)
		}
	}
	for _, item := range items {
		if err := repo.UpsertMenuItem(ctx, item); err != nil {
			t.Fatalf("seed item %s: %v", item.ID, err)
		}
	}
	return repo
}

// NewTestPipeline wires a full pipeline over in-memory stores, no language
// model, and the active operating mode.
func NewTestPipeline(t *testing.T) (*pipeline.Pipeline, *store.InMemorySessionStore, *store.InMemoryMenuRepository) {
	t.Helper()
	sessions := store.NewInMemorySessionStore()
	menu := SeedMenuRepository(t)
	router := intent.NewRouter(menu, intent.NewLegacyMatcher())
	guard := dialognav.NewGuard(true)
	registry := handlers.NewRegistry(menu, disambig.NewService(menu))
	controller := respond.NewController(respond.ModeActive, policy.NewResolver(), nil)
	return pipeline.New(sessions, router, guard, registry, controller), sessions, menu
}

// NewTestSession builds a session with sane defaults for handler tests.
func NewTestSession(id string) *models.Session {
	return &models.Session{ID: id, ConversationPhase: models.PhaseGreeting}
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes a JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}
	return response
}

// CreateHTTPRequest creates an HTTP request with an optional JSON body.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	return req
}
