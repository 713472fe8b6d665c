package intent

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/zamowbot/zamowbot/internal/models"
)

func assertSafeFallback(t *testing.T, got models.IntentResult) {
	t.Helper()
	if got.Intent != models.IntentUnknown || got.Confidence != 0 {
		t.Errorf("expected safe fallback, got intent=%s confidence=%v", got.Intent, got.Confidence)
	}
	if got.Entities.Dish != "" || got.Entities.Quantity != 0 || len(got.Entities.Items) != 0 {
		t.Errorf("safe fallback must carry empty entities, got %+v", got.Entities)
	}
}

func TestValidateLLMOutputAccepts(t *testing.T) {
	raw := []byte(`{"intent":"create_order","confidence":0.8,"entities":{"dish":"frytki","quantity":2}}`)
	got := ValidateLLMOutput(raw, "llm")
	if got.Intent != models.IntentCreateOrder {
		t.Errorf("intent = %s, want create_order", got.Intent)
	}
	if got.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", got.Confidence)
	}
	if got.Entities.Dish != "frytki" || got.Entities.Quantity != 2 {
		t.Errorf("entities = %+v", got.Entities)
	}
	if got.Source != "llm" {
		t.Errorf("source = %q, want llm", got.Source)
	}
}

func TestValidateLLMOutputRejectsWholeOutput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"intent":`},
		{"forbidden root field", `{"intent":"create_order","confidence":0.5,"cart":[{"name":"frytki"}]}`},
		{"forbidden entity field", `{"intent":"create_order","confidence":0.5,"entities":{"price":1200}}`},
		{"intent outside allow-list", `{"intent":"delete_everything","confidence":0.5}`},
		{"confidence out of range", `{"intent":"create_order","confidence":1.4}`},
		{"negative confidence", `{"intent":"create_order","confidence":-0.1}`},
		{"non-string intent", `{"intent":7,"confidence":0.5}`},
		{"entities not an object", `{"intent":"create_order","confidence":0.5,"entities":[1,2]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assertSafeFallback(t, ValidateLLMOutput([]byte(c.raw), "llm"))
		})
	}
}

func TestValidateLLMOutputCapsConfidence(t *testing.T) {
	got := ValidateLLMOutput([]byte(`{"intent":"confirm","confidence":1.0}`), "llm")
	if got.Confidence != MaxLLMConfidence {
		t.Errorf("confidence = %v, want capped at %v", got.Confidence, MaxLLMConfidence)
	}
}

func TestValidateLLMOutputSanitizesEntities(t *testing.T) {
	raw := []byte(`{"intent":"create_order","confidence":0.7,"entities":{
		"dish":"  kebab  ","quantity":500,"selection_index":99,
		"mood":"hungry",
		"items":[{"name":"frytki","quantity":0},{"name":"","quantity":2},{"name":"` +
		strings.Repeat("a", 200) + `","quantity":3}]}}`)
	got := ValidateLLMOutput(raw, "llm")
	if got.Entities.Dish != "kebab" {
		t.Errorf("dish = %q, want trimmed kebab", got.Entities.Dish)
	}
	if got.Entities.Quantity != MaxQuantity {
		t.Errorf("quantity = %d, want clamped to %d", got.Entities.Quantity, MaxQuantity)
	}
	if got.Entities.SelectionIndex != MaxSelectionIndex {
		t.Errorf("selection index = %d, want clamped to %d", got.Entities.SelectionIndex, MaxSelectionIndex)
	}
	if len(got.Entities.Items) != 2 {
		t.Fatalf("items = %+v, want 2 (empty name dropped)", got.Entities.Items)
	}
	if got.Entities.Items[0].Quantity != 1 {
		t.Errorf("zero item quantity should clamp to 1, got %d", got.Entities.Items[0].Quantity)
	}
	if len(got.Entities.Items[1].Name) != MaxEntityStringLength {
		t.Errorf("item name length = %d, want capped at %d", len(got.Entities.Items[1].Name), MaxEntityStringLength)
	}
}

func TestValidateLLMOutputCapsOnRuneBoundary(t *testing.T) {
	// One ASCII byte then three-byte runes: the byte cap lands mid-rune
	// unless truncation backs up to a boundary.
	raw := []byte(`{"intent":"create_order","confidence":0.7,"entities":{"dish":"a` +
		strings.Repeat("€", 50) + `"}}`)
	got := ValidateLLMOutput(raw, "llm")
	if !utf8.ValidString(got.Entities.Dish) {
		t.Fatalf("capped dish is not valid UTF-8: %q", got.Entities.Dish)
	}
	if len(got.Entities.Dish) > MaxEntityStringLength {
		t.Errorf("dish length = %d bytes, want at most %d", len(got.Entities.Dish), MaxEntityStringLength)
	}
	if utf8.RuneCountInString(got.Entities.Dish) != 40 {
		t.Errorf("dish runes = %d, want 40 whole runes", utf8.RuneCountInString(got.Entities.Dish))
	}
}
