// Package intent: validation and sanitization of language-model output.
//
// This is a security boundary. Untrusted model output must never carry
// session identifiers, cart data, prices, or reply text into the pipeline.
// Any violation invalidates the whole output, not just the offending field.
package intent

import (
	"encoding/json"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/zamowbot/zamowbot/internal/models"
)

const (
	// MaxLLMConfidence caps sanitized model confidence; a language model
	// must never claim certainty.
	MaxLLMConfidence = 0.95
	// MaxEntityStringLength caps sanitized string entities.
	MaxEntityStringLength = 120
	// MaxQuantity and MaxSelectionIndex clamp numeric entities.
	MaxQuantity       = 99
	MaxSelectionIndex = 20
	// MaxLLMItems bounds the item list a model may propose.
	MaxLLMItems = 10
)

// forbiddenFields lists key names that must not appear in the root object or
// the entities object of model output. Presence of any of them rejects the
// entire output.
var forbiddenFields = map[string]bool{
	"session_id": true, "sessionid": true, "session": true,
	"user_id": true, "userid": true, "id": true, "restaurant_id": true,
	"order_id": true, "cart": true, "basket": true,
	"price": true, "prices": true, "price_grosze": true, "total": true,
	"total_price": true, "amount": true,
	"actions": true, "action": true, "tool_calls": true,
	"reply": true, "text": true, "response": true, "message": true,
}

// llmEntityFields is the allow-list of entity keys a model may set.
var llmEntityFields = map[string]bool{
	"location": true, "cuisine": true, "quantity": true,
	"restaurant": true, "dish": true, "items": true, "selection_index": true,
}

// safeFallbackResult is returned whenever validation fails.
func safeFallbackResult(source string) models.IntentResult {
	return models.IntentResult{
		Intent:     models.IntentUnknown,
		Confidence: 0,
		Entities:   models.Entities{},
		Source:     source,
		Domain:     models.DomainSystem,
	}
}

// ValidateLLMOutput parses and sanitizes raw model output. On success the
// result carries only {intent, confidence, entities}; on any failure it is
// the fixed safe fallback (unknown, confidence 0, empty entities).
func ValidateLLMOutput(raw []byte, source string) models.IntentResult {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		slog.Debug("llm output rejected: malformed JSON", "error", err)
		return safeFallbackResult(source)
	}

	for key := range root {
		if forbiddenFields[strings.ToLower(key)] {
			slog.Warn("llm output rejected: forbidden field at root", "field", key)
			return safeFallbackResult(source)
		}
	}

	var intentStr string
	if rawIntent, ok := root["intent"]; ok {
		if err := json.Unmarshal(rawIntent, &intentStr); err != nil {
			slog.Debug("llm output rejected: non-string intent")
			return safeFallbackResult(source)
		}
	}
	intent := models.Intent(strings.TrimSpace(intentStr))
	if !models.IsValidIntent(intent) {
		slog.Debug("llm output rejected: intent outside allow-list", "intent", intentStr)
		return safeFallbackResult(source)
	}

	var confidence float64
	if rawConf, ok := root["confidence"]; ok {
		if err := json.Unmarshal(rawConf, &confidence); err != nil {
			slog.Debug("llm output rejected: non-numeric confidence")
			return safeFallbackResult(source)
		}
	}
	if confidence < 0 || confidence > 1 {
		slog.Debug("llm output rejected: confidence out of range", "confidence", confidence)
		return safeFallbackResult(source)
	}
	if confidence > MaxLLMConfidence {
		confidence = MaxLLMConfidence
	}

	entities := models.Entities{}
	if rawEntities, ok := root["entities"]; ok {
		var entMap map[string]json.RawMessage
		if err := json.Unmarshal(rawEntities, &entMap); err != nil {
			slog.Debug("llm output rejected: entities not an object")
			return safeFallbackResult(source)
		}
		for key := range entMap {
			lower := strings.ToLower(key)
			if forbiddenFields[lower] {
				slog.Warn("llm output rejected: forbidden field in entities", "field", key)
				return safeFallbackResult(source)
			}
			if !llmEntityFields[lower] {
				// Unknown but not forbidden: drop silently.
				delete(entMap, key)
			}
		}
		entities = sanitizeEntities(entMap)
	}

	return models.IntentResult{
		Intent:     intent,
		Confidence: confidence,
		Entities:   entities,
		Source:     source,
		Domain:     models.DomainOf(intent),
	}
}

// sanitizeEntities coerces allow-listed entity values: strings trimmed and
// length-capped, quantity clamped to [1,99], selection index to [1,20];
// non-conforming values become the zero value.
func sanitizeEntities(entMap map[string]json.RawMessage) models.Entities {
	var e models.Entities
	e.Location = sanitizeString(entMap["location"])
	e.Cuisine = sanitizeString(entMap["cuisine"])
	e.Restaurant = sanitizeString(entMap["restaurant"])
	e.Dish = sanitizeString(entMap["dish"])
	e.Quantity = sanitizeInt(entMap["quantity"], 1, MaxQuantity)
	e.SelectionIndex = sanitizeInt(entMap["selection_index"], 1, MaxSelectionIndex)

	if rawItems, ok := entMap["items"]; ok {
		var items []struct {
			Name     string  `json:"name"`
			Quantity float64 `json:"quantity"`
		}
		if err := json.Unmarshal(rawItems, &items); err == nil {
			for _, it := range items {
				name := capString(strings.TrimSpace(it.Name))
				if name == "" {
					continue
				}
				qty := int(it.Quantity)
				if qty < 1 {
					qty = 1
				}
				if qty > MaxQuantity {
					qty = MaxQuantity
				}
				e.Items = append(e.Items, models.OrderedItem{Name: name, Quantity: qty})
				if len(e.Items) == MaxLLMItems {
					break
				}
			}
		}
	}
	return e
}

func sanitizeString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return capString(strings.TrimSpace(s))
}

// capString truncates on a rune boundary so capped strings stay valid UTF-8.
func capString(s string) string {
	if len(s) <= MaxEntityStringLength {
		return s
	}
	cut := MaxEntityStringLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func sanitizeInt(raw json.RawMessage, min, max int) int {
	if raw == nil {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	n := int(f)
	if n == 0 {
		return 0
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
