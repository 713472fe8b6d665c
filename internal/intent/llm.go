package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zamowbot/zamowbot/internal/models"
)

// Completer is the minimal language-model surface the translator needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMTranslator is the constrained language-model fallback classifier. It
// receives only the utterance and read-only hints, never session internals,
// and everything it returns passes the validation boundary.
type LLMTranslator struct {
	client Completer
}

// NewLLMTranslator wraps a completion client as a fallback classifier.
func NewLLMTranslator(client Completer) *LLMTranslator {
	return &LLMTranslator{client: client}
}

// Name identifies the classifier in IntentResult.Source.
func (t *LLMTranslator) Name() string { return "llm_translator" }

const translatorSystemPrompt = `You translate a user utterance from a Polish food-ordering conversation into a single JSON object.
Allowed intents: find_nearby, recommend, show_more_options, select_restaurant, menu_request, create_order, confirm_order, cancel_order, confirm, clarify, unknown.
Respond with ONLY this JSON shape, nothing else:
{"intent": "<intent>", "confidence": <0..1>, "entities": {"location": "", "cuisine": "", "quantity": 1, "restaurant": "", "dish": "", "items": [{"name": "", "quantity": 1}], "selection_index": 0}}
Omit entity fields you are not sure about. Never invent identifiers, prices, or cart contents. Use "unknown" when unsure.`

// Classify asks the model to translate the utterance and returns the
// sanitized verdict; any failure yields the safe fallback.
func (t *LLMTranslator) Classify(ctx context.Context, utterance string, hints Hints) models.IntentResult {
	user := fmt.Sprintf(
		"Utterance: %q\nLast intent: %s\nHas restaurant context: %t\nHas location context: %t",
		utterance, hints.LastIntent, hints.HasRestaurantContext, hints.HasLocationContext)

	out, err := t.client.Complete(ctx, translatorSystemPrompt, user)
	if err != nil {
		slog.Warn("llm translator failed, using safe fallback", "error", err)
		return safeFallbackResult(t.Name())
	}

	payload := extractJSONObject(out)
	if payload == "" {
		slog.Debug("llm translator returned no JSON object")
		return safeFallbackResult(t.Name())
	}
	return ValidateLLMOutput([]byte(payload), t.Name())
}

// extractJSONObject strips code fences and surrounding prose, returning the
// outermost {...} block or "".
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
