package intent

import (
	"context"
	"log/slog"

	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/textnorm"
)

// LegacyMatcher is the heuristic fallback classifier: weighted keyword
// scoring over the intent families. It predates the rule cascade and only
// runs when every cascade rule has fallen through.
type LegacyMatcher struct{}

// NewLegacyMatcher creates the heuristic fallback classifier.
func NewLegacyMatcher() *LegacyMatcher {
	return &LegacyMatcher{}
}

// Name identifies the classifier in IntentResult.Source.
func (m *LegacyMatcher) Name() string { return "legacy_matcher" }

// hungerPhrases are signals the cascade's keyword families miss.
var hungerPhrases = []string{
	"jestem glodny", "jestem glodna", "chce mi sie jesc", "zglodnialem",
	"cos bym zjadl", "cos bym zjadla", "i am hungry", "im hungry",
}

// Classify scores the utterance against intent families and returns the best
// scoring intent, or unknown when nothing scores.
func (m *LegacyMatcher) Classify(ctx context.Context, utterance string, hints Hints) models.IntentResult {
	norm := textnorm.Normalize(utterance)

	scores := map[models.Intent]float64{}
	add := func(intent models.Intent, weight float64, phrases []string) {
		for _, p := range phrases {
			if textnorm.ContainsPhrase(norm, p) {
				scores[intent] += weight
			}
		}
	}

	add(models.IntentFindNearby, 1.0, discoveryKeywords)
	add(models.IntentFindNearby, 1.0, hungerPhrases)
	add(models.IntentRecommend, 1.0, recommendKeywords)
	add(models.IntentRecommend, 0.5, uncertaintyKeywords)
	add(models.IntentMenuRequest, 1.0, menuKeywords)
	add(models.IntentShowMoreOptions, 0.8, moreOptionsKeywords)
	if hints.HasRestaurantContext {
		add(models.IntentCreateOrder, 1.0, orderVerbs)
	}

	best := models.IntentUnknown
	bestScore := 0.0
	for intent, score := range scores {
		if score > bestScore {
			best, bestScore = intent, score
		}
	}
	if best == models.IntentUnknown {
		return models.IntentResult{
			Intent: models.IntentUnknown, Confidence: 0,
			Source: m.Name(), Domain: models.DomainSystem,
		}
	}

	confidence := 0.7
	if bestScore >= 2 {
		confidence = 0.8
	}
	slog.Debug("legacy matcher verdict", "intent", best, "score", bestScore)
	return models.IntentResult{
		Intent:     best,
		Confidence: confidence,
		Source:     m.Name(),
		Domain:     models.DomainOf(best),
	}
}
