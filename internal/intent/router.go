package intent

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/zamowbot/zamowbot/internal/catalog"
	"github.com/zamowbot/zamowbot/internal/extract"
	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/store"
	"github.com/zamowbot/zamowbot/internal/textnorm"
)

// Hints are the only session-derived facts a fallback classifier may see.
// No identifiers, no cart, no prices.
type Hints struct {
	LastIntent           models.Intent
	HasRestaurantContext bool
	HasLocationContext   bool
}

// FallbackClassifier is the pluggable last-resort classifier: either the
// legacy heuristic matcher or a constrained language-model translator.
type FallbackClassifier interface {
	Name() string
	Classify(ctx context.Context, utterance string, hints Hints) models.IntentResult
}

// ruleContext carries the per-turn facts every rule predicates on.
type ruleContext struct {
	raw         string
	norm        string
	session     *models.Session
	entities    models.Entities
	catalogName string
	hasOrder    bool
}

// rule is one (name, producer) record; the cascade evaluates records in
// order and the first non-nil result wins. The name becomes
// IntentResult.Source, which is part of the router contract.
type rule struct {
	name  string
	apply func(rc *ruleContext) *models.IntentResult
}

// Router orchestrates the detection cascade.
type Router struct {
	menu     store.MenuRepository
	fallback FallbackClassifier
	rules    []rule
}

// NewRouter creates a router over the given menu repository and optional
// fallback classifier.
func NewRouter(menu store.MenuRepository, fallback FallbackClassifier) *Router {
	r := &Router{menu: menu, fallback: fallback}
	r.rules = []rule{
		{"guard.confirm_context", ruleConfirmContext},
		{"guard.selection_context", ruleSelectionContext},
		{"rule.more_options", ruleMoreOptions},
		{"rule.discovery_keywords", ruleDiscoveryKeywords},
		{"rule.catalog_match", ruleCatalogMatch},
		{"rule.show_restaurants", ruleShowRestaurants},
		{"rule.lock_escape", ruleLockEscape},
		{"rule.order_verb", ruleOrderVerb},
		{"rule.bare_yes", ruleBareYes},
		{"rule.menu_regex", ruleMenuRegex},
		{"rule.discovery_regex", ruleDiscoveryRegex},
	}
	return r
}

// Detect classifies one utterance against the session. Deterministic given
// the same utterance, session, and fallback-classifier outcome.
func (r *Router) Detect(ctx context.Context, utterance string, session *models.Session) models.IntentResult {
	norm := textnorm.Normalize(utterance)

	entities := models.Entities{
		Location: extract.Location(utterance),
		Cuisine:  extract.Cuisine(norm),
		Quantity: extract.Quantity(norm),
	}

	// Catalog lookup is a read against the external store; a failure only
	// disables catalog rules, it never fails the turn.
	catalogName := ""
	if r.menu != nil {
		if names, err := r.menu.CatalogNames(ctx); err != nil {
			slog.Error("Router catalog lookup failed", "error", err)
		} else if name, ok := catalog.NewMatcher(names).Match(norm); ok {
			catalogName = name
			entities.Restaurant = name
			if rest, err := r.menu.FindRestaurantByName(ctx, name); err == nil && rest != nil {
				entities.RestaurantID = rest.ID
			}
		}
	}

	rc := &ruleContext{
		raw:         utterance,
		norm:        norm,
		session:     session,
		entities:    entities,
		catalogName: catalogName,
		hasOrder:    containsAny(norm, orderVerbs),
	}

	for _, rl := range r.rules {
		if res := rl.apply(rc); res != nil {
			return r.finish(*res, rl.name, rc)
		}
	}

	if res := r.classifyFallback(ctx, rc); res != nil {
		return *res
	}

	if containsAny(norm, foodWords) {
		// Exploration, not an order: low confidence by design of the cascade.
		return r.finish(models.IntentResult{Intent: models.IntentFindNearby, Confidence: 0.6}, "rule.food_word", rc)
	}

	return r.finish(models.IntentResult{Intent: models.IntentUnknown, Confidence: 0}, "rule.unknown", rc)
}

// finish stamps source, domain, and merged entities on a rule result.
func (r *Router) finish(res models.IntentResult, source string, rc *ruleContext) models.IntentResult {
	if res.Source == "" {
		res.Source = source
	}
	res.Domain = models.DomainOf(res.Intent)
	res.Entities = mergeEntities(rc.entities, res.Entities)
	slog.Debug("Router detect", "intent", res.Intent, "confidence", res.Confidence, "source", res.Source)
	return res
}

// classifyFallback runs the pluggable classifier; its verdict is skipped when
// it is unknown or a weak clarification carrying no real candidates.
func (r *Router) classifyFallback(ctx context.Context, rc *ruleContext) *models.IntentResult {
	if r.fallback == nil {
		return nil
	}
	hints := Hints{
		HasLocationContext: rc.entities.Location != "",
	}
	if rc.session != nil {
		hints.LastIntent = rc.session.LastIntent
		hints.HasRestaurantContext = rc.session.HasRestaurantContext()
	}
	hints.HasRestaurantContext = hints.HasRestaurantContext || rc.entities.Restaurant != ""

	res := r.fallback.Classify(ctx, rc.raw, hints)
	if res.Intent == models.IntentUnknown {
		slog.Debug("Router fallback skipped: unknown", "classifier", r.fallback.Name())
		return nil
	}
	if res.Intent == models.IntentClarify && emptyEntities(res.Entities) {
		slog.Debug("Router fallback skipped: weak clarification", "classifier", r.fallback.Name())
		return nil
	}
	final := r.finish(res, res.Source, rc)
	return &final
}

// --- rules, in cascade order ---

// ruleConfirmContext maps yes/no phrases while an order confirmation is
// pending. Confidence 1.0: the session explicitly asked this question.
func ruleConfirmContext(rc *ruleContext) *models.IntentResult {
	if rc.session == nil || rc.session.ExpectedContext != models.ExpectedConfirmOrder {
		return nil
	}
	if isBareAffirmation(rc.norm) || (containsAny(rc.norm, yesWords) && !isNegation(rc.norm)) {
		return &models.IntentResult{Intent: models.IntentConfirmOrder, Confidence: 1.0}
	}
	if isNegation(rc.norm) {
		return &models.IntentResult{Intent: models.IntentCancelOrder, Confidence: 1.0}
	}
	return nil
}

// ruleSelectionContext interprets bare numerals and non-intent-like phrases
// as picks while a selection prompt is open.
func ruleSelectionContext(rc *ruleContext) *models.IntentResult {
	if rc.session == nil {
		return nil
	}
	if rc.session.ExpectedContext != models.ExpectedRestaurantSelection && rc.session.ExpectedContext != models.ExpectedDishSelection {
		return nil
	}
	if containsAny(rc.norm, moreOptionsKeywords) {
		return &models.IntentResult{Intent: models.IntentShowMoreOptions, Confidence: 0.95}
	}
	if m := bareNumeralRe.FindStringSubmatch(rc.norm); m != nil {
		idx, _ := strconv.Atoi(m[1])
		return &models.IntentResult{
			Intent:     models.IntentSelectRestaurant,
			Confidence: 0.95,
			Entities:   models.Entities{SelectionIndex: idx},
		}
	}
	if !looksLikeIntent(rc.norm) {
		return &models.IntentResult{
			Intent:     models.IntentSelectRestaurant,
			Confidence: 0.9,
			Entities:   models.Entities{Restaurant: rc.norm},
		}
	}
	return nil
}

// ruleMoreOptions handles explicit "more options" after a discovery turn.
func ruleMoreOptions(rc *ruleContext) *models.IntentResult {
	if rc.session == nil || !containsAny(rc.norm, moreOptionsKeywords) {
		return nil
	}
	switch rc.session.LastIntent {
	case models.IntentFindNearby, models.IntentRecommend, models.IntentShowMoreOptions:
		return &models.IntentResult{Intent: models.IntentShowMoreOptions, Confidence: 0.95}
	}
	return nil
}

// ruleDiscoveryKeywords routes discovery, recommendation, and uncertainty
// phrasing, plus bare numerals with no order verb.
func ruleDiscoveryKeywords(rc *ruleContext) *models.IntentResult {
	wantsRecommend := containsAny(rc.norm, recommendKeywords) || containsAny(rc.norm, uncertaintyKeywords)
	wantsDiscovery := containsAny(rc.norm, discoveryKeywords)
	bareNumeral := bareNumeralRe.MatchString(rc.norm) && !rc.hasOrder

	if !wantsRecommend && !wantsDiscovery && !bareNumeral {
		return nil
	}
	if wantsRecommend && rc.entities.Location == "" {
		return &models.IntentResult{Intent: models.IntentRecommend, Confidence: 0.99}
	}
	return &models.IntentResult{Intent: models.IntentFindNearby, Confidence: 0.99}
}

// ruleCatalogMatch branches on a known restaurant name in the text.
func ruleCatalogMatch(rc *ruleContext) *models.IntentResult {
	if rc.catalogName == "" {
		return nil
	}
	switch {
	case rc.hasOrder:
		return &models.IntentResult{
			Intent:     models.IntentCreateOrder,
			Confidence: 0.95,
			Entities:   orderEntities(rc),
		}
	case containsAny(rc.norm, menuKeywords):
		return &models.IntentResult{Intent: models.IntentMenuRequest, Confidence: 0.95}
	default:
		return &models.IntentResult{Intent: models.IntentSelectRestaurant, Confidence: 0.9}
	}
}

// ruleShowRestaurants catches "show me restaurants" style phrasing.
func ruleShowRestaurants(rc *ruleContext) *models.IntentResult {
	if containsAny(rc.norm, showWords) && containsAny(rc.norm, restaurantWords) {
		return &models.IntentResult{Intent: models.IntentFindNearby, Confidence: 0.9}
	}
	return nil
}

// ruleLockEscape lets a user with a locked restaurant ask for a different one.
func ruleLockEscape(rc *ruleContext) *models.IntentResult {
	if rc.session == nil || rc.session.CurrentRestaurant == "" {
		return nil
	}
	if containsAny(rc.norm, restaurantWords) && containsAny(rc.norm, []string{"inna", "inne", "inny", "zmien", "other", "different"}) {
		return &models.IntentResult{Intent: models.IntentFindNearby, Confidence: 0.9}
	}
	return nil
}

// ruleOrderVerb emits create_order only when some restaurant context exists.
// With no restaurant anywhere it intentionally falls through: the router
// never guesses an order without a place.
func ruleOrderVerb(rc *ruleContext) *models.IntentResult {
	if !rc.hasOrder {
		return nil
	}
	sessionHas := rc.session != nil && rc.session.HasRestaurantContext()
	if !sessionHas && rc.entities.Restaurant == "" {
		return nil
	}
	return &models.IntentResult{
		Intent:     models.IntentCreateOrder,
		Confidence: 0.9,
		Entities:   orderEntities(rc),
	}
}

// ruleBareYes maps a lone affirmation outside any confirm context.
func ruleBareYes(rc *ruleContext) *models.IntentResult {
	if isBareAffirmation(rc.norm) {
		return &models.IntentResult{Intent: models.IntentConfirm, Confidence: 0.9}
	}
	return nil
}

// ruleMenuRegex catches structural menu phrasing.
func ruleMenuRegex(rc *ruleContext) *models.IntentResult {
	if menuRequestRe.MatchString(rc.norm) {
		return &models.IntentResult{Intent: models.IntentMenuRequest, Confidence: 0.85}
	}
	return nil
}

// ruleDiscoveryRegex catches structural discovery phrasing, guarded against
// strong order verbs so real orders are not misrouted.
func ruleDiscoveryRegex(rc *ruleContext) *models.IntentResult {
	if rc.hasOrder {
		return nil
	}
	if discoveryRe.MatchString(rc.norm) {
		return &models.IntentResult{Intent: models.IntentFindNearby, Confidence: 0.85}
	}
	return nil
}

// --- helpers ---

// looksLikeIntent reports whether the phrase carries any explicit intent
// signal; selection prompts treat everything else as a pick.
func looksLikeIntent(norm string) bool {
	return containsAny(norm, orderVerbs) ||
		containsAny(norm, discoveryKeywords) ||
		containsAny(norm, recommendKeywords) ||
		containsAny(norm, menuKeywords) ||
		containsAny(norm, moreOptionsKeywords)
}

// orderEntities builds the dish/item entities for a create_order verdict.
func orderEntities(rc *ruleContext) models.Entities {
	dish := stripOrderPhrase(rc.norm, rc.catalogName)
	e := models.Entities{Dish: dish}
	if dish != "" {
		e.Items = []models.OrderedItem{{Name: dish, Quantity: rc.entities.Quantity}}
	}
	return e
}

// stripOrderPhrase removes order verbs, politeness, quantities, and the
// restaurant name, leaving the dish phrase.
func stripOrderPhrase(norm, catalogName string) string {
	s := " " + norm + " "
	for _, v := range orderVerbs {
		s = strings.ReplaceAll(s, " "+v+" ", " ")
	}
	for _, w := range []string{"z", "w", "od", "do", "na", "mi", "sobie"} {
		s = strings.ReplaceAll(s, " "+w+" ", " ")
	}
	if catalogName != "" {
		s = strings.ReplaceAll(s, " "+textnorm.Normalize(catalogName)+" ", " ")
	}
	fields := strings.Fields(s)
	var kept []string
	for _, f := range fields {
		if _, isNumber := extract.NumberWords[f]; isNumber {
			continue
		}
		if _, err := strconv.Atoi(f); err == nil {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// mergeEntities overlays rule-produced entities on the extracted baseline.
func mergeEntities(base, override models.Entities) models.Entities {
	out := base
	if override.Location != "" {
		out.Location = override.Location
	}
	if override.Cuisine != "" {
		out.Cuisine = override.Cuisine
	}
	if override.Quantity != 0 {
		out.Quantity = override.Quantity
	}
	if override.Restaurant != "" {
		out.Restaurant = override.Restaurant
	}
	if override.RestaurantID != "" {
		out.RestaurantID = override.RestaurantID
	}
	if override.Dish != "" {
		out.Dish = override.Dish
	}
	if len(override.Items) > 0 {
		out.Items = override.Items
	}
	if override.SelectionIndex != 0 {
		out.SelectionIndex = override.SelectionIndex
	}
	if out.Quantity == 0 {
		out.Quantity = 1
	}
	return out
}

func emptyEntities(e models.Entities) bool {
	return e.Location == "" && e.Cuisine == "" && e.Restaurant == "" &&
		e.RestaurantID == "" && e.Dish == "" && len(e.Items) == 0 && e.SelectionIndex == 0
}
