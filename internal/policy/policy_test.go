package policy

import (
	"testing"

	"github.com/zamowbot/zamowbot/internal/models"
)

// steadySession is far enough into the conversation that no adaptive rule
// fires on its own.
func steadySession() *models.Session {
	return &models.Session{ID: "s1", InteractionCount: 4, LastIntent: models.IntentFindNearby}
}

func TestResolveBaseTable(t *testing.T) {
	r := NewResolver()

	p := r.Resolve(models.IntentFindNearby, models.Entities{}, steadySession(), nil)
	if p.Style != models.StyleEnthusiastic || p.RecommendationMode != models.RecommendActive || !p.ShouldUseLLM {
		t.Errorf("find_nearby policy = %+v", p)
	}
	if p.Metadata.SourceIntent != models.IntentFindNearby {
		t.Errorf("source intent = %s", p.Metadata.SourceIntent)
	}

	p = r.Resolve(models.IntentUnknown, models.Entities{}, steadySession(), nil)
	if p.Style != models.StyleEmpathetic || p.ShouldUseLLM {
		t.Errorf("unknown policy = %+v", p)
	}
}

func TestResolveAdaptiveRules(t *testing.T) {
	r := NewResolver()

	confused := &models.Session{ID: "s1", InteractionCount: 4, LastIntent: models.IntentUnknown}
	p := r.Resolve(models.IntentFindNearby, models.Entities{}, confused, nil)
	if p.Style != models.StyleEmpathetic || p.Verbosity != models.VerbosityDetailed {
		t.Errorf("after confusion policy = %+v", p)
	}
	if p.Metadata.AdaptedRule != "after_confusion" {
		t.Errorf("adapted rule = %q", p.Metadata.AdaptedRule)
	}

	early := &models.Session{ID: "s1", InteractionCount: 0, LastIntent: models.IntentFindNearby}
	p = r.Resolve(models.IntentRecommend, models.Entities{}, early, nil)
	if p.Verbosity != models.VerbosityConcise || p.Metadata.AdaptedRule != "early_conversation" {
		t.Errorf("early conversation policy = %+v", p)
	}

	long := &models.Session{ID: "s1", InteractionCount: 10, LastIntent: models.IntentCreateOrder}
	p = r.Resolve(models.IntentCreateOrder, models.Entities{}, long, nil)
	if p.Style != models.StyleCasual || p.Metadata.AdaptedRule != "long_conversation" {
		t.Errorf("long conversation policy = %+v", p)
	}
}

func TestResolveLockedRestaurantDemotesRecommendations(t *testing.T) {
	r := NewResolver()
	locked := steadySession()
	locked.CurrentRestaurant = "r1"

	p := r.Resolve(models.IntentFindNearby, models.Entities{}, locked, nil)
	if p.RecommendationMode != models.RecommendPassive {
		t.Errorf("recommendation mode = %s, want passive with a locked restaurant", p.RecommendationMode)
	}
}

func TestResolveOverridesWinLast(t *testing.T) {
	r := NewResolver()
	overrides := &models.AdminOverrides{
		ForceStyle:     models.StyleNeutral,
		ForceVerbosity: models.VerbosityConcise,
		DisableLLM:     true,
		ForceFastTTS:   true,
	}

	// Even the after-confusion adaptation loses to the override.
	confused := &models.Session{ID: "s1", InteractionCount: 4, LastIntent: models.IntentUnknown}
	p := r.Resolve(models.IntentFindNearby, models.Entities{}, confused, overrides)
	if p.Style != models.StyleNeutral || p.Verbosity != models.VerbosityConcise {
		t.Errorf("overridden policy = %+v", p)
	}
	if p.ShouldUseLLM || p.TTSMode != models.TTSFast {
		t.Errorf("llm/tts override not applied: %+v", p)
	}
	if !p.Metadata.OverrideApplied {
		t.Error("override application not recorded")
	}

	// An empty override set leaves the policy untouched.
	p = r.Resolve(models.IntentFindNearby, models.Entities{}, steadySession(), &models.AdminOverrides{})
	if p.Metadata.OverrideApplied {
		t.Error("empty overrides must not be recorded as applied")
	}
}

func TestResolveInvalidIntentIsNeutral(t *testing.T) {
	r := NewResolver()
	p := r.Resolve(models.Intent("made_up"), models.Entities{}, steadySession(), nil)
	if p.Style != models.StyleNeutral || p.ShouldUseLLM {
		t.Errorf("policy = %+v, want neutral fallback", p)
	}
	if p.Metadata.ResolverError == "" {
		t.Error("resolver error not recorded")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := NewResolver()
	s := steadySession()
	a := r.Resolve(models.IntentMenuRequest, models.Entities{}, s, nil)
	b := r.Resolve(models.IntentMenuRequest, models.Entities{}, s, nil)
	if a != b {
		t.Errorf("same inputs resolved differently: %+v vs %+v", a, b)
	}
}
