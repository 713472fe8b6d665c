// Package policy resolves the response style, verbosity, and TTS mode for a
// turn. The policy is orthogonal to reply content: it decides how something
// is said, never what.
package policy

import (
	"log/slog"

	"github.com/zamowbot/zamowbot/internal/models"
)

// Session-adaptation thresholds.
const (
	// casualAfterTurns relaxes a professional register once the
	// conversation is clearly under way.
	casualAfterTurns = 6
	// conciseBelowTurns keeps early replies short while trust builds.
	conciseBelowTurns = 2
)

// basePolicies is the static intent -> policy table applied first.
var basePolicies = map[models.Intent]models.ResponsePolicy{
	models.IntentFindNearby: {
		Style: models.StyleEnthusiastic, Verbosity: models.VerbosityNormal,
		RecommendationMode: models.RecommendActive, ShouldUseLLM: true, TTSMode: models.TTSStandard,
	},
	models.IntentRecommend: {
		Style: models.StyleEnthusiastic, Verbosity: models.VerbosityDetailed,
		RecommendationMode: models.RecommendActive, ShouldUseLLM: true, TTSMode: models.TTSStandard,
	},
	models.IntentShowMoreOptions: {
		Style: models.StyleEnthusiastic, Verbosity: models.VerbosityConcise,
		RecommendationMode: models.RecommendActive, ShouldUseLLM: true, TTSMode: models.TTSStandard,
	},
	models.IntentSelectRestaurant: {
		Style: models.StyleCasual, Verbosity: models.VerbosityNormal,
		RecommendationMode: models.RecommendPassive, ShouldUseLLM: true, TTSMode: models.TTSStandard,
	},
	models.IntentMenuRequest: {
		Style: models.StyleProfessional, Verbosity: models.VerbosityNormal,
		RecommendationMode: models.RecommendPassive, ShouldUseLLM: true, TTSMode: models.TTSStandard,
	},
	models.IntentCreateOrder: {
		Style: models.StyleProfessional, Verbosity: models.VerbosityNormal,
		RecommendationMode: models.RecommendPassive, ShouldUseLLM: true, TTSMode: models.TTSStandard,
	},
	models.IntentConfirmOrder: {
		Style: models.StyleEmpathetic, Verbosity: models.VerbosityDetailed,
		RecommendationMode: models.RecommendOff, ShouldUseLLM: true, TTSMode: models.TTSStandard,
	},
	models.IntentCancelOrder: {
		Style: models.StyleEmpathetic, Verbosity: models.VerbosityConcise,
		RecommendationMode: models.RecommendOff, ShouldUseLLM: false, TTSMode: models.TTSStandard,
	},
	models.IntentConfirm: {
		Style: models.StyleCasual, Verbosity: models.VerbosityConcise,
		RecommendationMode: models.RecommendPassive, ShouldUseLLM: false, TTSMode: models.TTSStandard,
	},
	models.IntentClarify: {
		Style: models.StyleEmpathetic, Verbosity: models.VerbosityDetailed,
		RecommendationMode: models.RecommendOff, ShouldUseLLM: false, TTSMode: models.TTSStandard,
	},
	models.IntentUnknown: {
		Style: models.StyleEmpathetic, Verbosity: models.VerbosityDetailed,
		RecommendationMode: models.RecommendOff, ShouldUseLLM: false, TTSMode: models.TTSStandard,
	},
}

// neutralPolicy is the fixed safe fallback when resolution fails.
func neutralPolicy(intent models.Intent, resolverErr string) models.ResponsePolicy {
	return models.ResponsePolicy{
		Style:              models.StyleNeutral,
		Verbosity:          models.VerbosityNormal,
		RecommendationMode: models.RecommendPassive,
		ShouldUseLLM:       false,
		TTSMode:            models.TTSStandard,
		Metadata: models.PolicyMetadata{
			SourceIntent:  intent,
			ResolverError: resolverErr,
		},
	}
}

// Resolver maps (intent, entities, session, overrides) to a policy.
type Resolver struct{}

// NewResolver creates a policy resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve computes the deterministic policy for a turn. Base table first,
// session-adaptive rules next, admin overrides last and winning. Metadata
// always records the source intent and whether an override fired.
func (r *Resolver) Resolve(detected models.Intent, entities models.Entities, session *models.Session, overrides *models.AdminOverrides) models.ResponsePolicy {
	if !models.IsValidIntent(detected) {
		slog.Warn("policy resolution failed, using neutral policy", "intent", detected)
		return neutralPolicy(detected, "intent outside taxonomy")
	}

	p, ok := basePolicies[detected]
	if !ok {
		return neutralPolicy(detected, "no base policy for intent")
	}
	p.Metadata = models.PolicyMetadata{SourceIntent: detected}

	if session != nil {
		switch {
		case (session.LastIntent == models.IntentUnknown || session.LastIntent == models.IntentClarify) && session.LastIntent != "":
			// The previous turn confused the user; slow down and explain.
			p.Style = models.StyleEmpathetic
			p.Verbosity = models.VerbosityDetailed
			p.Metadata.AdaptedRule = "after_confusion"
		case session.InteractionCount < conciseBelowTurns:
			p.Verbosity = models.VerbosityConcise
			p.Metadata.AdaptedRule = "early_conversation"
		case session.InteractionCount > casualAfterTurns && p.Style == models.StyleProfessional:
			p.Style = models.StyleCasual
			p.Metadata.AdaptedRule = "long_conversation"
		}
		if session.CurrentRestaurant != "" && p.RecommendationMode == models.RecommendActive {
			p.RecommendationMode = models.RecommendPassive
		}
	}

	if overrides != nil && !overrides.Empty() {
		if overrides.ForceStyle != "" {
			p.Style = overrides.ForceStyle
		}
		if overrides.ForceVerbosity != "" {
			p.Verbosity = overrides.ForceVerbosity
		}
		if overrides.DisableLLM {
			p.ShouldUseLLM = false
		}
		if overrides.ForceFastTTS {
			p.TTSMode = models.TTSFast
		}
		p.Metadata.OverrideApplied = true
	}

	slog.Debug("policy resolved",
		"intent", detected, "style", p.Style, "verbosity", p.Verbosity,
		"llm", p.ShouldUseLLM, "tts", p.TTSMode, "override", p.Metadata.OverrideApplied)
	return p
}
