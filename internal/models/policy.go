// Package models defines the response-policy value types for zamowbot.
package models

// ResponseStyle is the tone a reply should carry.
type ResponseStyle string

const (
	StyleEnthusiastic ResponseStyle = "enthusiastic"
	StyleEmpathetic   ResponseStyle = "empathetic"
	StyleProfessional ResponseStyle = "professional"
	StyleCasual       ResponseStyle = "casual"
	StyleNeutral      ResponseStyle = "neutral"
)

// Verbosity controls how much a reply says.
type Verbosity string

const (
	VerbosityConcise  Verbosity = "concise"
	VerbosityNormal   Verbosity = "normal"
	VerbosityDetailed Verbosity = "detailed"
)

// RecommendationMode controls how pushy suggestions are.
type RecommendationMode string

const (
	RecommendActive  RecommendationMode = "active"
	RecommendPassive RecommendationMode = "passive"
	RecommendOff     RecommendationMode = "off"
)

// TTSMode selects the speech-synthesis profile.
type TTSMode string

const (
	TTSStandard TTSMode = "standard"
	TTSFast     TTSMode = "fast"
)

// PolicyMetadata records how a policy was produced. It exists for
// reproducibility and testing, not for behavior.
type PolicyMetadata struct {
	SourceIntent    Intent `json:"source_intent"`
	OverrideApplied bool   `json:"override_applied"`
	AdaptedRule     string `json:"adapted_rule,omitempty"`
	ResolverError   string `json:"resolver_error,omitempty"`
}

// ResponsePolicy is a pure value recomputed every turn; it is logged but
// never persisted as a source of truth.
type ResponsePolicy struct {
	Style              ResponseStyle      `json:"style"`
	Verbosity          Verbosity          `json:"verbosity"`
	RecommendationMode RecommendationMode `json:"recommendation_mode"`
	ShouldUseLLM       bool               `json:"should_use_llm"`
	TTSMode            TTSMode            `json:"tts_mode"`
	Metadata           PolicyMetadata     `json:"metadata"`
}

// AdminOverrides are operator-forced policy settings; they apply last and win.
type AdminOverrides struct {
	ForceStyle     ResponseStyle `json:"force_style,omitempty"`
	ForceVerbosity Verbosity     `json:"force_verbosity,omitempty"`
	DisableLLM     bool          `json:"disable_llm,omitempty"`
	ForceFastTTS   bool          `json:"force_fast_tts,omitempty"`
}

// Empty reports whether no override is set.
func (a AdminOverrides) Empty() bool {
	return a.ForceStyle == "" && a.ForceVerbosity == "" && !a.DisableLLM && !a.ForceFastTTS
}
