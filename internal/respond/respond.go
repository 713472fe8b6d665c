// Package respond is the single authorized exit point of the pipeline.
// Every reply leaves through Controller.Finalize, which resolves the policy,
// applies (or, in shadow mode, only computes) transformations, and stamps
// metadata for every turn.
package respond

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/policy"
)

// OperatingMode controls whether computed transformations affect output.
type OperatingMode string

const (
	// ModeShadow computes transformations and logs them without applying,
	// for safe rollout.
	ModeShadow OperatingMode = "shadow"
	// ModeActive applies transformations to the outgoing reply.
	ModeActive OperatingMode = "active"
)

// apologyReply replaces a missing or garbled raw reply; the turn still
// completes rather than failing.
const apologyReply = "Przepraszam, nie udalo mi sie przygotowac odpowiedzi. Sprobuj jeszcze raz."

// Paraphraser is the optional reword step the controller may hand off to.
type Paraphraser interface {
	Rephrase(ctx context.Context, rendered models.RenderedSurface, p models.ResponsePolicy) string
}

// TurnContext carries per-turn finalization state. One TurnContext belongs to
// exactly one pipeline run and must be finalized exactly once.
type TurnContext struct {
	SessionID string
	Intent    models.Intent
	Entities  models.Entities
	Session   *models.Session
	Overrides *models.AdminOverrides
	Rendered  models.RenderedSurface
	StartedAt time.Time

	responseFinalized bool
}

// Finalized reports whether this turn already produced its reply.
func (t *TurnContext) Finalized() bool { return t.responseFinalized }

// FinalMetadata records how the reply was produced, for every turn, even when
// no transformation fired.
type FinalMetadata struct {
	Mode             OperatingMode     `json:"mode"`
	Intent           models.Intent     `json:"intent"`
	SurfaceKey       models.SurfaceKey `json:"surface_key"`
	TransformApplied string            `json:"transform_applied,omitempty"`
	ApologyUsed      bool              `json:"apology_used,omitempty"`
	DurationMS       int64             `json:"duration_ms"`
}

// FinalResponse is the payload handed back to the caller.
type FinalResponse struct {
	Reply    string                `json:"reply"`
	RawReply string                `json:"raw_reply"`
	Policy   models.ResponsePolicy `json:"policy"`
	UIHints  models.UIHints        `json:"ui_hints"`
	Metadata FinalMetadata         `json:"metadata"`
}

// Controller finalizes turns. The operating mode is fixed at construction;
// there is no per-call mode switching.
type Controller struct {
	mode     OperatingMode
	resolver *policy.Resolver
	phrase   Paraphraser
}

// NewController creates a response controller. The paraphraser is optional.
func NewController(mode OperatingMode, resolver *policy.Resolver, phrase Paraphraser) *Controller {
	if resolver == nil {
		resolver = policy.NewResolver()
	}
	return &Controller{mode: mode, resolver: resolver, phrase: phrase}
}

// Mode returns the controller's operating mode.
func (c *Controller) Mode() OperatingMode { return c.mode }

// Finalize produces the turn's outgoing reply. Calling it twice on the same
// TurnContext is a programming-contract violation and returns
// models.ErrAlreadyFinalized with a loud diagnostic.
func (c *Controller) Finalize(ctx context.Context, rawReply string, tctx *TurnContext) (FinalResponse, error) {
	if tctx == nil {
		return FinalResponse{}, fmt.Errorf("finalize called with nil turn context")
	}
	if tctx.responseFinalized {
		slog.Error("double finalization attempt",
			"sessionID", tctx.SessionID, "intent", tctx.Intent, "surface", tctx.Rendered.UIHints.SurfaceKey)
		return FinalResponse{}, fmt.Errorf("session %s: %w", tctx.SessionID, models.ErrAlreadyFinalized)
	}
	tctx.responseFinalized = true

	meta := FinalMetadata{
		Mode:       c.mode,
		Intent:     tctx.Intent,
		SurfaceKey: tctx.Rendered.UIHints.SurfaceKey,
	}

	raw := rawReply
	if garbled(raw) {
		slog.Warn("missing or garbled raw reply, using apology", "sessionID", tctx.SessionID, "intent", tctx.Intent)
		raw = apologyReply
		meta.ApologyUsed = true
	}

	p := c.resolver.Resolve(tctx.Intent, tctx.Entities, tctx.Session, tctx.Overrides)

	reply, transform := c.transform(ctx, raw, p, tctx)
	meta.TransformApplied = transform
	if c.mode == ModeShadow && transform != "" {
		// Shadow mode computes but never applies; log what would have changed.
		slog.Info("shadow transform computed",
			"sessionID", tctx.SessionID, "transform", transform, "would_reply", reply)
		reply = raw
	}

	if !tctx.StartedAt.IsZero() {
		meta.DurationMS = time.Since(tctx.StartedAt).Milliseconds()
	}

	slog.Debug("response finalized",
		"sessionID", tctx.SessionID, "intent", tctx.Intent, "mode", c.mode,
		"transform", meta.TransformApplied, "durationMS", meta.DurationMS)

	return FinalResponse{
		Reply:    reply,
		RawReply: rawReply,
		Policy:   p,
		UIHints:  tctx.Rendered.UIHints,
		Metadata: meta,
	}, nil
}

// transform computes the styled reply and names the transformation that
// produced it; "" means the raw reply passed through untouched. Transform
// failures fall back to the untransformed reply.
func (c *Controller) transform(ctx context.Context, raw string, p models.ResponsePolicy, tctx *TurnContext) (string, string) {
	if p.ShouldUseLLM && c.phrase != nil {
		rendered := tctx.Rendered
		if rendered.Reply == "" {
			rendered.Reply = raw
		}
		if out := c.phrase.Rephrase(ctx, rendered, p); out != rendered.Reply && strings.TrimSpace(out) != "" {
			return out, "paraphrase"
		}
	}
	if p.Verbosity == models.VerbosityConcise {
		if short := firstSentence(raw); short != raw {
			return short, "concise"
		}
	}
	return raw, ""
}

// firstSentence cuts the reply at the first sentence boundary.
func firstSentence(s string) string {
	trimmed := strings.TrimSpace(s)
	for i, r := range trimmed {
		if r == '.' || r == '!' || r == '?' {
			return strings.TrimSpace(trimmed[:i+1])
		}
	}
	return trimmed
}

// garbled reports whether the raw reply is unusable: empty, whitespace, or
// invalid UTF-8.
func garbled(s string) bool {
	return strings.TrimSpace(s) == "" || !utf8.ValidString(s)
}
