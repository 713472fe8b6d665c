// Package pipeline runs one utterance through the full decision flow:
// dialog nav guard, intent router, domain handler, surface rendering, and
// response finalization. One call, one turn, one finalized reply.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/zamowbot/zamowbot/internal/dialognav"
	"github.com/zamowbot/zamowbot/internal/guards"
	"github.com/zamowbot/zamowbot/internal/handlers"
	"github.com/zamowbot/zamowbot/internal/intent"
	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/respond"
	"github.com/zamowbot/zamowbot/internal/store"
	"github.com/zamowbot/zamowbot/internal/surface"
)

// storeTimeout bounds each session store call.
const storeTimeout = 5 * time.Second

// TurnResult is the outcome of one processed utterance.
type TurnResult struct {
	SessionID    string                `json:"session_id"`
	Intent       models.IntentResult   `json:"intent"`
	Final        respond.FinalResponse `json:"final"`
	Meta         dialognav.MetaIntent  `json:"meta,omitempty"`
	StopSpeaking bool                  `json:"stop_speaking,omitempty"`
}

// Pipeline wires the decision components. It assumes at most one in-flight
// turn per session ID; callers serialize turns per session externally.
type Pipeline struct {
	sessions   store.SessionStore
	router     *intent.Router
	guard      *dialognav.Guard
	handlers   *handlers.Registry
	controller *respond.Controller

	mu        sync.RWMutex
	overrides models.AdminOverrides
}

// New creates a pipeline over the given components.
func New(sessions store.SessionStore, router *intent.Router, guard *dialognav.Guard, registry *handlers.Registry, controller *respond.Controller) *Pipeline {
	return &Pipeline{
		sessions:   sessions,
		router:     router,
		guard:      guard,
		handlers:   registry,
		controller: controller,
	}
}

// SetOverrides replaces the operator policy overrides applied to all turns.
func (p *Pipeline) SetOverrides(o models.AdminOverrides) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overrides = o
}

// Overrides returns the current operator policy overrides.
func (p *Pipeline) Overrides() models.AdminOverrides {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.overrides
}

// Turn processes one utterance for one session.
func (p *Pipeline) Turn(ctx context.Context, sessionID, utterance string) (TurnResult, error) {
	started := time.Now()
	if strings.TrimSpace(utterance) == "" {
		return TurnResult{}, models.ErrEmptyUtterance
	}
	if sessionID == "" {
		return TurnResult{}, fmt.Errorf("session ID cannot be empty")
	}

	session, err := p.loadSession(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	// Navigation meta-intents short-circuit everything downstream.
	if nav := p.guard.Handle(session, utterance); nav != nil {
		return p.finishNavTurn(ctx, session, nav, started)
	}

	detected := p.router.Detect(ctx, utterance, session)
	if detected.Intent == models.IntentUnknown && guards.IsRestaurantLocked(session) && guards.LooksLikeDish(utterance) {
		// A bare dish-like phrase while a restaurant is locked is an order
		// attempt, not noise; the locked menu scopes the lookup.
		dish := strings.TrimSpace(utterance)
		detected = models.IntentResult{
			Intent:     models.IntentCreateOrder,
			Confidence: 0.7,
			Source:     "guard.locked_dish",
			Domain:     models.DomainOf(models.IntentCreateOrder),
			Entities: models.Entities{
				Dish:     dish,
				Quantity: 1,
				Items:    []models.OrderedItem{{Name: dish, Quantity: 1}},
			},
		}
	}
	hr := p.handlers.Handle(ctx, detected, session)
	rendered := renderResult(hr, session)

	overrides := p.Overrides()
	tctx := &respond.TurnContext{
		SessionID: sessionID,
		Intent:    detected.Intent,
		Entities:  detected.Entities,
		Session:   session,
		Overrides: &overrides,
		Rendered:  rendered,
		StartedAt: started,
	}
	final, err := p.controller.Finalize(ctx, rendered.Reply, tctx)
	if err != nil {
		return TurnResult{}, err
	}

	dialognav.Push(session, models.DialogEntry{
		Reply:      final.Reply,
		SurfaceKey: rendered.UIHints.SurfaceKey,
		At:         time.Now(),
	})
	session.LastIntent = detected.Intent
	session.ConversationPhase = guards.NextPhase(session.ConversationPhase, detected.Intent)
	session.InteractionCount++

	if err := p.saveSession(ctx, session); err != nil {
		// The reply already exists; losing the session write degrades the
		// next turn but must not fail this one.
		slog.Error("session save failed", "error", err, "sessionID", sessionID)
	}

	return TurnResult{SessionID: sessionID, Intent: detected, Final: final}, nil
}

// finishNavTurn finalizes a guard-handled turn. Guard replies go out
// verbatim; nav turns are never pushed onto the dialog stack.
func (p *Pipeline) finishNavTurn(ctx context.Context, session *models.Session, nav *dialognav.Result, started time.Time) (TurnResult, error) {
	slog.Debug("turn handled by nav guard", "sessionID", session.ID, "meta", nav.Meta)

	if nav.Meta == dialognav.MetaStop {
		// Silence is the whole answer; nothing is finalized or persisted.
		return TurnResult{SessionID: session.ID, Meta: nav.Meta, StopSpeaking: true}, nil
	}

	if nav.CancelRequested {
		session.PendingOrder = nil
		session.PendingDish = ""
		session.ExpectedContext = ""
	}

	overrides := p.Overrides()
	overrides.DisableLLM = true
	tctx := &respond.TurnContext{
		SessionID: session.ID,
		Intent:    models.IntentUnknown,
		Session:   session,
		Overrides: &overrides,
		Rendered:  models.RenderedSurface{Reply: nav.Reply},
		StartedAt: started,
	}
	final, err := p.controller.Finalize(ctx, nav.Reply, tctx)
	if err != nil {
		return TurnResult{}, err
	}

	session.InteractionCount++
	if err := p.saveSession(ctx, session); err != nil {
		slog.Error("session save failed", "error", err, "sessionID", session.ID)
	}
	return TurnResult{SessionID: session.ID, Intent: models.IntentResult{Intent: models.IntentUnknown, Source: "nav_guard", Domain: models.DomainSystem}, Final: final, Meta: nav.Meta}, nil
}

// renderResult picks the surface implied by the handler result and renders
// it, falling back to the handler's literal reply, then to the error surface.
func renderResult(hr *models.HandlerResult, session *models.Session) models.RenderedSurface {
	if s := surface.DetectSurface(hr, session); s != nil {
		return surface.RenderSurface(*s)
	}
	if hr != nil && strings.TrimSpace(hr.Reply) != "" {
		return models.RenderedSurface{Reply: hr.Reply}
	}
	return surface.Render(models.SurfaceError, nil)
}

func (p *Pipeline) loadSession(ctx context.Context, sessionID string) (*models.Session, error) {
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	session, err := p.sessions.GetSession(sctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if session == nil {
		session = &models.Session{
			ID:                sessionID,
			ConversationPhase: models.PhaseGreeting,
			CreatedAt:         time.Now(),
		}
	}
	return session, nil
}

func (p *Pipeline) saveSession(ctx context.Context, session *models.Session) error {
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return p.sessions.SaveSession(sctx, session)
}
