package phrase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zamowbot/zamowbot/internal/models"
)

// stubCompleter returns a fixed output or error.
type stubCompleter struct {
	out string
	err error
}

func (s stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.out, s.err
}

func llmPolicy() models.ResponsePolicy {
	return models.ResponsePolicy{
		Style: models.StyleCasual, Verbosity: models.VerbosityNormal, ShouldUseLLM: true,
	}
}

func renderedReply(text string) models.RenderedSurface {
	return models.RenderedSurface{
		Reply:   text,
		UIHints: models.UIHints{SurfaceKey: models.SurfaceRestaurantsFound},
	}
}

func TestRephraseAcceptsValidCandidate(t *testing.T) {
	g := NewGenerator(stubCompleter{out: "  Mam dwie propozycje. Ktora bierzemy?  "})
	rendered := renderedReply("Znalazlem: A, B. Ktora wybierasz?")

	got := g.Rephrase(context.Background(), rendered, llmPolicy())
	if got != "Mam dwie propozycje. Ktora bierzemy?" {
		t.Errorf("got %q, want the trimmed paraphrase", got)
	}
}

func TestRephraseDisabledPaths(t *testing.T) {
	rendered := renderedReply("Znalazlem: A, B. Ktora wybierasz?")

	g := NewGenerator(nil)
	if got := g.Rephrase(context.Background(), rendered, llmPolicy()); got != rendered.Reply {
		t.Errorf("nil client must pass through, got %q", got)
	}

	g = NewGenerator(stubCompleter{out: "Cokolwiek."})
	p := llmPolicy()
	p.ShouldUseLLM = false
	if got := g.Rephrase(context.Background(), rendered, p); got != rendered.Reply {
		t.Errorf("disabled policy must pass through, got %q", got)
	}
}

func TestRephraseModelErrorFallsBack(t *testing.T) {
	g := NewGenerator(stubCompleter{err: errors.New("model down")})
	rendered := renderedReply("Znalazlem: A, B. Ktora wybierasz?")
	if got := g.Rephrase(context.Background(), rendered, llmPolicy()); got != rendered.Reply {
		t.Errorf("model error must pass through, got %q", got)
	}
}

func TestRephraseRejectsBadCandidates(t *testing.T) {
	rendered := renderedReply("Znalazlem: A, B. Ktora wybierasz?")
	cases := []struct {
		name string
		out  string
	}{
		{"too short", "A"},
		{"too long", strings.Repeat("bardzo dluga odpowiedz ", 20)},
		{"too many sentences", "Raz. Dwa. Trzy."},
		{"new question", "Znalazlem A i B. Ktora wybierasz? A moze cos innego?"},
		{"code fence", "```json\nZnalazlem A i B```"},
		{"structured content", `{"reply":"Znalazlem A i B"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := NewGenerator(stubCompleter{out: c.out})
			if got := g.Rephrase(context.Background(), rendered, llmPolicy()); got != rendered.Reply {
				t.Errorf("candidate %q must be rejected, got %q", c.out, got)
			}
		})
	}
}

func TestValidateReasons(t *testing.T) {
	rendered := "Znalazlem: A, B. Ktora wybierasz?"
	if reason := validate("Mam dwie propozycje. Ktora bierzemy?", rendered); reason != "" {
		t.Errorf("valid candidate rejected: %s", reason)
	}
	if reason := validate("Raz. Dwa. Trzy.", rendered); reason != "too many sentences" {
		t.Errorf("reason = %q", reason)
	}
	if reason := validate("Co? Gdzie? ", rendered); reason == "" {
		t.Error("extra question not rejected")
	}
}
