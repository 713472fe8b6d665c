// Package phrase optionally rewords a rendered reply with a language model.
// The rendered text stays authoritative: every validation failure, model
// error, or disabled policy returns the rendered reply untouched.
package phrase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/zamowbot/zamowbot/internal/models"
)

// maxParaphraseFactor caps a paraphrase at this multiple of the rendered
// reply length; anything longer is suspect padding.
const maxParaphraseFactor = 3

// minParaphraseRunes rejects degenerate one-word paraphrases.
const minParaphraseRunes = 2

// maxSentences bounds the paraphrase; the rendered reply carries at most one
// question, and the paraphrase may not grow the conversation.
const maxSentences = 2

// Completer is the minimal language-model surface the generator needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator rewords rendered replies according to the turn's policy.
type Generator struct {
	client Completer
}

// NewGenerator creates a paraphrase generator. A nil client disables
// paraphrasing entirely.
func NewGenerator(client Completer) *Generator {
	return &Generator{client: client}
}

const paraphraseSystemPrompt = `Przeredaguj odpowiedz asystenta zamawiania jedzenia.
Zasady:
- Zachowaj dokladnie ten sam sens, fakty, nazwy i liczby.
- Nie dodawaj nowych pytan ani nowych informacji.
- Maksymalnie dwa zdania, po polsku.
- Odpowiedz TYLKO przeredagowanym tekstem.`

// Rephrase returns a policy-styled paraphrase of the rendered reply, or the
// rendered reply itself when the policy disables the model or the output
// fails validation.
func (g *Generator) Rephrase(ctx context.Context, rendered models.RenderedSurface, policy models.ResponsePolicy) string {
	if g == nil || g.client == nil || !policy.ShouldUseLLM {
		return rendered.Reply
	}

	user := fmt.Sprintf("Styl: %s. Dlugosc: %s.\nTekst: %s", policy.Style, policy.Verbosity, rendered.Reply)
	out, err := g.client.Complete(ctx, paraphraseSystemPrompt, user)
	if err != nil {
		slog.Warn("paraphrase failed, keeping rendered reply", "error", err, "surface", rendered.UIHints.SurfaceKey)
		return rendered.Reply
	}

	candidate := strings.TrimSpace(out)
	if reason := validate(candidate, rendered.Reply); reason != "" {
		slog.Debug("paraphrase rejected", "reason", reason, "surface", rendered.UIHints.SurfaceKey)
		return rendered.Reply
	}
	return candidate
}

// validate returns a non-empty rejection reason when the candidate may not
// replace the rendered reply.
func validate(candidate, rendered string) string {
	if utf8.RuneCountInString(candidate) < minParaphraseRunes {
		return "too short"
	}
	if utf8.RuneCountInString(candidate) > maxParaphraseFactor*utf8.RuneCountInString(rendered) {
		return "too long"
	}
	if countSentences(candidate) > maxSentences {
		return "too many sentences"
	}
	if strings.Count(candidate, "?") > strings.Count(rendered, "?") {
		return "introduces a new question"
	}
	if strings.Contains(candidate, "```") || strings.Contains(candidate, "{") {
		return "structured content leaked"
	}
	return ""
}

func countSentences(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case '.', '!', '?':
			n++
		}
	}
	if n == 0 && strings.TrimSpace(s) != "" {
		return 1
	}
	return n
}
