// Package dialognav detects dialog meta-intents (back/repeat/next/stop/
// cancel/help/correct) purely lexically and answers them from the session's
// bounded dialog stack, short-circuiting the rest of the pipeline.
package dialognav

import (
	"log/slog"
	"regexp"

	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/textnorm"
)

// MetaIntent enumerates the navigation meta-intents.
type MetaIntent string

const (
	MetaBack    MetaIntent = "BACK"
	MetaRepeat  MetaIntent = "REPEAT"
	MetaNext    MetaIntent = "NEXT"
	MetaStop    MetaIntent = "STOP"
	MetaCancel  MetaIntent = "CANCEL"
	MetaHelp    MetaIntent = "HELP"
	MetaCorrect MetaIntent = "CORRECT"
)

// ShortCircuitThreshold is the minimum confidence at which the guard takes
// over the turn.
const ShortCircuitThreshold = 0.8

// metaPatterns are word-boundary-safe regexes over normalized (diacritics
// folded) text, checked in declaration order.
var metaPatterns = []struct {
	meta MetaIntent
	re   *regexp.Regexp
}{
	{MetaStop, regexp.MustCompile(`\b(stop|cisza|przestan|zamilcz|badz cicho|be quiet)\b`)},
	{MetaBack, regexp.MustCompile(`\b(cofnij|wroc|wstecz|poprzedni\w*|go back|back)\b`)},
	{MetaRepeat, regexp.MustCompile(`\b(powtorz|jeszcze raz|co powiedziales|repeat)\b`)},
	{MetaNext, regexp.MustCompile(`\b(dalej|nastepn\w*|next)\b`)},
	{MetaCancel, regexp.MustCompile(`\b(anuluj|rezygnuje|odwolaj|cancel)\b`)},
	{MetaHelp, regexp.MustCompile(`\b(pomoc|pomocy|co moge powiedziec|help)\b`)},
	{MetaCorrect, regexp.MustCompile(`\b(popraw|pomylka|pomylilem sie|pomylilam sie|zle zrozumiales|correct)\b`)},
}

// maxGuardWords bounds how long an utterance can be and still read as pure
// navigation; longer utterances carry real content for the router.
const maxGuardWords = 4

// Fixed guard replies.
const (
	replyAtStart     = "Jestesmy na poczatku rozmowy, nie moge cofnac dalej."
	replyNothingSaid = "Nie mam jeszcze nic do powtorzenia."
	replyNothingMore = "Nic wiecej nie ma, to byla ostatnia odpowiedz."
	replyCancelAck   = "Dobrze, przerywam to dzialanie."
	replyCorrectAck  = "Dobrze, poprawmy to. Powiedz jeszcze raz, co mam zmienic."
	replyHelp        = "Mozesz szukac restauracji, poprosic o menu, zamowic danie albo powiedziec: cofnij, powtorz, dalej, stop."
)

// Result is the guard's verdict for one turn. Business consequences of
// CANCEL/CORRECT are signal flags only; the caller decides what they mean.
type Result struct {
	Meta                MetaIntent
	Confidence          float64
	Reply               string
	StopSpeaking        bool
	CancelRequested     bool
	CorrectionRequested bool
	StackMoved          bool
}

// Guard is the stateless lexical classifier. Enabled=false (simple fallback
// mode) skips every meta-intent except STOP, which is always honored.
type Guard struct {
	enabled bool
}

// NewGuard creates a guard; pass enabled=false for simple fallback mode.
func NewGuard(enabled bool) *Guard {
	return &Guard{enabled: enabled}
}

// Classify returns the matched meta-intent and a confidence. Exact-phrase
// utterances score 1.0, short utterances containing the phrase score 0.85,
// anything longer scores below the short-circuit threshold.
func Classify(utterance string) (MetaIntent, float64) {
	norm := textnorm.Normalize(utterance)
	if norm == "" {
		return "", 0
	}
	words := len(textnorm.Words(norm))
	for _, p := range metaPatterns {
		loc := p.re.FindString(norm)
		if loc == "" {
			continue
		}
		switch {
		case loc == norm:
			return p.meta, 1.0
		case words <= maxGuardWords:
			return p.meta, 0.85
		default:
			return p.meta, 0.5
		}
	}
	return "", 0
}

// Handle inspects the utterance and, when a meta-intent clears the
// threshold, answers it from the session's dialog stack. Returns nil when
// the guard does not take the turn. The only session state the guard writes
// is the stack pointer.
func (g *Guard) Handle(session *models.Session, utterance string) *Result {
	meta, confidence := Classify(utterance)
	if meta == "" || confidence < ShortCircuitThreshold {
		return nil
	}
	if !g.enabled && meta != MetaStop {
		return nil
	}
	slog.Debug("dialog nav guard engaged", "meta", meta, "confidence", confidence)

	res := &Result{Meta: meta, Confidence: confidence}
	switch meta {
	case MetaStop:
		// Empty reply, no state change: the caller stops speaking.
		res.StopSpeaking = true
	case MetaBack:
		if session != nil && session.DialogStackIndex > 0 && len(session.DialogStack) > 0 {
			session.DialogStackIndex--
			res.Reply = session.DialogStack[session.DialogStackIndex].Reply
			res.StackMoved = true
		} else {
			res.Reply = replyAtStart
		}
	case MetaRepeat:
		if session != nil && len(session.DialogStack) > 0 {
			idx := clampIndex(session.DialogStackIndex, len(session.DialogStack))
			res.Reply = session.DialogStack[idx].Reply
		} else {
			res.Reply = replyNothingSaid
		}
	case MetaNext:
		if session != nil && session.DialogStackIndex < len(session.DialogStack)-1 {
			session.DialogStackIndex++
			res.Reply = session.DialogStack[session.DialogStackIndex].Reply
			res.StackMoved = true
		} else {
			res.Reply = replyNothingMore
		}
	case MetaCancel:
		res.Reply = replyCancelAck
		res.CancelRequested = true
	case MetaCorrect:
		res.Reply = replyCorrectAck
		res.CorrectionRequested = true
	case MetaHelp:
		res.Reply = replyHelp
	}
	return res
}

// Push appends a rendered turn to the session's dialog stack, evicting the
// oldest entry beyond the bound, and points the stack at the new tip. It is
// called by the surrounding pipeline after a successful render, never by the
// guard itself.
func Push(session *models.Session, entry models.DialogEntry) {
	if session == nil {
		return
	}
	session.DialogStack = append(session.DialogStack, entry)
	if len(session.DialogStack) > models.MaxDialogStack {
		session.DialogStack = session.DialogStack[len(session.DialogStack)-models.MaxDialogStack:]
	}
	session.DialogStackIndex = len(session.DialogStack) - 1
}

func clampIndex(idx, length int) int {
	if idx < 0 {
		return 0
	}
	if idx >= length {
		return length - 1
	}
	return idx
}
