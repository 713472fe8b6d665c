package dialognav

import (
	"fmt"
	"testing"

	"github.com/zamowbot/zamowbot/internal/models"
)

func stackedSession(replies ...string) *models.Session {
	s := &models.Session{ID: "s1"}
	for _, r := range replies {
		Push(s, models.DialogEntry{Reply: r})
	}
	return s
}

func TestClassifyConfidenceTiers(t *testing.T) {
	cases := []struct {
		utterance string
		meta      MetaIntent
		conf      float64
	}{
		{"cofnij", MetaBack, 1.0},
		{"cofnij to prosze", MetaBack, 0.85},
		{"powtorz", MetaRepeat, 1.0},
		{"stop", MetaStop, 1.0},
		{"anuluj", MetaCancel, 1.0},
		{"pomoc", MetaHelp, 1.0},
		{"chcialbym moze jednak cofnij ale nie wiem", MetaBack, 0.5},
		{"poprosze pizze", "", 0},
		{"", "", 0},
	}
	for _, c := range cases {
		meta, conf := Classify(c.utterance)
		if meta != c.meta || conf != c.conf {
			t.Errorf("Classify(%q) = (%s, %v), want (%s, %v)", c.utterance, meta, conf, c.meta, c.conf)
		}
	}
}

func TestHandleBackReplaysVerbatim(t *testing.T) {
	g := NewGuard(true)
	s := stackedSession("pierwsza odpowiedz", "druga odpowiedz", "trzecia odpowiedz")

	res := g.Handle(s, "cofnij")
	if res == nil {
		t.Fatal("guard did not take the turn")
	}
	if res.Reply != "druga odpowiedz" || !res.StackMoved {
		t.Errorf("got reply %q moved=%v, want previous reply verbatim", res.Reply, res.StackMoved)
	}
	if s.DialogStackIndex != 1 {
		t.Errorf("stack index = %d, want 1", s.DialogStackIndex)
	}

	// Two more steps back hit the start of the conversation.
	g.Handle(s, "cofnij")
	res = g.Handle(s, "cofnij")
	if res.Reply == "" || res.StackMoved {
		t.Errorf("at stack start expected fixed reply without movement, got %q moved=%v", res.Reply, res.StackMoved)
	}
	if s.DialogStackIndex != 0 {
		t.Errorf("stack index = %d, want pinned at 0", s.DialogStackIndex)
	}
}

func TestHandleRepeatAndNext(t *testing.T) {
	g := NewGuard(true)
	s := stackedSession("pierwsza", "druga")

	if res := g.Handle(s, "powtorz"); res.Reply != "druga" {
		t.Errorf("repeat at tip = %q, want druga", res.Reply)
	}
	if res := g.Handle(s, "dalej"); res.StackMoved || res.Reply != replyNothingMore {
		t.Errorf("next at tip = %q, want fixed no-more reply", res.Reply)
	}

	g.Handle(s, "cofnij")
	if res := g.Handle(s, "dalej"); !res.StackMoved || res.Reply != "druga" {
		t.Errorf("next after back = %q, want druga", res.Reply)
	}
}

func TestHandleRepeatWithEmptyStack(t *testing.T) {
	g := NewGuard(true)
	res := g.Handle(&models.Session{ID: "s1"}, "powtorz")
	if res == nil || res.Reply != replyNothingSaid {
		t.Fatalf("got %+v, want fixed nothing-to-repeat reply", res)
	}
}

func TestHandleStopIsSilentAndAlwaysHonored(t *testing.T) {
	enabled := NewGuard(true)
	disabled := NewGuard(false)
	s := stackedSession("cos")

	for _, g := range []*Guard{enabled, disabled} {
		res := g.Handle(s, "stop")
		if res == nil || !res.StopSpeaking || res.Reply != "" {
			t.Errorf("stop verdict = %+v, want silent StopSpeaking", res)
		}
	}

	// Every other meta-intent is skipped in simple fallback mode.
	if res := disabled.Handle(s, "cofnij"); res != nil {
		t.Errorf("disabled guard handled back: %+v", res)
	}
}

func TestHandleCancelAndCorrectAreSignalsOnly(t *testing.T) {
	g := NewGuard(true)
	s := stackedSession("cos")

	res := g.Handle(s, "anuluj")
	if res == nil || !res.CancelRequested || res.Reply == "" {
		t.Fatalf("cancel verdict = %+v", res)
	}
	res = g.Handle(s, "pomylka")
	if res == nil || !res.CorrectionRequested || res.Reply == "" {
		t.Fatalf("correct verdict = %+v", res)
	}
}

func TestHandleLongUtteranceFallsThrough(t *testing.T) {
	g := NewGuard(true)
	if res := g.Handle(stackedSession("cos"), "chcialbym moze jednak cofnij ale nie wiem"); res != nil {
		t.Errorf("low-confidence meta must not short-circuit, got %+v", res)
	}
}

func TestPushEvictsBeyondBound(t *testing.T) {
	s := &models.Session{ID: "s1"}
	for i := 0; i < models.MaxDialogStack+3; i++ {
		Push(s, models.DialogEntry{Reply: fmt.Sprintf("odpowiedz %d", i)})
	}
	if len(s.DialogStack) != models.MaxDialogStack {
		t.Fatalf("stack length = %d, want %d", len(s.DialogStack), models.MaxDialogStack)
	}
	if s.DialogStack[0].Reply != "odpowiedz 3" {
		t.Errorf("oldest entry = %q, want odpowiedz 3 after eviction", s.DialogStack[0].Reply)
	}
	if s.DialogStackIndex != models.MaxDialogStack-1 {
		t.Errorf("stack index = %d, want tip", s.DialogStackIndex)
	}
}
