package messaging

import (
	"context"
	"log/slog"

	"github.com/zamowbot/zamowbot/internal/pipeline"
)

// Responder consumes incoming messages from a Service and answers them
// through the pipeline. The sender's phone number doubles as the session ID,
// which also serializes turns per user: one goroutine reads the channel, so
// per-sender turns never interleave.
type Responder struct {
	service Service
	pipe    *pipeline.Pipeline
}

// NewResponder creates a responder over a messaging service and pipeline.
func NewResponder(service Service, pipe *pipeline.Pipeline) *Responder {
	return &Responder{service: service, pipe: pipe}
}

// Run processes incoming messages until the context is cancelled or the
// responses channel closes.
func (r *Responder) Run(ctx context.Context) {
	slog.Info("Responder started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("Responder stopping", "reason", ctx.Err())
			return
		case resp, ok := <-r.service.Responses():
			if !ok {
				slog.Info("Responder stopping: responses channel closed")
				return
			}
			r.handle(ctx, resp.From, resp.Body)
		}
	}
}

func (r *Responder) handle(ctx context.Context, from, body string) {
	result, err := r.pipe.Turn(ctx, from, body)
	if err != nil {
		slog.Error("Responder turn failed", "error", err, "from", from)
		return
	}
	if result.StopSpeaking {
		slog.Debug("Responder honoring stop, no reply sent", "from", from)
		return
	}
	if err := r.service.SendMessage(ctx, from, result.Final.Reply); err != nil {
		slog.Error("Responder send failed", "error", err, "from", from)
	}
}
