package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.mau.fi/whatsmeow/types/events"

	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/whatsapp"
)

// WhatsAppService implements Service over the Whatsmeow-based client.
type WhatsAppService struct {
	client    whatsapp.Sender
	waClient  *whatsapp.Client // full client, when available, for event handling
	receipts  chan models.Receipt
	responses chan models.Response
	done      chan struct{}
	mu        sync.RWMutex
	stopped   bool
}

// NewWhatsAppService wraps a WhatsApp sender as a messaging service. A full
// *whatsapp.Client additionally feeds incoming messages and receipts into the
// service channels; an interface client (mock) only sends.
func NewWhatsAppService(client whatsapp.Sender) *WhatsAppService {
	s := &WhatsAppService{
		client:    client,
		receipts:  make(chan models.Receipt, DefaultChannelBufferSize),
		responses: make(chan models.Response, DefaultChannelBufferSize),
		done:      make(chan struct{}),
	}
	if waClient, ok := client.(*whatsapp.Client); ok {
		s.waClient = waClient
		slog.Debug("WhatsAppService created with full client for event handling")
	} else {
		slog.Debug("WhatsAppService created with interface client (likely mock)")
	}
	return s
}

// ValidateAndCanonicalizeRecipient reduces a WhatsApp number to digits.
func (s *WhatsAppService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

// Start registers the event handler when a full client is available.
func (s *WhatsAppService) Start(ctx context.Context) error {
	if s.waClient == nil || s.waClient.GetClient() == nil {
		slog.Debug("WhatsAppService no full client available, skipping event handling")
		return nil
	}
	s.waClient.GetClient().AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			s.handleIncomingMessage(v)
		case *events.Receipt:
			s.handleReceipt(v)
		}
	})
	slog.Debug("WhatsAppService event handler registered")
	return nil
}

// Stop closes the service channels.
func (s *WhatsAppService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)
	close(s.receipts)
	close(s.responses)
	slog.Info("WhatsAppService stopped")
	return nil
}

// SendMessage sends a message and emits a sent receipt.
func (s *WhatsAppService) SendMessage(ctx context.Context, to string, body string) error {
	s.mu.RLock()
	if s.stopped {
		s.mu.RUnlock()
		return ErrServiceStopped
	}
	s.mu.RUnlock()

	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("WhatsAppService SendMessage validation error", "error", err, "to", to)
		return err
	}
	if err := s.client.SendMessage(ctx, canonicalTo, body); err != nil {
		slog.Error("WhatsAppService SendMessage error", "error", err, "to", canonicalTo)
		return err
	}
	s.safeEmitReceipt(models.Receipt{To: canonicalTo, Status: "sent", Time: time.Now().Unix()})
	return nil
}

// Receipts returns a channel of delivery status events.
func (s *WhatsAppService) Receipts() <-chan models.Receipt {
	return s.receipts
}

// Responses returns a channel of incoming user messages.
func (s *WhatsAppService) Responses() <-chan models.Response {
	return s.responses
}

func (s *WhatsAppService) handleIncomingMessage(msg *events.Message) {
	if msg.Info.IsFromMe {
		return
	}
	body := msg.Message.GetConversation()
	if body == "" && msg.Message.GetExtendedTextMessage() != nil {
		body = msg.Message.GetExtendedTextMessage().GetText()
	}
	if body == "" {
		return
	}
	s.safeEmitResponse(models.Response{
		From: msg.Info.Sender.User,
		Body: body,
		Time: msg.Info.Timestamp.Unix(),
	})
}

func (s *WhatsAppService) handleReceipt(rcpt *events.Receipt) {
	status := string(rcpt.Type)
	if status == "" {
		status = "delivered"
	}
	s.safeEmitReceipt(models.Receipt{
		To:     rcpt.Sender.User,
		Status: status,
		Time:   rcpt.Timestamp.Unix(),
	})
}

// safeEmitReceipt drops the event instead of blocking when the channel is
// full or the service stopped.
func (s *WhatsAppService) safeEmitReceipt(r models.Receipt) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return
	}
	select {
	case s.receipts <- r:
	default:
		slog.Warn("WhatsAppService receipt channel full, dropping event", "to", r.To)
	}
}

func (s *WhatsAppService) safeEmitResponse(r models.Response) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return
	}
	select {
	case s.responses <- r:
	default:
		slog.Warn("WhatsAppService response channel full, dropping message", "from", r.From)
	}
}
