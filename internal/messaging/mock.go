package messaging

import (
	"context"
	"sync"

	"github.com/zamowbot/zamowbot/internal/models"
)

// MockService implements Service in memory, recording sends and allowing
// tests to inject incoming responses.
type MockService struct {
	mu        sync.Mutex
	sent      []models.Receipt
	bodies    map[string][]string
	receipts  chan models.Receipt
	responses chan models.Response
}

// NewMockService creates an in-memory messaging service for tests.
func NewMockService() *MockService {
	return &MockService{
		bodies:    make(map[string][]string),
		receipts:  make(chan models.Receipt, DefaultChannelBufferSize),
		responses: make(chan models.Response, DefaultChannelBufferSize),
	}
}

// ValidateAndCanonicalizeRecipient applies the shared phone rules.
func (s *MockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

// SendMessage records the message.
func (s *MockService) SendMessage(ctx context.Context, to string, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[to] = append(s.bodies[to], body)
	s.sent = append(s.sent, models.Receipt{To: to, Status: "sent"})
	return nil
}

// Start is a no-op.
func (s *MockService) Start(ctx context.Context) error { return nil }

// Stop closes the channels.
func (s *MockService) Stop() error {
	close(s.receipts)
	close(s.responses)
	return nil
}

// Receipts returns the receipts channel.
func (s *MockService) Receipts() <-chan models.Receipt { return s.receipts }

// Responses returns the responses channel.
func (s *MockService) Responses() <-chan models.Response { return s.responses }

// PushResponse injects an incoming message, as if a user had written.
func (s *MockService) PushResponse(r models.Response) {
	s.responses <- r
}

// SentTo returns the bodies sent to one recipient.
func (s *MockService) SentTo(to string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bodies[to]...)
}
