package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// mockCompleter records the last request and returns a canned response.
type mockCompleter struct {
	lastParams openai.ChatCompletionNewParams
	content    string
	err        error
	choices    int
}

func (m *mockCompleter) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.lastParams = body
	if m.err != nil {
		return nil, m.err
	}
	resp := &openai.ChatCompletion{}
	for i := 0; i < m.choices; i++ {
		resp.Choices = append(resp.Choices, openai.ChatCompletionChoice{
			Message: openai.ChatCompletionMessage{Content: m.content},
		})
	}
	return resp, nil
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	mock := &mockCompleter{content: `{"intent":"find_nearby","confidence":0.8}`, choices: 2}
	c := NewClientWithCompleter(mock)

	got, err := c.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != mock.content {
		t.Errorf("got %q", got)
	}
	if len(mock.lastParams.Messages) != 2 {
		t.Errorf("messages = %d, want system + user", len(mock.lastParams.Messages))
	}
}

func TestCompleteErrors(t *testing.T) {
	c := NewClientWithCompleter(&mockCompleter{err: errors.New("rate limited")})
	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Error("transport error not surfaced")
	}

	c = NewClientWithCompleter(&mockCompleter{choices: 0})
	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Error("empty choice list not surfaced")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("missing API key accepted")
	}
	if _, err := NewClient(WithAPIKey("test-key")); err != nil {
		t.Errorf("explicit key rejected: %v", err)
	}
}
