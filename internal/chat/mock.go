package chat

import (
	"context"
	"errors"
	"sync"
)

// MockMessage is one message the mock adapter "sent". Edits accumulate in
// order; Text always holds the latest rendering.
type MockMessage struct {
	Text  string
	Edits []string
}

// MockAdapter records outbound replies and edits for tests.
type MockAdapter struct {
	mu   sync.Mutex
	self string
	sent []*MockMessage

	ReplyErr error
	EditErr  error
}

func NewMockAdapter(self string) *MockAdapter {
	return &MockAdapter{self: self}
}

func (a *MockAdapter) SelfIdentity(_ context.Context) (string, error) {
	return a.self, nil
}

func (a *MockAdapter) Listen(ctx context.Context, _ func(Message)) error {
	<-ctx.Done()
	return ctx.Err()
}

func (a *MockAdapter) Reply(_ context.Context, _ Message, text string) (MessageRef, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ReplyErr != nil {
		return nil, a.ReplyErr
	}
	m := &MockMessage{Text: text}
	a.sent = append(a.sent, m)
	return m, nil
}

func (a *MockAdapter) Edit(_ context.Context, ref MessageRef, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.EditErr != nil {
		return a.EditErr
	}
	m, ok := ref.(*MockMessage)
	if !ok {
		return errors.New("edit target is not a mock message")
	}
	m.Edits = append(m.Edits, text)
	m.Text = text
	return nil
}

// Sent returns the messages posted so far, in order.
func (a *MockAdapter) Sent() []*MockMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*MockMessage, len(a.sent))
	copy(out, a.sent)
	return out
}
