package fanout

import (
	"context"
	"net/http"
	"sync"

	"github.com/appetiteclub/tableside/internal/auth"
	"github.com/aquamarinepk/aqm/events"
)

// MockPublisher records published messages
type MockPublisher struct {
	mu          sync.Mutex
	Published   [][]byte
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, msg)
	return nil
}

func (m *MockPublisher) Messages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.Published...)
}

// MockSubscriber captures the handler so tests can push messages into it
type MockSubscriber struct {
	Topic   string
	Handler events.HandlerFunc
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	m.Topic = topic
	m.Handler = handler
	return nil
}

// MockSink records events handed over by the dispatcher
type MockSink struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func NewMockSink() *MockSink {
	return &MockSink{ch: make(chan Event, 1024)}
}

func (m *MockSink) Publish(ctx context.Context, evt Event) error {
	m.mu.Lock()
	m.events = append(m.events, evt)
	m.mu.Unlock()
	m.ch <- evt
	return nil
}

// MockResolver returns a fixed actor or error
type MockResolver struct {
	Actor auth.Actor
	Err   error
}

func (m *MockResolver) Resolve(r *http.Request) (auth.Actor, error) {
	return m.Actor, m.Err
}
