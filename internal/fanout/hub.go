package fanout

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const (
	EventOrderCreated      = "order-created"
	EventOrderStatusUpdate = "order-status-update"

	branchPrefix = "branch:"
	orderPrefix  = "order:"

	DefaultSubscriberBuffer = 32
)

// Event is a single notification addressed to one channel.
type Event struct {
	Type       string          `json:"type"`
	Channel    string          `json:"channel"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func BranchChannel(id uuid.UUID) string {
	return branchPrefix + id.String()
}

func OrderChannel(id uuid.UUID) string {
	return orderPrefix + id.String()
}

// ParseChannel validates a channel name and returns its kind ("branch" or
// "order") and id.
func ParseChannel(channel string) (kind string, id uuid.UUID, ok bool) {
	var raw string
	switch {
	case strings.HasPrefix(channel, branchPrefix):
		kind, raw = "branch", strings.TrimPrefix(channel, branchPrefix)
	case strings.HasPrefix(channel, orderPrefix):
		kind, raw = "order", strings.TrimPrefix(channel, orderPrefix)
	default:
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return "", uuid.Nil, false
	}
	return kind, id, true
}

// Subscriber is one live viewer. Events arrive on C until the hub removes it.
type Subscriber struct {
	ID string
	C  chan Event

	closed bool
}

func NewSubscriber(buffer int) *Subscriber {
	if buffer < 1 {
		buffer = DefaultSubscriberBuffer
	}
	return &Subscriber{
		ID: uuid.NewString(),
		C:  make(chan Event, buffer),
	}
}

// Hub routes events to the subscribers joined to their channel. Delivery is
// at-most-once: a subscriber whose buffer is full misses the event.
type Hub struct {
	logger aqm.Logger

	mu       sync.RWMutex
	channels map[string]map[*Subscriber]struct{}
}

func NewHub(logger aqm.Logger) *Hub {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Hub{
		logger:   logger,
		channels: make(map[string]map[*Subscriber]struct{}),
	}
}

func (h *Hub) Subscribe(channel string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.closed {
		return
	}
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.channels[channel] = subs
	}
	subs[sub] = struct{}{}
}

func (h *Hub) Unsubscribe(channel string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(channel, sub)
}

// Remove detaches the subscriber from every channel and closes C.
func (h *Hub) Remove(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel := range h.channels {
		h.detach(channel, sub)
	}
	if !sub.closed {
		sub.closed = true
		close(sub.C)
	}
}

func (h *Hub) detach(channel string, sub *Subscriber) {
	subs, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.channels, channel)
	}
}

// Publish delivers evt to the subscribers currently joined to its channel.
// It never blocks.
func (h *Hub) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.channels[evt.Channel] {
		select {
		case sub.C <- evt:
		default:
			h.logger.Debug("subscriber buffer full, dropping event",
				"subscriber_id", sub.ID,
				"channel", evt.Channel,
				"event_type", evt.Type,
			)
		}
	}
	return nil
}

// SubscriberCount reports how many subscribers are joined to channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
