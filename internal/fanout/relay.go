package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/appetiteclub/tableside/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

// relayEnvelope tags events with the instance that produced them so an
// instance can skip its own messages when they come back from the broker.
type relayEnvelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// Relay spreads events across service instances over NATS. Local viewers are
// served straight from the hub; remote instances re-inject what they receive
// into theirs.
type Relay struct {
	hub        *Hub
	publisher  events.Publisher
	subscriber events.Subscriber
	origin     string
	logger     aqm.Logger
}

func NewRelay(hub *Hub, publisher events.Publisher, subscriber events.Subscriber, logger aqm.Logger) *Relay {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Relay{
		hub:        hub,
		publisher:  publisher,
		subscriber: subscriber,
		origin:     uuid.NewString(),
		logger:     logger,
	}
}

// Publish delivers evt to the local hub and forwards it to the broker.
func (r *Relay) Publish(ctx context.Context, evt Event) error {
	if err := r.hub.Publish(ctx, evt); err != nil {
		return err
	}
	if r.publisher == nil {
		return nil
	}

	payload, err := json.Marshal(relayEnvelope{Origin: r.origin, Event: evt})
	if err != nil {
		return fmt.Errorf("marshal relay envelope: %w", err)
	}
	if err := r.publisher.Publish(ctx, event.FanoutTopic, payload); err != nil {
		return fmt.Errorf("relay publish: %w", err)
	}
	return nil
}

func (r *Relay) Start(ctx context.Context) error {
	if r.subscriber == nil {
		return errors.New("relay subscriber is required")
	}
	if err := r.subscriber.Subscribe(ctx, event.FanoutTopic, r.handle); err != nil {
		return fmt.Errorf("subscribe %s: %w", event.FanoutTopic, err)
	}
	r.logger.Info("fanout relay subscribed", "topic", event.FanoutTopic, "origin", r.origin)
	return nil
}

func (r *Relay) Stop(ctx context.Context) error {
	return nil
}

func (r *Relay) handle(ctx context.Context, msg []byte) error {
	var env relayEnvelope
	if err := json.Unmarshal(msg, &env); err != nil {
		r.logger.Error("cannot decode relay envelope", "error", err)
		return err
	}
	if env.Origin == r.origin {
		return nil
	}
	if _, _, ok := ParseChannel(env.Event.Channel); !ok {
		r.logger.Debug("ignoring relay event for unknown channel", "channel", env.Event.Channel)
		return nil
	}
	return r.hub.Publish(context.Background(), env.Event)
}
