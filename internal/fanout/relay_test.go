package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/appetiteclub/tableside/pkg/event"
)

func TestRelayPublishDeliversLocallyAndForwards(t *testing.T) {
	hub := NewHub(nil)
	pub := &MockPublisher{}
	relay := NewRelay(hub, pub, &MockSubscriber{}, nil)

	channel := BranchChannel(testBranchID)
	sub := NewSubscriber(4)
	hub.Subscribe(channel, sub)

	if err := relay.Publish(context.Background(), testEvent(channel, EventOrderCreated)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(sub.C) != 1 {
		t.Errorf("local subscriber queued = %d, want 1", len(sub.C))
	}
	msgs := pub.Messages()
	if len(msgs) != 1 {
		t.Fatalf("forwarded = %d, want 1", len(msgs))
	}

	var env relayEnvelope
	if err := json.Unmarshal(msgs[0], &env); err != nil {
		t.Fatalf("cannot decode envelope: %v", err)
	}
	if env.Origin != relay.origin || env.Event.Channel != channel {
		t.Errorf("envelope = %+v", env)
	}
}

func TestRelayPublishBrokerFailure(t *testing.T) {
	hub := NewHub(nil)
	pub := &MockPublisher{PublishFunc: func(ctx context.Context, topic string, msg []byte) error {
		return errors.New("nats: connection closed")
	}}
	relay := NewRelay(hub, pub, &MockSubscriber{}, nil)

	channel := BranchChannel(testBranchID)
	sub := NewSubscriber(4)
	hub.Subscribe(channel, sub)

	if err := relay.Publish(context.Background(), testEvent(channel, EventOrderCreated)); err == nil {
		t.Error("Publish() should report the broker failure")
	}
	if len(sub.C) != 1 {
		t.Error("local delivery should not depend on the broker")
	}
}

func TestRelayReinjectsRemoteEvents(t *testing.T) {
	hub := NewHub(nil)
	subscriber := &MockSubscriber{}
	relay := NewRelay(hub, &MockPublisher{}, subscriber, nil)

	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if subscriber.Topic != event.FanoutTopic {
		t.Errorf("subscribed topic = %q, want %q", subscriber.Topic, event.FanoutTopic)
	}

	channel := BranchChannel(testBranchID)
	sub := NewSubscriber(4)
	hub.Subscribe(channel, sub)

	remote, _ := json.Marshal(relayEnvelope{Origin: "other-instance", Event: testEvent(channel, EventOrderCreated)})
	own, _ := json.Marshal(relayEnvelope{Origin: relay.origin, Event: testEvent(channel, EventOrderCreated)})
	badChannel, _ := json.Marshal(relayEnvelope{Origin: "other-instance", Event: testEvent("kitchen:all", EventOrderCreated)})

	if err := subscriber.Handler(context.Background(), remote); err != nil {
		t.Fatalf("handler(remote) error = %v", err)
	}
	if err := subscriber.Handler(context.Background(), own); err != nil {
		t.Fatalf("handler(own) error = %v", err)
	}
	if err := subscriber.Handler(context.Background(), badChannel); err != nil {
		t.Fatalf("handler(badChannel) error = %v", err)
	}
	if err := subscriber.Handler(context.Background(), []byte("{")); err == nil {
		t.Error("handler should reject malformed envelopes")
	}

	if len(sub.C) != 1 {
		t.Errorf("re-injected = %d, want 1 (own messages skipped)", len(sub.C))
	}
}

func TestRelayStartRequiresSubscriber(t *testing.T) {
	relay := NewRelay(NewHub(nil), &MockPublisher{}, nil, nil)
	if err := relay.Start(context.Background()); err == nil {
		t.Error("Start() without subscriber should fail")
	}
}
