package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/tableside/internal/fanout"
	"github.com/appetiteclub/tableside/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

// Notifier hands events to the fanout without waiting for delivery.
type Notifier interface {
	Notify(evt fanout.Event)
}

type noopNotifier struct{}

func (noopNotifier) Notify(fanout.Event) {}

func notifyOrder(n Notifier, logger aqm.Logger, eventType string, o *Order, channels ...string) {
	payload, err := json.Marshal(o)
	if err != nil {
		logger.Error("cannot marshal order event", "error", err, "order_id", o.ID.String())
		return
	}

	now := time.Now().UTC()
	for _, channel := range channels {
		n.Notify(fanout.Event{
			Type:       eventType,
			Channel:    channel,
			Payload:    payload,
			OccurredAt: now,
		})
	}
}

// rejectionFeed publishes intake rejections for operational dashboards.
type rejectionFeed struct {
	publisher events.Publisher
	logger    aqm.Logger
}

func (f rejectionFeed) publish(ctx context.Context, e *Error, branchID, tableID, menuItemID uuid.UUID) {
	if f.publisher == nil {
		return
	}

	evt := event.OrderIntakeRejectedEvent{
		EventType:  event.EventOrderIntakeRejected,
		Code:       e.Code,
		Reason:     e.Message,
		OccurredAt: time.Now().UTC(),
	}
	if branchID != uuid.Nil {
		evt.BranchID = branchID.String()
	}
	if tableID != uuid.Nil {
		evt.TableID = tableID.String()
	}
	if menuItemID != uuid.Nil {
		evt.MenuItemID = menuItemID.String()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		f.logger.Error("cannot marshal intake rejection", "error", err, "code", e.Code)
		return
	}
	if err := f.publisher.Publish(ctx, event.OrderIntakeTopic, payload); err != nil {
		f.logger.Error("cannot publish intake rejection", "error", err, "code", e.Code)
	}
}
