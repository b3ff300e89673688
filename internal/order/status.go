package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/appetiteclub/tableside/internal/auth"
	"github.com/appetiteclub/tableside/internal/fanout"
	"github.com/appetiteclub/tableside/pkg/enums/orderstatus"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const statusAttempts = 3

// StatusManager moves orders through their lifecycle on behalf of staff.
type StatusManager struct {
	orders   OrderRepo
	notifier Notifier
	logger   aqm.Logger
	now      func() time.Time
}

func NewStatusManager(orders OrderRepo, notifier Notifier, logger aqm.Logger) *StatusManager {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &StatusManager{
		orders:   orders,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Change applies requested to the order if the actor may touch its branch
// and the state machine allows it. A lost version race is re-validated
// against the winning write before retrying.
func (m *StatusManager) Change(ctx context.Context, orderID uuid.UUID, requested string, actor auth.Actor) (*Order, error) {
	target := orderstatus.ByName(strings.ToLower(strings.TrimSpace(requested)))
	if target == nil {
		return nil, validationError(fmt.Sprintf("unknown status %q", requested))
	}

	for attempt := 1; attempt <= statusAttempts; attempt++ {
		o, err := m.orders.Get(ctx, orderID)
		if err != nil {
			return nil, internalError(fmt.Errorf("get order: %w", err))
		}
		if o == nil {
			return nil, newError(ErrOrderNotFound, "", nil)
		}

		if !actor.CanAccessBranch(o.BranchID) {
			return nil, newError(ErrForbidden, "not allowed to manage orders of this branch", nil)
		}

		current, ok := o.CurrentStatus()
		if !ok {
			return nil, internalError(fmt.Errorf("order %s has unknown status %q", o.ID, o.Status))
		}
		if !orderstatus.CanTransition(current, *target) {
			return nil, newError(ErrInvalidTransition,
				fmt.Sprintf("cannot change status from %s to %s", current.Code(), target.Code()), nil)
		}

		now := m.now().UTC()
		won, err := m.orders.UpdateStatus(ctx, o.ID, o.Version, target.Code(), now, actor.UserID)
		if err != nil {
			return nil, internalError(fmt.Errorf("update order status: %w", err))
		}
		if !won {
			m.logger.Debug("status update lost version race", "order_id", o.ID.String(), "attempt", attempt)
			continue
		}

		previous := o.Status
		o.Status = target.Code()
		o.Version++
		o.UpdatedAt = now
		o.UpdatedBy = actor.UserID

		m.logger.Info("order status changed",
			"order_id", o.ID.String(),
			"order_number", o.OrderNumber,
			"from", previous,
			"to", o.Status,
			"actor", actor.UserID,
		)

		notifyOrder(m.notifier, m.logger, fanout.EventOrderStatusUpdate, o,
			fanout.OrderChannel(o.ID), fanout.BranchChannel(o.BranchID))
		return o, nil
	}

	return nil, newError(ErrConcurrentUpdate, "", nil)
}
