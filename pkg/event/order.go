package event

import "time"

const (
	// OrderIntakeTopic carries rejections emitted while validating scans and carts.
	OrderIntakeTopic = "orders.intake"
	// FanoutTopic relays notification fanout events between service replicas.
	FanoutTopic = "tableside.fanout"

	EventOrderIntakeRejected = "order.intake.rejected"
)

// OrderIntakeRejectedEvent captures why a submission was turned away. The
// scan token is never included so the feed cannot be used to probe tokens.
type OrderIntakeRejectedEvent struct {
	EventType  string    `json:"event_type"`
	Code       string    `json:"code"`
	Reason     string    `json:"reason"`
	BranchID   string    `json:"branch_id,omitempty"`
	TableID    string    `json:"table_id,omitempty"`
	MenuItemID string    `json:"menu_item_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
