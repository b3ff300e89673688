package order

import (
	"time"

	"github.com/appetiteclub/tableside/internal/catalog"
	"github.com/appetiteclub/tableside/pkg/enums/orderstatus"
	"github.com/appetiteclub/tableside/pkg/enums/paymentstatus"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// Order is a customer submission for one table. Money fields are integer
// minor currency units and Total always equals Subtotal + Tax.
type Order struct {
	ID            uuid.UUID `json:"id" bson:"_id"`
	OrderNumber   string    `json:"order_number" bson:"order_number"`
	SessionID     string    `json:"session_id" bson:"session_id"`
	BranchID      uuid.UUID `json:"branch_id" bson:"branch_id"`
	BranchName    string    `json:"branch_name" bson:"branch_name"`
	BranchSlug    string    `json:"branch_slug" bson:"branch_slug"`
	TableID       uuid.UUID `json:"table_id" bson:"table_id"`
	TableNumber   string    `json:"table_number" bson:"table_number"`
	TableZone     string    `json:"table_zone,omitempty" bson:"table_zone,omitempty"`
	Lines         []Line    `json:"lines" bson:"lines"`
	Subtotal      int64     `json:"subtotal" bson:"subtotal"`
	Tax           int64     `json:"tax" bson:"tax"`
	Total         int64     `json:"total" bson:"total"`
	TaxRate       float64   `json:"tax_rate" bson:"tax_rate"`
	Status        string    `json:"status" bson:"status"`
	PaymentStatus string    `json:"payment_status" bson:"payment_status"`
	CustomerName  string    `json:"customer_name,omitempty" bson:"customer_name,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty" bson:"customer_phone,omitempty"`
	Version       int64     `json:"version" bson:"version"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy     string    `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
}

// Line snapshots the menu item as it was priced at submission time.
type Line struct {
	MenuItemID          uuid.UUID    `json:"menu_item_id" bson:"menu_item_id"`
	Name                catalog.Text `json:"name" bson:"name"`
	Quantity            int          `json:"quantity" bson:"quantity"`
	UnitPrice           int64        `json:"unit_price" bson:"unit_price"`
	LineTotal           int64        `json:"line_total" bson:"line_total"`
	SpecialInstructions string       `json:"special_instructions,omitempty" bson:"special_instructions,omitempty"`
}

func NewOrder() *Order {
	return &Order{
		ID:            aqm.GenerateNewID(),
		Status:        orderstatus.Statuses.Pending.Code(),
		PaymentStatus: paymentstatus.Statuses.Pending.Code(),
		Version:       1,
	}
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) BeforeCreate() {
	if o.ID == uuid.Nil {
		o.ID = aqm.GenerateNewID()
	}
	if o.Status == "" {
		o.Status = orderstatus.Statuses.Pending.Code()
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = paymentstatus.Statuses.Pending.Code()
	}
	if o.Version == 0 {
		o.Version = 1
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
}

// CurrentStatus returns the parsed status, or false if the stored value is
// not a known status.
func (o *Order) CurrentStatus() (orderstatus.Status, bool) {
	s := orderstatus.ByName(o.Status)
	if s == nil {
		return orderstatus.Status{}, false
	}
	return *s, true
}
