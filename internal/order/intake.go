package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/appetiteclub/tableside/internal/catalog"
	"github.com/appetiteclub/tableside/internal/fanout"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

const (
	MaxLines               = 50
	MaxQuantity            = 99
	MaxInstructionsLength  = 500
	MaxCustomerNameLength  = 100
	MaxCustomerPhoneLength = 32
	MaxScanTokenLength     = 128

	createAttempts = 3
)

type SubmitRequest struct {
	ScanToken     string
	Lines         []SubmitLine
	CustomerName  string
	CustomerPhone string
}

type SubmitLine struct {
	MenuItemID          uuid.UUID
	Quantity            int
	SpecialInstructions string
}

// Identity mints order numbers and customer session ids.
type Identity interface {
	NextOrderNumber(ctx context.Context) (string, error)
	NewSessionID() (string, error)
}

type IntakeDeps struct {
	Catalog   Catalog
	Orders    OrderRepo
	Identity  Identity
	Notifier  Notifier
	Publisher events.Publisher
}

// Intake turns a scanned table and a cart into a persisted, priced order.
type Intake struct {
	catalog    Catalog
	orders     OrderRepo
	identity   Identity
	notifier   Notifier
	rejections rejectionFeed
	logger     aqm.Logger
}

func NewIntake(deps IntakeDeps, logger aqm.Logger) *Intake {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Intake{
		catalog:    deps.Catalog,
		orders:     deps.Orders,
		identity:   deps.Identity,
		notifier:   notifier,
		rejections: rejectionFeed{publisher: deps.Publisher, logger: logger},
		logger:     logger,
	}
}

// Submit validates and prices the request against live catalog data and
// stores the order. Either every line is accepted or nothing is written.
func (in *Intake) Submit(ctx context.Context, req SubmitRequest) (*Order, error) {
	req = normalizeSubmit(req)
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	table, branch, err := in.catalog.ResolveTable(ctx, req.ScanToken)
	if err != nil {
		if errors.Is(err, catalog.ErrTableNotFound) {
			e := newError(ErrTableNotFound, "", nil)
			in.rejections.publish(ctx, e, uuid.Nil, uuid.Nil, uuid.Nil)
			return nil, e
		}
		return nil, internalError(fmt.Errorf("resolve table: %w", err))
	}

	lines, priced, err := in.resolveLines(ctx, branch, table, req.Lines)
	if err != nil {
		return nil, err
	}

	totals, err := Price(priced, branch.TaxRate)
	if err != nil {
		return nil, internalError(fmt.Errorf("price order: %w", err))
	}
	for i := range lines {
		lines[i].LineTotal = totals.LineTotals[i]
	}

	sessionID, err := in.identity.NewSessionID()
	if err != nil {
		return nil, internalError(err)
	}

	o := NewOrder()
	o.SessionID = sessionID
	o.BranchID = branch.ID
	o.BranchName = branch.Name
	o.BranchSlug = branch.Slug
	o.TableID = table.ID
	o.TableNumber = table.Number
	o.TableZone = table.Zone
	o.Lines = lines
	o.Subtotal = totals.Subtotal
	o.Tax = totals.Tax
	o.Total = totals.Total
	o.TaxRate = branch.TaxRate
	o.CustomerName = req.CustomerName
	o.CustomerPhone = req.CustomerPhone
	o.BeforeCreate()

	if err := in.create(ctx, o); err != nil {
		return nil, err
	}

	in.logger.Info("order created",
		"order_id", o.ID.String(),
		"order_number", o.OrderNumber,
		"branch_id", o.BranchID.String(),
		"table", o.TableNumber,
		"total", FormatAmount(o.Total),
	)

	notifyOrder(in.notifier, in.logger, fanout.EventOrderCreated, o, fanout.BranchChannel(o.BranchID))
	return o, nil
}

// create mints an order number and inserts the order, minting a fresh
// number when the ledger reports a collision.
func (in *Intake) create(ctx context.Context, o *Order) error {
	var lastErr error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		number, err := in.identity.NextOrderNumber(ctx)
		if err != nil {
			return internalError(err)
		}
		o.OrderNumber = number

		err = in.orders.Create(ctx, o)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateOrderNumber) {
			return internalError(fmt.Errorf("store order: %w", err))
		}
		in.logger.Info("order number collision, retrying", "order_number", number, "attempt", attempt)
		lastErr = err
	}
	return internalError(fmt.Errorf("store order after %d attempts: %w", createAttempts, lastErr))
}

func (in *Intake) resolveLines(ctx context.Context, branch *catalog.Branch, table *catalog.Table, reqLines []SubmitLine) ([]Line, []PricedLine, error) {
	lines := make([]Line, 0, len(reqLines))
	priced := make([]PricedLine, 0, len(reqLines))
	seen := make(map[uuid.UUID]*catalog.MenuItem)

	for _, rl := range reqLines {
		item, ok := seen[rl.MenuItemID]
		if !ok {
			var err error
			item, err = in.orderableItem(ctx, branch, table, rl.MenuItemID)
			if err != nil {
				return nil, nil, err
			}
			seen[rl.MenuItemID] = item
		}

		lines = append(lines, Line{
			MenuItemID:          item.ID,
			Name:                item.Name.Clone(),
			Quantity:            rl.Quantity,
			UnitPrice:           item.Price,
			SpecialInstructions: rl.SpecialInstructions,
		})
		priced = append(priced, PricedLine{UnitPrice: item.Price, Quantity: rl.Quantity})
	}
	return lines, priced, nil
}

// orderableItem requires the item to exist, be available, and be enabled
// for the branch.
func (in *Intake) orderableItem(ctx context.Context, branch *catalog.Branch, table *catalog.Table, id uuid.UUID) (*catalog.MenuItem, error) {
	item, err := in.catalog.MenuItem(ctx, id)
	if err != nil {
		return nil, internalError(fmt.Errorf("get menu item %s: %w", id, err))
	}
	if item == nil {
		e := newError(ErrMenuItemNotFound, fmt.Sprintf("menu item %s not found", id), nil)
		in.rejections.publish(ctx, e, branch.ID, table.ID, id)
		return nil, e
	}

	unavailable := func() error {
		e := newError(ErrMenuItemUnavailable, fmt.Sprintf("%s is currently unavailable", item.Name.In("en")), nil)
		in.rejections.publish(ctx, e, branch.ID, table.ID, id)
		return e
	}

	if !item.Available {
		return nil, unavailable()
	}

	entry, err := in.catalog.BranchMenuItem(ctx, branch.ID, id)
	if err != nil {
		return nil, internalError(fmt.Errorf("get branch menu item: %w", err))
	}
	if entry == nil || !entry.Available {
		return nil, unavailable()
	}

	return item, nil
}

func normalizeSubmit(req SubmitRequest) SubmitRequest {
	req.ScanToken = strings.TrimSpace(req.ScanToken)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)

	lines := make([]SubmitLine, len(req.Lines))
	for i, l := range req.Lines {
		l.SpecialInstructions = strings.TrimSpace(l.SpecialInstructions)
		lines[i] = l
	}
	req.Lines = lines
	return req
}

func validateSubmit(req SubmitRequest) error {
	if req.ScanToken == "" {
		return validationError("scan token is required")
	}
	if len(req.ScanToken) > MaxScanTokenLength {
		return validationError("scan token is too long")
	}
	if len(req.Lines) == 0 {
		return validationError("order must contain at least one item")
	}
	if len(req.Lines) > MaxLines {
		return validationError(fmt.Sprintf("order may contain at most %d lines", MaxLines))
	}

	for i, l := range req.Lines {
		if l.MenuItemID == uuid.Nil {
			return validationError(fmt.Sprintf("line %d: menu item id is required", i+1))
		}
		if l.Quantity < 1 || l.Quantity > MaxQuantity {
			return validationError(fmt.Sprintf("line %d: quantity must be between 1 and %d", i+1, MaxQuantity))
		}
		if utf8.RuneCountInString(l.SpecialInstructions) > MaxInstructionsLength {
			return validationError(fmt.Sprintf("line %d: special instructions exceed %d characters", i+1, MaxInstructionsLength))
		}
	}

	if utf8.RuneCountInString(req.CustomerName) > MaxCustomerNameLength {
		return validationError("customer name is too long")
	}
	if utf8.RuneCountInString(req.CustomerPhone) > MaxCustomerPhoneLength {
		return validationError("customer phone is too long")
	}
	return nil
}
