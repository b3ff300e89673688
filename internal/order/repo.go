package order

import (
	"context"
	"errors"
	"time"

	"github.com/appetiteclub/tableside/internal/catalog"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type OrderFilter struct {
	BranchID      uuid.UUID
	Status        string
	PaymentStatus string
	Limit         int
	Offset        int
}

// OrderRepo is the order ledger. Get returns (nil, nil) for unknown ids.
type OrderRepo interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*Order, int64, error)
	// UpdateStatus applies the change only if the stored version still equals
	// expectedVersion, bumping it by one. It reports whether the write won.
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int64, status string, updatedAt time.Time, updatedBy string) (bool, error)
}

// ErrDuplicateOrderNumber is returned by OrderRepo.Create when the order
// number is already taken.
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

// Catalog is what intake needs from the catalog store.
type Catalog interface {
	ResolveTable(ctx context.Context, token string) (*catalog.Table, *catalog.Branch, error)
	MenuItem(ctx context.Context, id uuid.UUID) (*catalog.MenuItem, error)
	BranchMenuItem(ctx context.Context, branchID, menuItemID uuid.UUID) (*catalog.BranchMenuItem, error)
}
