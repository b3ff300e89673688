package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repositories return (nil, nil) when a record does not exist.

type BranchRepo interface {
	Create(ctx context.Context, branch *Branch) error
	Get(ctx context.Context, id uuid.UUID) (*Branch, error)
	GetBySlug(ctx context.Context, slug string) (*Branch, error)
	ListActive(ctx context.Context) ([]*Branch, error)
}

type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	GetByScanToken(ctx context.Context, token string) (*Table, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*Table, error)
}

type CategoryRepo interface {
	Create(ctx context.Context, category *Category) error
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	ListActive(ctx context.Context) ([]*Category, error)
}

type MenuItemRepo interface {
	Create(ctx context.Context, item *MenuItem) error
	Get(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*MenuItem, error)
}

type BranchMenuRepo interface {
	Upsert(ctx context.Context, entry *BranchMenuItem) error
	Get(ctx context.Context, branchID, menuItemID uuid.UUID) (*BranchMenuItem, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*BranchMenuItem, error)
}

type Repos struct {
	Branches   BranchRepo
	Tables     TableRepo
	Categories CategoryRepo
	MenuItems  MenuItemRepo
	BranchMenu BranchMenuRepo
}
