package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/tableside/internal/catalog"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewCatalogRepos wires every catalog repository to the shared connection.
func NewCatalogRepos(base *BaseRepo) catalog.Repos {
	return catalog.Repos{
		Branches:   &BranchRepo{base: base},
		Tables:     &TableRepo{base: base},
		Categories: &CategoryRepo{base: base},
		MenuItems:  &MenuItemRepo{base: base},
		BranchMenu: &BranchMenuRepo{base: base},
	}
}

func findOne[T any](ctx context.Context, base *BaseRepo, name string, filter bson.M) (*T, error) {
	coll, err := base.collection(name)
	if err != nil {
		return nil, err
	}

	var v T
	if err := coll.FindOne(ctx, filter).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get from %s: %w", name, err)
	}
	return &v, nil
}

func findMany[T any](ctx context.Context, base *BaseRepo, name string, filter bson.M, opts ...*options.FindOptions) ([]*T, error) {
	coll, err := base.collection(name)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", name, err)
	}
	defer cursor.Close(ctx)

	result := []*T{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", name, err)
	}
	return result, nil
}

func insert(ctx context.Context, base *BaseRepo, name string, doc interface{}) error {
	coll, err := base.collection(name)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("cannot insert into %s: %w", name, err)
	}
	return nil
}

type BranchRepo struct {
	base *BaseRepo
}

func (r *BranchRepo) Create(ctx context.Context, b *catalog.Branch) error {
	if b == nil {
		return fmt.Errorf("branch is nil")
	}
	return insert(ctx, r.base, branchesCollection, b)
}

func (r *BranchRepo) Get(ctx context.Context, id uuid.UUID) (*catalog.Branch, error) {
	return findOne[catalog.Branch](ctx, r.base, branchesCollection, bson.M{"_id": id})
}

func (r *BranchRepo) GetBySlug(ctx context.Context, slug string) (*catalog.Branch, error) {
	return findOne[catalog.Branch](ctx, r.base, branchesCollection, bson.M{"slug": slug})
}

func (r *BranchRepo) ListActive(ctx context.Context) ([]*catalog.Branch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findMany[catalog.Branch](ctx, r.base, branchesCollection, bson.M{"active": true}, opts)
}

type TableRepo struct {
	base *BaseRepo
}

func (r *TableRepo) Create(ctx context.Context, t *catalog.Table) error {
	if t == nil {
		return fmt.Errorf("table is nil")
	}
	return insert(ctx, r.base, tablesCollection, t)
}

func (r *TableRepo) GetByScanToken(ctx context.Context, token string) (*catalog.Table, error) {
	return findOne[catalog.Table](ctx, r.base, tablesCollection, bson.M{"scan_token": token})
}

func (r *TableRepo) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*catalog.Table, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	return findMany[catalog.Table](ctx, r.base, tablesCollection, bson.M{"branch_id": branchID}, opts)
}

type CategoryRepo struct {
	base *BaseRepo
}

func (r *CategoryRepo) Create(ctx context.Context, c *catalog.Category) error {
	if c == nil {
		return fmt.Errorf("category is nil")
	}
	return insert(ctx, r.base, categoriesCollection, c)
}

func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	return findOne[catalog.Category](ctx, r.base, categoriesCollection, bson.M{"slug": slug})
}

func (r *CategoryRepo) ListActive(ctx context.Context) ([]*catalog.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}})
	return findMany[catalog.Category](ctx, r.base, categoriesCollection, bson.M{"active": true}, opts)
}

type MenuItemRepo struct {
	base *BaseRepo
}

func (r *MenuItemRepo) Create(ctx context.Context, item *catalog.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item is nil")
	}
	return insert(ctx, r.base, menuItemsCollection, item)
}

func (r *MenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*catalog.MenuItem, error) {
	return findOne[catalog.MenuItem](ctx, r.base, menuItemsCollection, bson.M{"_id": id})
}

func (r *MenuItemRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.MenuItem, error) {
	if len(ids) == 0 {
		return []*catalog.MenuItem{}, nil
	}
	return findMany[catalog.MenuItem](ctx, r.base, menuItemsCollection, bson.M{"_id": bson.M{"$in": ids}})
}

// BranchMenuRepo stores which menu items a branch offers.
type BranchMenuRepo struct {
	base *BaseRepo
}

func (r *BranchMenuRepo) Upsert(ctx context.Context, entry *catalog.BranchMenuItem) error {
	if entry == nil {
		return fmt.Errorf("branch menu item is nil")
	}

	coll, err := r.base.collection(branchMenuCollection)
	if err != nil {
		return err
	}

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	filter := bson.M{"branch_id": entry.BranchID, "menu_item_id": entry.MenuItemID}
	update := bson.M{"$set": bson.M{
		"available":  entry.Available,
		"updated_at": entry.UpdatedAt,
	}}
	if _, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("cannot upsert branch menu item: %w", err)
	}
	return nil
}

func (r *BranchMenuRepo) Get(ctx context.Context, branchID, menuItemID uuid.UUID) (*catalog.BranchMenuItem, error) {
	return findOne[catalog.BranchMenuItem](ctx, r.base, branchMenuCollection,
		bson.M{"branch_id": branchID, "menu_item_id": menuItemID})
}

func (r *BranchMenuRepo) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*catalog.BranchMenuItem, error) {
	return findMany[catalog.BranchMenuItem](ctx, r.base, branchMenuCollection, bson.M{"branch_id": branchID})
}
