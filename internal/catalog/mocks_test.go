package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockBranchRepo is an in-memory BranchRepo for testing
type MockBranchRepo struct {
	mu       sync.RWMutex
	branches map[uuid.UUID]*Branch
	GetFunc  func(ctx context.Context, id uuid.UUID) (*Branch, error)
}

func NewMockBranchRepo(branches ...*Branch) *MockBranchRepo {
	m := &MockBranchRepo{branches: make(map[uuid.UUID]*Branch)}
	for _, b := range branches {
		m.branches[b.ID] = b
	}
	return m
}

func (m *MockBranchRepo) Create(ctx context.Context, branch *Branch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	branch.BeforeCreate()
	m.branches[branch.ID] = branch
	return nil
}

func (m *MockBranchRepo) Get(ctx context.Context, id uuid.UUID) (*Branch, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.branches[id], nil
}

func (m *MockBranchRepo) GetBySlug(ctx context.Context, slug string) (*Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.branches {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, nil
}

func (m *MockBranchRepo) ListActive(ctx context.Context) ([]*Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Branch
	for _, b := range m.branches {
		if b.Active {
			out = append(out, b)
		}
	}
	return out, nil
}

// MockTableRepo is an in-memory TableRepo for testing
type MockTableRepo struct {
	mu     sync.RWMutex
	tables map[uuid.UUID]*Table
}

func NewMockTableRepo(tables ...*Table) *MockTableRepo {
	m := &MockTableRepo{tables: make(map[uuid.UUID]*Table)}
	for _, t := range tables {
		m.tables[t.ID] = t
	}
	return m
}

func (m *MockTableRepo) Create(ctx context.Context, table *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	table.BeforeCreate()
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepo) GetByScanToken(ctx context.Context, token string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		if t.ScanToken == token {
			return t, nil
		}
	}
	return nil, nil
}

func (m *MockTableRepo) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Table
	for _, t := range m.tables {
		if t.BranchID == branchID {
			out = append(out, t)
		}
	}
	return out, nil
}

// MockCategoryRepo is an in-memory CategoryRepo for testing
type MockCategoryRepo struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]*Category
}

func NewMockCategoryRepo(categories ...*Category) *MockCategoryRepo {
	m := &MockCategoryRepo{categories: make(map[uuid.UUID]*Category)}
	for _, c := range categories {
		m.categories[c.ID] = c
	}
	return m
}

func (m *MockCategoryRepo) Create(ctx context.Context, category *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepo) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepo) ListActive(ctx context.Context) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Category
	for _, c := range m.categories {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

// MockMenuItemRepo is an in-memory MenuItemRepo for testing
type MockMenuItemRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*MenuItem
}

func NewMockMenuItemRepo(items ...*MenuItem) *MockMenuItemRepo {
	m := &MockMenuItemRepo{items: make(map[uuid.UUID]*MenuItem)}
	for _, i := range items {
		m.items[i.ID] = i
	}
	return m
}

func (m *MockMenuItemRepo) Create(ctx context.Context, item *MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.BeforeCreate()
	m.items[item.ID] = item
	return nil
}

func (m *MockMenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[id], nil
}

func (m *MockMenuItemRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*MenuItem
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// MockBranchMenuRepo is an in-memory BranchMenuRepo for testing
type MockBranchMenuRepo struct {
	mu      sync.RWMutex
	entries map[[2]uuid.UUID]*BranchMenuItem
}

func NewMockBranchMenuRepo(entries ...*BranchMenuItem) *MockBranchMenuRepo {
	m := &MockBranchMenuRepo{entries: make(map[[2]uuid.UUID]*BranchMenuItem)}
	for _, e := range entries {
		m.entries[[2]uuid.UUID{e.BranchID, e.MenuItemID}] = e
	}
	return m
}

func (m *MockBranchMenuRepo) Upsert(ctx context.Context, entry *BranchMenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[[2]uuid.UUID{entry.BranchID, entry.MenuItemID}] = entry
	return nil
}

func (m *MockBranchMenuRepo) Get(ctx context.Context, branchID, menuItemID uuid.UUID) (*BranchMenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[[2]uuid.UUID{branchID, menuItemID}], nil
}

func (m *MockBranchMenuRepo) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*BranchMenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*BranchMenuItem
	for k, e := range m.entries {
		if k[0] == branchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newMockRepos() Repos {
	return Repos{
		Branches:   NewMockBranchRepo(),
		Tables:     NewMockTableRepo(),
		Categories: NewMockCategoryRepo(),
		MenuItems:  NewMockMenuItemRepo(),
		BranchMenu: NewMockBranchMenuRepo(),
	}
}
