package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/appetiteclub/tableside/internal/catalog"
	"github.com/appetiteclub/tableside/internal/fanout"
	"github.com/google/uuid"
)

// MockOrderRepo is an in-memory OrderRepo with a working version guard
type MockOrderRepo struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*Order
	numbers map[string]bool

	CreateFunc       func(ctx context.Context, order *Order) error
	GetFunc          func(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatusFunc func(ctx context.Context, id uuid.UUID, expectedVersion int64, status string, updatedAt time.Time, updatedBy string) (bool, error)
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders:  make(map[uuid.UUID]*Order),
		numbers: make(map[string]bool),
	}
}

func (m *MockOrderRepo) Create(ctx context.Context, order *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	return m.insert(order)
}

func (m *MockOrderRepo) insert(order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.numbers[order.OrderNumber] {
		return ErrDuplicateOrderNumber
	}
	m.numbers[order.OrderNumber] = true
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return m.get(id), nil
}

func (m *MockOrderRepo) get(id uuid.UUID) *Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil
	}
	cp := *o
	return &cp
}

func (m *MockOrderRepo) List(ctx context.Context, filter OrderFilter) ([]*Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*Order
	for _, o := range m.orders {
		if filter.BranchID != uuid.Nil && o.BranchID != filter.BranchID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		cp := *o
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []*Order{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int64, status string, updatedAt time.Time, updatedBy string) (bool, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, expectedVersion, status, updatedAt, updatedBy)
	}
	return m.updateStatus(id, expectedVersion, status, updatedAt, updatedBy), nil
}

func (m *MockOrderRepo) updateStatus(id uuid.UUID, expectedVersion int64, status string, updatedAt time.Time, updatedBy string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Version != expectedVersion {
		return false
	}
	o.Status = status
	o.Version++
	o.UpdatedAt = updatedAt
	o.UpdatedBy = updatedBy
	return true
}

func (m *MockOrderRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// MockCatalog serves tables, branches and menu items from maps
type MockCatalog struct {
	Tables      map[string]*catalog.Table
	Branches    map[uuid.UUID]*catalog.Branch
	Items       map[uuid.UUID]*catalog.MenuItem
	BranchItems map[[2]uuid.UUID]*catalog.BranchMenuItem

	ResolveTableFunc func(ctx context.Context, token string) (*catalog.Table, *catalog.Branch, error)
	MenuItemFunc     func(ctx context.Context, id uuid.UUID) (*catalog.MenuItem, error)
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Tables:      make(map[string]*catalog.Table),
		Branches:    make(map[uuid.UUID]*catalog.Branch),
		Items:       make(map[uuid.UUID]*catalog.MenuItem),
		BranchItems: make(map[[2]uuid.UUID]*catalog.BranchMenuItem),
	}
}

func (m *MockCatalog) ResolveTable(ctx context.Context, token string) (*catalog.Table, *catalog.Branch, error) {
	if m.ResolveTableFunc != nil {
		return m.ResolveTableFunc(ctx, token)
	}
	t, ok := m.Tables[token]
	if !ok || !t.Active {
		return nil, nil, catalog.ErrTableNotFound
	}
	b, ok := m.Branches[t.BranchID]
	if !ok || !b.Active {
		return nil, nil, catalog.ErrTableNotFound
	}
	return t, b, nil
}

func (m *MockCatalog) MenuItem(ctx context.Context, id uuid.UUID) (*catalog.MenuItem, error) {
	if m.MenuItemFunc != nil {
		return m.MenuItemFunc(ctx, id)
	}
	return m.Items[id], nil
}

func (m *MockCatalog) BranchMenuItem(ctx context.Context, branchID, menuItemID uuid.UUID) (*catalog.BranchMenuItem, error) {
	return m.BranchItems[[2]uuid.UUID{branchID, menuItemID}], nil
}

// MockSequencer is an atomic per-key counter
type MockSequencer struct {
	mu     sync.Mutex
	values map[string]int64
	Err    error
}

func NewMockSequencer() *MockSequencer {
	return &MockSequencer{values: make(map[string]int64)}
}

func (m *MockSequencer) Next(ctx context.Context, key string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key]++
	return m.values[key], nil
}

// MockIdentity returns scripted order numbers
type MockIdentity struct {
	mu      sync.Mutex
	Numbers []string
	calls   int
}

func (m *MockIdentity) NextOrderNumber(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.Numbers[m.calls%len(m.Numbers)]
	m.calls++
	return n, nil
}

func (m *MockIdentity) NewSessionID() (string, error) {
	return "session_test", nil
}

// MockNotifier records notified events
type MockNotifier struct {
	mu     sync.Mutex
	Events []fanout.Event
}

func (m *MockNotifier) Notify(evt fanout.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, evt)
}

func (m *MockNotifier) Recorded() []fanout.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fanout.Event(nil), m.Events...)
}

// MockPublisher records messages published to the event bus
type MockPublisher struct {
	mu       sync.Mutex
	Topics   []string
	Messages [][]byte
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Topics = append(m.Topics, topic)
	m.Messages = append(m.Messages, msg)
	return nil
}
