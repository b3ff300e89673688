package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTableNotFound  = errors.New("table not found")
	ErrBranchNotFound = errors.New("branch not found")
)

// MenuSection is a category together with the items orderable at a branch.
type MenuSection struct {
	Category *Category  `json:"category"`
	Items    []*MenuItem `json:"items"`
}

// Store is the read side of the catalog used by order intake and the public
// catalog endpoints.
type Store struct {
	repos Repos
}

func NewStore(repos Repos) *Store {
	return &Store{repos: repos}
}

// ResolveTable maps a scan token to its table and branch. Unknown tokens,
// inactive tables and missing or inactive branches all yield ErrTableNotFound.
func (s *Store) ResolveTable(ctx context.Context, token string) (*Table, *Branch, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil, ErrTableNotFound
	}

	table, err := s.repos.Tables.GetByScanToken(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("get table by scan token: %w", err)
	}
	if table == nil || !table.Active {
		return nil, nil, ErrTableNotFound
	}

	branch, err := s.repos.Branches.Get(ctx, table.BranchID)
	if err != nil {
		return nil, nil, fmt.Errorf("get branch %s: %w", table.BranchID, err)
	}
	if branch == nil || !branch.Active {
		return nil, nil, ErrTableNotFound
	}

	return table, branch, nil
}

func (s *Store) MenuItem(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	return s.repos.MenuItems.Get(ctx, id)
}

func (s *Store) BranchMenuItem(ctx context.Context, branchID, menuItemID uuid.UUID) (*BranchMenuItem, error) {
	return s.repos.BranchMenu.Get(ctx, branchID, menuItemID)
}

func (s *Store) ActiveBranches(ctx context.Context) ([]*Branch, error) {
	return s.repos.Branches.ListActive(ctx)
}

func (s *Store) ActiveCategories(ctx context.Context) ([]*Category, error) {
	categories, err := s.repos.Categories.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	sortCategories(categories)
	return categories, nil
}

// BranchBySlug returns ErrBranchNotFound for unknown or inactive branches.
func (s *Store) BranchBySlug(ctx context.Context, slug string) (*Branch, error) {
	branch, err := s.repos.Branches.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, fmt.Errorf("get branch by slug: %w", err)
	}
	if branch == nil || !branch.Active {
		return nil, ErrBranchNotFound
	}
	return branch, nil
}

// BranchMenu lists the active categories of a branch with only the items
// that can currently be ordered there. Empty categories are omitted.
func (s *Store) BranchMenu(ctx context.Context, branch *Branch) ([]MenuSection, error) {
	entries, err := s.repos.BranchMenu.ListByBranch(ctx, branch.ID)
	if err != nil {
		return nil, fmt.Errorf("list branch menu: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if e.Available {
			ids = append(ids, e.MenuItemID)
		}
	}
	if len(ids) == 0 {
		return []MenuSection{}, nil
	}

	items, err := s.repos.MenuItems.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}

	categories, err := s.ActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	byCategory := make(map[uuid.UUID][]*MenuItem)
	for _, item := range items {
		if item == nil || !item.Available {
			continue
		}
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
	}

	sections := make([]MenuSection, 0, len(categories))
	for _, c := range categories {
		catItems := byCategory[c.ID]
		if len(catItems) == 0 {
			continue
		}
		sort.SliceStable(catItems, func(i, j int) bool {
			return catItems[i].Name.In("en") < catItems[j].Name.In("en")
		})
		sections = append(sections, MenuSection{Category: c, Items: catItems})
	}
	return sections, nil
}

func sortCategories(categories []*Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].DisplayOrder != categories[j].DisplayOrder {
			return categories[i].DisplayOrder < categories[j].DisplayOrder
		}
		return categories[i].Slug < categories[j].Slug
	})
}
