package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/seed"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const catalogSeedApplication = "catalog"

//go:embed seed.json
var SeedFS embed.FS

type seedDocument struct {
	Branches   []branchSeed   `json:"branches"`
	Categories []categorySeed `json:"categories"`
	MenuItems  []menuItemSeed `json:"menu_items"`
}

type branchSeed struct {
	Slug    string      `json:"slug"`
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Phone   string      `json:"phone"`
	Email   string      `json:"email"`
	TaxRate float64     `json:"tax_rate"`
	Tables  []tableSeed `json:"tables"`
}

type tableSeed struct {
	Number    string `json:"number"`
	Zone      string `json:"zone"`
	Capacity  int    `json:"capacity"`
	ScanToken string `json:"scan_token"`
}

type categorySeed struct {
	Slug         string `json:"slug"`
	Name         Text   `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

type menuItemSeed struct {
	Key                string   `json:"key"`
	Category           string   `json:"category"`
	Name               Text     `json:"name"`
	Description        Text     `json:"description"`
	Price              int64    `json:"price"`
	SpicyLevel         int      `json:"spicy_level"`
	Allergens          []string `json:"allergens"`
	Vegetarian         bool     `json:"vegetarian"`
	PreparationMinutes int      `json:"preparation_minutes"`
	Branches           []string `json:"branches"`
}

func loadSeedDocument(seedFS embed.FS) (*seedDocument, error) {
	seedBytes, err := seedFS.ReadFile("seed.json")
	if err != nil {
		return nil, fmt.Errorf("read seed.json: %w", err)
	}
	if len(seedBytes) == 0 {
		return nil, errors.New("catalog seed file is empty")
	}

	var doc seedDocument
	if err := json.Unmarshal(seedBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog seed file: %w", err)
	}
	if len(doc.Branches) == 0 {
		return nil, errors.New("catalog seed file does not contain branches")
	}
	return &doc, nil
}

// MenuItemSeedID derives a stable id for a seeded menu item so repeated runs
// and other tools can refer to the same record.
func MenuItemSeedID(key string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("tableside:menu-item:"+key))
}

// ApplySeeds ensures the demo branches, tables, categories and menu exist.
// The tracker records applied seeds so each runs once per database.
func ApplySeeds(ctx context.Context, repos Repos, tracker seed.Tracker, seedFS embed.FS, logger aqm.Logger) error {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if tracker == nil {
		return errors.New("seed tracker is required")
	}

	doc, err := loadSeedDocument(seedFS)
	if err != nil {
		return err
	}

	defs := buildSeedDefinitions(doc, repos, logger)
	logger.Info("Applying catalog seeds", "count", len(defs))
	if err := seed.Apply(ctx, tracker, defs, catalogSeedApplication); err != nil {
		return err
	}
	logger.Info("Catalog seeds applied successfully")
	return nil
}

func buildSeedDefinitions(doc *seedDocument, repos Repos, logger aqm.Logger) []seed.Seed {
	var defs []seed.Seed

	for _, b := range doc.Branches {
		branchData := b
		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2026-10-01_branch_%s", seedIdentifier(branchData.Slug)),
			Description: fmt.Sprintf("Ensure branch %s and its tables exist", branchData.Slug),
			Run: func(ctx context.Context) error {
				return branchData.ensure(ctx, repos, logger)
			},
		})
	}

	defs = append(defs, seed.Seed{
		ID:          "2026-10-01_categories",
		Description: "Ensure menu categories exist",
		Run: func(ctx context.Context) error {
			return ensureCategories(ctx, repos.Categories, doc.Categories, logger)
		},
	})

	for _, m := range doc.MenuItems {
		itemData := m
		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2026-10-01_menu_item_%s", seedIdentifier(itemData.Key)),
			Description: fmt.Sprintf("Ensure menu item %s and its branch availability", itemData.Key),
			Run: func(ctx context.Context) error {
				return itemData.ensure(ctx, repos, logger)
			},
		})
	}

	return defs
}

func seedIdentifier(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	replacer := strings.NewReplacer("-", "_", " ", "_", "/", "_")
	value = replacer.Replace(value)

	var builder strings.Builder
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			builder.WriteRune(r)
		}
	}
	if builder.Len() == 0 {
		return "seed"
	}
	return builder.String()
}

func (s branchSeed) ensure(ctx context.Context, repos Repos, logger aqm.Logger) error {
	branch, err := repos.Branches.GetBySlug(ctx, s.Slug)
	if err != nil {
		return fmt.Errorf("lookup branch %s: %w", s.Slug, err)
	}

	if branch == nil {
		branch = NewBranch()
		branch.Slug = s.Slug
		branch.Name = s.Name
		branch.Address = s.Address
		branch.Phone = s.Phone
		branch.Email = s.Email
		branch.TaxRate = s.TaxRate
		if err := repos.Branches.Create(ctx, branch); err != nil {
			return fmt.Errorf("create seed branch %s: %w", s.Slug, err)
		}
		logger.Info("Seed branch created", "slug", s.Slug, "id", branch.ID.String())
	}

	for _, ts := range s.Tables {
		existing, err := repos.Tables.GetByScanToken(ctx, ts.ScanToken)
		if err != nil {
			return fmt.Errorf("lookup table %s: %w", ts.Number, err)
		}
		if existing != nil {
			continue
		}

		table := NewTable(branch.ID, ts.Number)
		table.Zone = ts.Zone
		table.Capacity = ts.Capacity
		table.ScanToken = ts.ScanToken
		if err := repos.Tables.Create(ctx, table); err != nil {
			return fmt.Errorf("create seed table %s/%s: %w", s.Slug, ts.Number, err)
		}
		logger.Debug("Seed table created", "branch", s.Slug, "number", ts.Number)
	}
	return nil
}

func ensureCategories(ctx context.Context, repo CategoryRepo, seeds []categorySeed, logger aqm.Logger) error {
	for _, cs := range seeds {
		existing, err := repo.GetBySlug(ctx, cs.Slug)
		if err != nil {
			return fmt.Errorf("lookup category %s: %w", cs.Slug, err)
		}
		if existing != nil {
			continue
		}

		now := time.Now()
		category := &Category{
			ID:           aqm.GenerateNewID(),
			Slug:         cs.Slug,
			Name:         cs.Name,
			DisplayOrder: cs.DisplayOrder,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repo.Create(ctx, category); err != nil {
			return fmt.Errorf("create seed category %s: %w", cs.Slug, err)
		}
		logger.Info("Seed category created", "slug", cs.Slug)
	}
	return nil
}

func (s menuItemSeed) ensure(ctx context.Context, repos Repos, logger aqm.Logger) error {
	category, err := repos.Categories.GetBySlug(ctx, s.Category)
	if err != nil {
		return fmt.Errorf("lookup category %s: %w", s.Category, err)
	}
	if category == nil {
		return fmt.Errorf("menu item %s references unknown category %s", s.Key, s.Category)
	}

	id := MenuItemSeedID(s.Key)
	item, err := repos.MenuItems.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("lookup menu item %s: %w", s.Key, err)
	}
	if item == nil {
		item = &MenuItem{
			ID:                 id,
			CategoryID:         category.ID,
			Name:               s.Name,
			Description:        s.Description,
			Price:              s.Price,
			SpicyLevel:         s.SpicyLevel,
			Allergens:          s.Allergens,
			Available:          true,
			Vegetarian:         s.Vegetarian,
			PreparationMinutes: s.PreparationMinutes,
		}
		if err := repos.MenuItems.Create(ctx, item); err != nil {
			return fmt.Errorf("create seed menu item %s: %w", s.Key, err)
		}
		logger.Info("Seed menu item created", "key", s.Key, "id", id.String())
	}

	for _, slug := range s.Branches {
		branch, err := repos.Branches.GetBySlug(ctx, slug)
		if err != nil {
			return fmt.Errorf("lookup branch %s: %w", slug, err)
		}
		if branch == nil {
			return fmt.Errorf("menu item %s references unknown branch %s", s.Key, slug)
		}
		entry := &BranchMenuItem{
			BranchID:   branch.ID,
			MenuItemID: item.ID,
			Available:  true,
		}
		if err := repos.BranchMenu.Upsert(ctx, entry); err != nil {
			return fmt.Errorf("enable %s at %s: %w", s.Key, slug, err)
		}
	}
	return nil
}

// MongoTracker builds the seed tracker from a repository that exposes its
// MongoDB database.
func MongoTracker(repo any) (seed.Tracker, error) {
	provider, ok := repo.(mongoDatabaseProvider)
	if !ok {
		return nil, errors.New("repository does not expose MongoDB access for seeding")
	}
	db := provider.GetDatabase()
	if db == nil {
		return nil, errors.New("repository database is not initialized")
	}
	return seed.NewMongoTracker(db), nil
}

type mongoDatabaseProvider interface {
	GetDatabase() *mongo.Database
}

// SeedingFunc returns a lifecycle OnStart function that applies the demo
// catalog in the background.
func SeedingFunc(seedCtx context.Context, repos Repos, trackerSource any, logger aqm.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		tracker, err := MongoTracker(trackerSource)
		if err != nil {
			return err
		}
		logger.Info("Starting catalog seeding in background")
		go func() {
			if err := ApplySeeds(seedCtx, repos, tracker, SeedFS, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Catalog seeds failed: %v", err)
			} else if err == nil {
				logger.Info("Catalog seeding completed")
			}
		}()
		return nil
	}
}

// StopFunc returns a lifecycle OnStop function that cancels background seeding.
func StopFunc(cancelFunc context.CancelFunc) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if cancelFunc != nil {
			cancelFunc()
		}
		return nil
	}
}
