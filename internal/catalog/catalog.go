package catalog

import (
	"strings"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const defaultTaxRate = 7.0

// Text holds a localized string keyed by language code ("th", "en").
type Text map[string]string

// In returns the text for lang, falling back to English and then to any
// available translation.
func (t Text) In(lang string) string {
	if v, ok := t[lang]; ok && v != "" {
		return v
	}
	if v, ok := t["en"]; ok && v != "" {
		return v
	}
	for _, v := range t {
		if v != "" {
			return v
		}
	}
	return ""
}

func (t Text) Clone() Text {
	if t == nil {
		return nil
	}
	out := make(Text, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

type Branch struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Slug      string    `json:"slug" bson:"slug"`
	Name      string    `json:"name" bson:"name"`
	Address   string    `json:"address" bson:"address"`
	Phone     string    `json:"phone" bson:"phone"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty"`
	Timezone  string    `json:"timezone" bson:"timezone"`
	TaxRate   float64   `json:"tax_rate" bson:"tax_rate"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (b *Branch) GetID() uuid.UUID {
	return b.ID
}

func (b *Branch) ResourceType() string {
	return "branch"
}

func NewBranch() *Branch {
	return &Branch{
		ID:       aqm.GenerateNewID(),
		Timezone: "Asia/Bangkok",
		TaxRate:  defaultTaxRate,
		Active:   true,
	}
}

func (b *Branch) BeforeCreate() {
	if b.ID == uuid.Nil {
		b.ID = aqm.GenerateNewID()
	}
	b.Slug = strings.ToLower(strings.TrimSpace(b.Slug))
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
}

// Table is a physical table. ScanToken is the value encoded in its QR code.
type Table struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	BranchID  uuid.UUID `json:"branch_id" bson:"branch_id"`
	Number    string    `json:"number" bson:"number"`
	Zone      string    `json:"zone,omitempty" bson:"zone,omitempty"`
	Capacity  int       `json:"capacity" bson:"capacity"`
	ScanToken string    `json:"-" bson:"scan_token"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func NewTable(branchID uuid.UUID, number string) *Table {
	return &Table{
		ID:       aqm.GenerateNewID(),
		BranchID: branchID,
		Number:   number,
		Capacity: 4,
		Active:   true,
	}
}

func (t *Table) BeforeCreate() {
	if t.ID == uuid.Nil {
		t.ID = aqm.GenerateNewID()
	}
	if t.Capacity < 1 {
		t.Capacity = 1
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
}

type Category struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	Slug         string    `json:"slug" bson:"slug"`
	Name         Text      `json:"name" bson:"name"`
	Description  Text      `json:"description,omitempty" bson:"description,omitempty"`
	DisplayOrder int       `json:"display_order" bson:"display_order"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

func (c *Category) GetID() uuid.UUID {
	return c.ID
}

func (c *Category) ResourceType() string {
	return "category"
}

// MenuItem prices are integer minor currency units.
type MenuItem struct {
	ID                 uuid.UUID `json:"id" bson:"_id"`
	CategoryID         uuid.UUID `json:"category_id" bson:"category_id"`
	Name               Text      `json:"name" bson:"name"`
	Description        Text      `json:"description,omitempty" bson:"description,omitempty"`
	Price              int64     `json:"price" bson:"price"`
	ImageURL           string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	SpicyLevel         int       `json:"spicy_level" bson:"spicy_level"`
	Allergens          []string  `json:"allergens" bson:"allergens"`
	Available          bool      `json:"available" bson:"available"`
	Vegetarian         bool      `json:"vegetarian" bson:"vegetarian"`
	PreparationMinutes int       `json:"preparation_minutes" bson:"preparation_minutes"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at"`
}

func (m *MenuItem) GetID() uuid.UUID {
	return m.ID
}

func (m *MenuItem) ResourceType() string {
	return "menu/item"
}

func (m *MenuItem) BeforeCreate() {
	if m.ID == uuid.Nil {
		m.ID = aqm.GenerateNewID()
	}
	if m.Name == nil {
		m.Name = Text{}
	}
	if m.Allergens == nil {
		m.Allergens = []string{}
	}
	if m.PreparationMinutes < 1 {
		m.PreparationMinutes = 15
	}
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
}

// BranchMenuItem is the join deciding whether an item is sold at a branch.
type BranchMenuItem struct {
	BranchID   uuid.UUID `json:"branch_id" bson:"branch_id"`
	MenuItemID uuid.UUID `json:"menu_item_id" bson:"menu_item_id"`
	Available  bool      `json:"available" bson:"available"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
