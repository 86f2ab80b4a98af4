package menu

import "slices"

// MenuItem is a dish on the menu.
type MenuItem struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Image       string     `json:"image,omitempty"`
	VideoURL    string     `json:"videoUrl,omitempty"`
	Description string     `json:"description,omitempty"`
	Allergens   []Allergen `json:"allergens"`
	// Active is nil for documents written before the flag existed; nil means active.
	Active      *bool    `json:"active,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// IsActive reports whether the dish is visible on the public menu.
func (m MenuItem) IsActive() bool {
	return m.Active == nil || *m.Active
}

// HasAllergen reports whether the dish declares allergen a.
func (m MenuItem) HasAllergen(a Allergen) bool {
	return slices.Contains(m.Allergens, a)
}

func (m MenuItem) clone() MenuItem {
	out := m
	out.Allergens = slices.Clone(m.Allergens)
	if out.Allergens == nil {
		out.Allergens = []Allergen{}
	}
	out.Suggestions = slices.Clone(m.Suggestions)
	if m.Active != nil {
		active := *m.Active
		out.Active = &active
	}
	return out
}

// ItemForm is the admin form payload for creating or replacing a dish.
// Price is kept as entered and parsed during validation.
type ItemForm struct {
	Name        string
	Category    string
	Price       string
	Image       string
	VideoURL    string
	Description string
	Allergens   []string
	Suggestions []string
}

// Category is a named grouping of dishes.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SharingOption is a bundled "menu for N people" offering.
type SharingOption struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	MenuItemIDs []int64  `json:"menuItemIds,omitempty"`
}

func (o SharingOption) clone() SharingOption {
	out := o
	if o.Price != nil {
		p := *o.Price
		out.Price = &p
	}
	out.MenuItemIDs = slices.Clone(o.MenuItemIDs)
	return out
}

// OptionInput is the payload for a new sharing option.
type OptionInput struct {
	Name        string
	Description string
	Price       *float64
	MenuItemIDs []int64
}

// OptionUpdate is a partial update of a sharing option; nil fields are kept.
type OptionUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	MenuItemIDs *[]int64
}

// PartySize is the number of diners a sharing option is meant for.
type PartySize int

// PartySizes lists the supported party sizes in display order.
var PartySizes = []PartySize{2, 4, 6, 8}

// Valid reports whether p is one of PartySizes.
func (p PartySize) Valid() bool {
	return slices.Contains(PartySizes, p)
}
