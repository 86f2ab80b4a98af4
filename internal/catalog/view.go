package catalog

import (
	"maps"
	"math"
	"slices"

	"github.com/roach88/carta/internal/menu"
)

// Section is one category of the public menu.
type Section struct {
	Category menu.Category   `json:"category"`
	Items    []menu.MenuItem `json:"items"`
}

// PublicMenu returns the categories in display order, each with its active
// dishes. Categories with no active dish are kept with an empty list.
func (c *Catalog) PublicMenu() []Section {
	items := c.Items.Items()
	cats := c.Categories.Categories()

	sections := make([]Section, 0, len(cats))
	for _, cat := range cats {
		sec := Section{Category: cat, Items: []menu.MenuItem{}}
		for _, item := range items {
			if item.Category == cat.Name && item.IsActive() {
				sec.Items = append(sec.Items, item)
			}
		}
		sections = append(sections, sec)
	}
	return sections
}

// ItemsInCategory returns the active dishes of the named category.
func (c *Catalog) ItemsInCategory(name string) []menu.MenuItem {
	var out []menu.MenuItem
	for _, item := range c.Items.Items() {
		if item.Category == name && item.IsActive() {
			out = append(out, item)
		}
	}
	return out
}

// ContainsAllergen reports whether item declares any of the allergens.
func ContainsAllergen(item menu.MenuItem, allergens []menu.Allergen) bool {
	return slices.ContainsFunc(allergens, item.HasAllergen)
}

// VisibleItems returns the active dishes declaring none of exclude.
func (c *Catalog) VisibleItems(exclude []menu.Allergen) []menu.MenuItem {
	var out []menu.MenuItem
	for _, item := range c.Items.Items() {
		if item.IsActive() && !ContainsAllergen(item, exclude) {
			out = append(out, item)
		}
	}
	return out
}

// ResolvedOption is a sharing option with its dishes looked up.
type ResolvedOption struct {
	Option menu.SharingOption `json:"option"`
	Items  []menu.MenuItem    `json:"items"`
	// Missing lists referenced ids that no longer match a dish.
	Missing []int64 `json:"missing,omitempty"`
}

// ResolveOption looks up a sharing option and the dishes it bundles, in
// option order. References to deleted dishes are reported in Missing and
// left in the stored option.
func (c *Catalog) ResolveOption(size menu.PartySize, id string) (ResolvedOption, bool) {
	opt, ok := c.Groups.Find(size, id)
	if !ok {
		return ResolvedOption{}, false
	}

	res := ResolvedOption{Option: opt}
	seen := make(map[int64]bool, len(opt.MenuItemIDs))
	for _, itemID := range opt.MenuItemIDs {
		if seen[itemID] {
			continue
		}
		seen[itemID] = true
		if item, ok := c.Items.FindByID(itemID); ok {
			res.Items = append(res.Items, item)
		} else {
			res.Missing = append(res.Missing, itemID)
		}
	}
	return res, true
}

// Line is one saved dish with its quantity.
type Line struct {
	Item     menu.MenuItem `json:"item"`
	Quantity int           `json:"quantity"`
	Subtotal float64       `json:"subtotal"`
}

// SelectionLines returns the saved dishes in id order. Entries whose dish
// was deleted are skipped.
func (c *Catalog) SelectionLines() []Line {
	sel := c.Selection.Snapshot()

	var lines []Line
	for _, id := range slices.Sorted(maps.Keys(sel)) {
		item, ok := c.Items.FindByID(id)
		if !ok {
			continue
		}
		qty := sel[id]
		lines = append(lines, Line{
			Item:     item,
			Quantity: qty,
			Subtotal: roundCents(item.Price * float64(qty)),
		})
	}
	return lines
}

// SelectionTotal sums the selection lines, rounded to cents.
func (c *Catalog) SelectionTotal() float64 {
	var total float64
	for _, l := range c.SelectionLines() {
		total += l.Item.Price * float64(l.Quantity)
	}
	return roundCents(total)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
