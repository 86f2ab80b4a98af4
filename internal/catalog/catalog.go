// Package catalog composes the carta stores over one storage namespace and
// adds what the stores leave to their callers: referential guards between
// dishes and categories, the public menu view, selection totals and
// whole-namespace export and reset.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/carta/internal/kv"
	"github.com/roach88/carta/internal/menu"
)

var (
	// ErrUnknownCategory reports a dish form naming a category that does not exist.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrCategoryInUse reports an attempt to delete a category dishes still reference.
	ErrCategoryInUse = errors.New("category is in use")
)

// Catalog is the full menu state of one namespace.
type Catalog struct {
	storage kv.Storage
	opts    []menu.Option
	logger  *slog.Logger

	Items      *menu.ItemStore
	Categories *menu.CategoryStore
	Groups     *menu.GroupStore
	Selection  *menu.SelectionStore
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger for catalog events and for every store.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
			c.opts = append(c.opts, menu.WithLogger(logger))
		}
	}
}

// WithStoreOptions passes opts to each of the four stores.
func WithStoreOptions(opts ...menu.Option) Option {
	return func(c *Catalog) {
		c.opts = append(c.opts, opts...)
	}
}

// Open loads (or seeds) every store from storage.
func Open(storage kv.Storage, opts ...Option) *Catalog {
	c := &Catalog{
		storage: storage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.load()
	return c
}

func (c *Catalog) load() {
	c.Categories = menu.NewCategoryStore(c.storage, c.opts...)
	c.Items = menu.NewItemStore(c.storage, c.opts...)
	c.Groups = menu.NewGroupStore(c.storage, c.opts...)
	c.Selection = menu.NewSelectionStore(c.storage, c.opts...)
}

// AddItem adds a dish whose category must already exist.
func (c *Catalog) AddItem(form menu.ItemForm) (menu.MenuItem, error) {
	if err := c.checkCategory(form.Category); err != nil {
		return menu.MenuItem{}, fmt.Errorf("add menu item: %w", err)
	}
	return c.Items.Add(form)
}

// UpdateItem replaces a dish; the new category must already exist.
func (c *Catalog) UpdateItem(id int64, form menu.ItemForm) error {
	if err := c.checkCategory(form.Category); err != nil {
		return fmt.Errorf("update menu item %d: %w", id, err)
	}
	return c.Items.Update(id, form)
}

// checkCategory accepts blank names so the store reports them as
// validation problems alongside the rest of the form.
func (c *Catalog) checkCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if _, ok := c.Categories.FindByName(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return nil
}

// RenameCategory renames a category and moves its dishes to the new name.
// It returns how many dishes were moved.
func (c *Catalog) RenameCategory(id int64, name string) (int, error) {
	old, ok := c.Categories.FindByID(id)
	if !ok {
		return 0, fmt.Errorf("rename category %d: %w", id, menu.ErrNotFound)
	}
	if err := c.Categories.Update(id, name); err != nil {
		return 0, err
	}
	renamed, _ := c.Categories.FindByID(id)
	moved := c.Items.RenameCategoryOnItems(old.Name, renamed.Name)

	c.logger.Info("category renamed", "id", id, "from", old.Name, "to", renamed.Name, "dishes", moved)
	return moved, nil
}

// DeleteCategory removes a category no dish references.
func (c *Catalog) DeleteCategory(id int64) error {
	cat, ok := c.Categories.FindByID(id)
	if !ok {
		return fmt.Errorf("delete category %d: %w", id, menu.ErrNotFound)
	}
	if n := c.Items.CountInCategory(cat.Name); n > 0 {
		return fmt.Errorf("delete category %q: %w (%d dishes)", cat.Name, ErrCategoryInUse, n)
	}
	return c.Categories.Remove(id)
}

// Snapshot is the complete persisted state of a namespace, keyed like storage.
type Snapshot struct {
	Categories   []menu.Category                         `json:"categories"`
	MenuItems    []menu.MenuItem                         `json:"menuItems"`
	GroupOptions map[menu.PartySize][]menu.SharingOption `json:"groupOptions"`
	Selection    map[int64]int                           `json:"selection"`
}

// Export returns a snapshot of every store.
func (c *Catalog) Export() Snapshot {
	return Snapshot{
		Categories:   c.Categories.Categories(),
		MenuItems:    c.Items.Items(),
		GroupOptions: c.Groups.All(),
		Selection:    c.Selection.Snapshot(),
	}
}

// Reset clears the namespace and reloads every store, which reinstalls the
// seed data. Subscriptions on the previous stores are dropped.
func (c *Catalog) Reset() {
	if !c.storage.Clear() {
		c.logger.Warn("namespace clear failed; reloading anyway")
	}
	c.load()
	c.logger.Info("namespace reset")
}
