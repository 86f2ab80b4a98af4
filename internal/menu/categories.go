package menu

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/carta/internal/kv"
)

// CategoryStore owns the category list, persisted under KeyCategories.
//
// Names are unique under Unicode case folding ("Café" and "CAFÉ" clash).
// The store does not look at dishes: renaming or deleting a category that
// dishes still reference is the caller's decision.
type CategoryStore struct {
	mu         sync.RWMutex
	storage    kv.Storage
	logger     *slog.Logger
	seq        sequence
	categories []Category
	subs       notifier[[]Category]
}

// NewCategoryStore loads the persisted categories, seeding from the
// default name list when none are persisted.
func NewCategoryStore(storage kv.Storage, opts ...Option) *CategoryStore {
	cfg := newConfig(opts)
	s := &CategoryStore{
		storage: storage,
		logger:  cfg.logger,
		seq:     sequence{src: cfg.ids},
	}

	stored := kv.Get[[]Category](storage, KeyCategories, nil)
	for _, c := range stored {
		s.seq.observe(c.ID)
	}
	if len(stored) > 0 {
		s.categories = stored
		return s
	}

	if cfg.seeds != nil {
		for _, name := range cfg.seeds.CategoryNames() {
			name = strings.TrimSpace(name)
			if name == "" || s.indexByName(name, -1) >= 0 {
				continue
			}
			s.categories = append(s.categories, Category{ID: s.seq.next(), Name: name})
		}
	}
	if len(s.categories) > 0 {
		s.persist()
	}
	return s
}

// Categories returns a snapshot of the categories in display order.
func (s *CategoryStore) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.categories == nil {
		return []Category{}
	}
	return slices.Clone(s.categories)
}

// Subscribe registers fn to receive the category list after every mutation.
func (s *CategoryStore) Subscribe(fn func([]Category)) (cancel func()) {
	return s.subs.subscribe(fn)
}

// FindByID returns the category with id.
func (s *CategoryStore) FindByID(id int64) (Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.categories[i], true
	}
	return Category{}, false
}

// FindByName returns the category whose name equals name exactly.
func (s *CategoryStore) FindByName(name string) (Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Add creates a category named name (trimmed).
func (s *CategoryStore) Add(name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, invalid("category name is required")
	}

	s.mu.Lock()
	if s.indexByName(name, -1) >= 0 {
		s.mu.Unlock()
		return Category{}, fmt.Errorf("add category %q: %w", name, ErrDuplicateCategory)
	}
	c := Category{ID: s.seq.next(), Name: name}
	s.categories = append(s.categories, c)
	s.persist()
	snap := slices.Clone(s.categories)
	s.mu.Unlock()

	s.logger.Debug("category added", "id", c.ID, "name", c.Name)
	s.subs.emit(snap)
	return c, nil
}

// Update renames the category with id. Renaming a category to a different
// casing of its own name is allowed.
func (s *CategoryStore) Update(id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("category name is required")
	}

	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("update category %d: %w", id, ErrNotFound)
	}
	if s.categories[i].Name != name && s.indexByName(name, i) >= 0 {
		s.mu.Unlock()
		return fmt.Errorf("update category %d to %q: %w", id, name, ErrDuplicateCategory)
	}
	s.categories[i].Name = name
	s.persist()
	snap := slices.Clone(s.categories)
	s.mu.Unlock()

	s.logger.Debug("category renamed", "id", id, "name", name)
	s.subs.emit(snap)
	return nil
}

// Remove deletes the category with id.
func (s *CategoryStore) Remove(id int64) error {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("delete category %d: %w", id, ErrNotFound)
	}
	s.categories = slices.Delete(s.categories, i, i+1)
	s.persist()
	snap := slices.Clone(s.categories)
	s.mu.Unlock()

	s.logger.Debug("category deleted", "id", id)
	s.subs.emit(snap)
	return nil
}

func (s *CategoryStore) index(id int64) int {
	return slices.IndexFunc(s.categories, func(c Category) bool { return c.ID == id })
}

// indexByName finds a category whose folded name equals name's, skipping
// the one at position skip (-1 skips nothing).
func (s *CategoryStore) indexByName(name string, skip int) int {
	key := foldName(name)
	for i, c := range s.categories {
		if i != skip && foldName(c.Name) == key {
			return i
		}
	}
	return -1
}

func (s *CategoryStore) persist() {
	categories := s.categories
	if categories == nil {
		categories = []Category{}
	}
	s.storage.Set(KeyCategories, categories)
}

// foldName is the comparison key for category names.
func foldName(name string) string {
	return cases.Fold().String(norm.NFC.String(name))
}
