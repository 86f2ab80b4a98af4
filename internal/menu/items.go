package menu

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/carta/internal/kv"
)

// ItemStore owns the list of dishes, persisted under KeyMenuItems.
type ItemStore struct {
	mu      sync.RWMutex
	storage kv.Storage
	logger  *slog.Logger
	seq     sequence
	items   []MenuItem
	subs    notifier[[]MenuItem]
}

// NewItemStore loads the persisted dishes. When nothing (or an empty list)
// is persisted, the seed dishes are installed and written back immediately.
func NewItemStore(storage kv.Storage, opts ...Option) *ItemStore {
	cfg := newConfig(opts)
	s := &ItemStore{
		storage: storage,
		logger:  cfg.logger,
		seq:     sequence{src: cfg.ids},
	}

	stored := kv.Get[[]MenuItem](storage, KeyMenuItems, nil)
	if len(stored) > 0 {
		s.items = make([]MenuItem, 0, len(stored))
		for _, item := range stored {
			s.items = append(s.items, item.clone())
		}
	} else if cfg.seeds != nil {
		for _, item := range cfg.seeds.MenuItems() {
			s.items = append(s.items, item.clone())
		}
		if len(s.items) > 0 {
			s.persist()
		}
	}

	for _, item := range s.items {
		s.seq.observe(item.ID)
	}
	return s
}

// Items returns a snapshot of every dish, active or not, in insertion order.
func (s *ItemStore) Items() []MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Subscribe registers fn to receive the dish list after every mutation.
// The slice passed to fn is shared between subscribers and must not be modified.
func (s *ItemStore) Subscribe(fn func([]MenuItem)) (cancel func()) {
	return s.subs.subscribe(fn)
}

// FindByID returns the dish with id.
func (s *ItemStore) FindByID(id int64) (MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.items[i].clone(), true
	}
	return MenuItem{}, false
}

// Add validates form and appends a new active dish with a fresh identifier.
func (s *ItemStore) Add(form ItemForm) (MenuItem, error) {
	fields, err := validateItem(form)
	if err != nil {
		return MenuItem{}, err
	}

	s.mu.Lock()
	active := true
	item := fields
	item.ID = s.seq.next()
	item.Active = &active
	s.items = append(s.items, item)
	s.persist()
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.Debug("menu item added", "id", item.ID, "category", item.Category)
	s.subs.emit(snap)
	return item.clone(), nil
}

// Update validates form and replaces every form field of the dish with id.
// The identifier and the active flag are kept.
func (s *ItemStore) Update(id int64, form ItemForm) error {
	fields, err := validateItem(form)
	if err != nil {
		return err
	}

	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("update menu item %d: %w", id, ErrNotFound)
	}
	fields.ID = id
	fields.Active = s.items[i].Active
	s.items[i] = fields
	s.persist()
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.Debug("menu item updated", "id", id)
	s.subs.emit(snap)
	return nil
}

// SetActive sets the public visibility flag of the dish with id.
func (s *ItemStore) SetActive(id int64, active bool) error {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("set active on menu item %d: %w", id, ErrNotFound)
	}
	s.items[i].Active = &active
	s.persist()
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.Debug("menu item visibility changed", "id", id, "active", active)
	s.subs.emit(snap)
	return nil
}

// RenameCategoryOnItems rewrites the category of every dish currently in
// oldName to newName and returns how many dishes changed.
func (s *ItemStore) RenameCategoryOnItems(oldName, newName string) int {
	if oldName == newName {
		return 0
	}

	s.mu.Lock()
	changed := 0
	for i := range s.items {
		if s.items[i].Category == oldName {
			s.items[i].Category = newName
			changed++
		}
	}
	if changed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.persist()
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.Debug("menu items recategorised", "from", oldName, "to", newName, "count", changed)
	s.subs.emit(snap)
	return changed
}

// Remove deletes the dish with id.
func (s *ItemStore) Remove(id int64) error {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("delete menu item %d: %w", id, ErrNotFound)
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.persist()
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.Debug("menu item deleted", "id", id)
	s.subs.emit(snap)
	return nil
}

// CountInCategory returns how many dishes reference the category name.
func (s *ItemStore) CountInCategory(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.items {
		if item.Category == name {
			n++
		}
	}
	return n
}

func (s *ItemStore) index(id int64) int {
	return slices.IndexFunc(s.items, func(m MenuItem) bool { return m.ID == id })
}

func (s *ItemStore) snapshot() []MenuItem {
	out := make([]MenuItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.clone()
	}
	return out
}

// persist writes the full list. Caller holds s.mu.
func (s *ItemStore) persist() {
	items := s.items
	if items == nil {
		items = []MenuItem{}
	}
	s.storage.Set(KeyMenuItems, items)
}

// validateItem checks the required fields and returns the normalised dish
// (without identifier or active flag).
func validateItem(form ItemForm) (MenuItem, error) {
	var problems []string

	name := strings.TrimSpace(form.Name)
	if name == "" {
		problems = append(problems, "name is required")
	}

	category := strings.TrimSpace(form.Category)
	if category == "" {
		problems = append(problems, "category is required")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		problems = append(problems, "price must be a positive number")
	}

	allergenIDs := make([]Allergen, 0, len(form.Allergens))
	for _, raw := range form.Allergens {
		info, ok := LookupAllergen(strings.TrimSpace(raw))
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown allergen %q", raw))
			continue
		}
		if !slices.Contains(allergenIDs, info.ID) {
			allergenIDs = append(allergenIDs, info.ID)
		}
	}

	if len(problems) > 0 {
		return MenuItem{}, invalid(problems...)
	}

	var suggestions []string
	for _, sug := range form.Suggestions {
		if sug = strings.TrimSpace(sug); sug != "" {
			suggestions = append(suggestions, sug)
		}
	}

	return MenuItem{
		Name:        name,
		Category:    category,
		Price:       price,
		Image:       strings.TrimSpace(form.Image),
		VideoURL:    strings.TrimSpace(form.VideoURL),
		Description: strings.TrimSpace(form.Description),
		Allergens:   allergenIDs,
		Suggestions: suggestions,
	}, nil
}
