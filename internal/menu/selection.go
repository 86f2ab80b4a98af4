package menu

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/carta/internal/kv"
)

// MaxQuantity is the largest quantity a selection entry can hold.
const MaxQuantity = 99

// SelectionStore owns the customer's saved dishes with a quantity each,
// persisted under KeySelection as {"<dish id>": quantity}.
//
// A dish is either absent or present with a quantity in [1, MaxQuantity];
// a quantity below 1 is never stored, the entry is removed instead.
type SelectionStore struct {
	mu        sync.RWMutex
	storage   kv.Storage
	logger    *slog.Logger
	selection map[int64]int
	subs      notifier[map[int64]int]
}

// NewSelectionStore loads the persisted selection. Both the id→quantity
// object and the legacy array of ids (each meaning quantity 1) are
// accepted; malformed entries are dropped.
func NewSelectionStore(storage kv.Storage, opts ...Option) *SelectionStore {
	cfg := newConfig(opts)
	s := &SelectionStore{
		storage:   storage,
		logger:    cfg.logger,
		selection: make(map[int64]int),
	}

	var raw json.RawMessage
	if storage.Load(KeySelection, &raw) {
		s.selection = parseSelection(raw)
	}
	return s
}

func parseSelection(raw json.RawMessage) map[int64]int {
	out := make(map[int64]int)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return out
	}

	switch v := doc.(type) {
	case []any:
		for _, elem := range v {
			if n, ok := elem.(json.Number); ok {
				if id, ok := integral(string(n)); ok {
					out[id] = 1
				}
			}
		}
	case map[string]any:
		for key, value := range v {
			id, ok := integral(key)
			if !ok {
				continue
			}
			var text string
			switch n := value.(type) {
			case json.Number:
				text = string(n)
			case string:
				text = strings.TrimSpace(n)
			default:
				continue
			}
			qty, ok := integral(text)
			if !ok || qty < 1 || qty > MaxQuantity {
				continue
			}
			out[id] = int(qty)
		}
	}
	return out
}

// integral parses s as a number with no fractional part ("3" and "3.0" both give 3).
func integral(s string) (int64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// Quantity returns the saved quantity of dish id, or 0 if it is not saved.
func (s *SelectionStore) Quantity(id int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection[id]
}

// IsSaved reports whether dish id is in the selection.
func (s *SelectionStore) IsSaved(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selection[id]
	return ok
}

// SavedIDs lists the saved dish ids in ascending order.
func (s *SelectionStore) SavedIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.selection))
}

// Snapshot returns a copy of the id→quantity map.
func (s *SelectionStore) Snapshot() map[int64]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.selection)
}

// Subscribe registers fn to receive the selection after every change.
func (s *SelectionStore) Subscribe(fn func(map[int64]int)) (cancel func()) {
	return s.subs.subscribe(fn)
}

// Toggle removes dish id if saved, otherwise saves it with quantity 1.
// Returns whether the dish is saved afterwards.
func (s *SelectionStore) Toggle(id int64) bool {
	saved := false
	s.apply(func(sel map[int64]int) bool {
		if _, ok := sel[id]; ok {
			delete(sel, id)
			return true
		}
		sel[id] = 1
		saved = true
		return true
	})
	return saved
}

// SetQuantity sets the quantity of dish id, clamped to MaxQuantity.
// A quantity below 1 removes the dish.
func (s *SelectionStore) SetQuantity(id int64, qty int) {
	s.apply(func(sel map[int64]int) bool {
		return put(sel, id, qty)
	})
}

// Adjust changes the quantity of dish id by delta. Reaching a quantity
// below 1 removes the dish; the result is clamped to MaxQuantity.
func (s *SelectionStore) Adjust(id int64, delta int) {
	s.apply(func(sel map[int64]int) bool {
		return put(sel, id, adjusted(sel[id], delta))
	})
}

// adjusted adds delta to a quantity in [0, MaxQuantity] without overflowing.
func adjusted(current, delta int) int {
	switch {
	case delta > MaxQuantity-current:
		return MaxQuantity
	case delta < -current:
		return 0
	default:
		return current + delta
	}
}

// Remove deletes dish id from the selection.
func (s *SelectionStore) Remove(id int64) {
	s.apply(func(sel map[int64]int) bool {
		if _, ok := sel[id]; !ok {
			return false
		}
		delete(sel, id)
		return true
	})
}

// put stores qty for id following the presence rules and reports whether
// the map changed.
func put(sel map[int64]int, id int64, qty int) bool {
	current, present := sel[id]
	if qty < 1 {
		if !present {
			return false
		}
		delete(sel, id)
		return true
	}
	qty = min(qty, MaxQuantity)
	if present && current == qty {
		return false
	}
	sel[id] = qty
	return true
}

// apply runs mutate under the lock and, if it changed the selection,
// persists it and notifies subscribers.
func (s *SelectionStore) apply(mutate func(map[int64]int) bool) {
	s.mu.Lock()
	if !mutate(s.selection) {
		s.mu.Unlock()
		return
	}
	doc := make(map[string]int, len(s.selection))
	for id, qty := range s.selection {
		doc[strconv.FormatInt(id, 10)] = qty
	}
	s.storage.Set(KeySelection, doc)
	snap := maps.Clone(s.selection)
	s.mu.Unlock()

	s.logger.Debug("selection changed", "dishes", len(snap))
	s.subs.emit(snap)
}
