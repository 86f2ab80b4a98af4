package menu

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/carta/internal/kv"
)

// GroupStore owns the group-sharing options keyed by party size, persisted
// under KeyGroupOptions as {"2": [...], "4": [...], "6": [...], "8": [...]}.
//
// Options may reference dishes that no longer exist. The store keeps such
// references; readers filter them out.
type GroupStore struct {
	mu      sync.RWMutex
	storage kv.Storage
	logger  *slog.Logger
	newID   func(PartySize) string
	options map[PartySize][]SharingOption
	subs    notifier[map[PartySize][]SharingOption]
}

// NewGroupStore loads the persisted options. Entries that are not objects
// with a string id and a string name are dropped. When nothing is
// persisted the seed options are installed and written back.
func NewGroupStore(storage kv.Storage, opts ...Option) *GroupStore {
	cfg := newConfig(opts)
	s := &GroupStore{
		storage: storage,
		logger:  cfg.logger,
		newID:   cfg.optionIDs,
		options: make(map[PartySize][]SharingOption, len(PartySizes)),
	}

	var raw map[string]json.RawMessage
	if storage.Load(KeyGroupOptions, &raw) && len(raw) > 0 {
		s.options = normalizeGroupOptions(raw, s.logger)
		return s
	}

	if cfg.seeds != nil {
		for size, list := range cfg.seeds.GroupOptions() {
			if !size.Valid() {
				continue
			}
			for _, o := range list {
				s.options[size] = append(s.options[size], o.clone())
			}
		}
	}
	s.persist()
	return s
}

func normalizeGroupOptions(raw map[string]json.RawMessage, logger *slog.Logger) map[PartySize][]SharingOption {
	out := make(map[PartySize][]SharingOption, len(PartySizes))
	for _, size := range PartySizes {
		data, ok := raw[strconv.Itoa(int(size))]
		if !ok {
			continue
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			logger.Warn("discarding malformed group options", "party_size", int(size), "error", err)
			continue
		}
		for _, entry := range entries {
			o, ok := decodeOption(entry)
			if !ok {
				logger.Warn("discarding malformed group option", "party_size", int(size))
				continue
			}
			out[size] = append(out[size], o)
		}
	}
	return out
}

// decodeOption accepts entry only if it is an object whose id and name are strings.
func decodeOption(entry json.RawMessage) (SharingOption, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return SharingOption{}, false
	}
	for _, key := range []string{"id", "name"} {
		var str string
		v := fields[key]
		if len(v) == 0 || string(v) == "null" {
			return SharingOption{}, false
		}
		if err := json.Unmarshal(v, &str); err != nil {
			return SharingOption{}, false
		}
	}
	var o SharingOption
	if err := json.Unmarshal(entry, &o); err != nil {
		return SharingOption{}, false
	}
	return o, true
}

// Options returns the options for size in display order (empty if none).
func (s *GroupStore) Options(size PartySize) []SharingOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOptions(s.options[size])
}

// All returns a snapshot of every party size's options.
func (s *GroupStore) All() map[PartySize][]SharingOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Find returns the option id under size.
func (s *GroupStore) Find(size PartySize, id string) (SharingOption, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.options[size]
	if i := indexOption(list, id); i >= 0 {
		return list[i].clone(), true
	}
	return SharingOption{}, false
}

// Subscribe registers fn to receive all options after every mutation.
func (s *GroupStore) Subscribe(fn func(map[PartySize][]SharingOption)) (cancel func()) {
	return s.subs.subscribe(fn)
}

// AddOption appends a new option under size. Name and description are
// trimmed; an empty description or dish list is stored as absent.
func (s *GroupStore) AddOption(size PartySize, in OptionInput) (SharingOption, error) {
	if !size.Valid() {
		return SharingOption{}, fmt.Errorf("add group option for %d: %w", size, ErrInvalidPartySize)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return SharingOption{}, invalid("option name is required")
	}

	o := SharingOption{
		ID:          s.newID(size),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
	}
	if in.Price != nil {
		p := *in.Price
		o.Price = &p
	}
	if len(in.MenuItemIDs) > 0 {
		o.MenuItemIDs = slices.Clone(in.MenuItemIDs)
	}

	s.mu.Lock()
	s.options[size] = append(s.options[size], o)
	s.persist()
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.Debug("group option added", "party_size", int(size), "id", o.ID)
	s.subs.emit(snap)
	return o.clone(), nil
}

// UpdateOption merges the non-nil fields of upd into option id under size.
// An unknown size or id returns an error wrapping ErrNotFound and changes
// nothing, neither in memory nor in storage.
func (s *GroupStore) UpdateOption(size PartySize, id string, upd OptionUpdate) error {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return invalid("option name is required")
	}

	s.mu.Lock()
	list := s.options[size]
	i := indexOption(list, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("update group option %q for %d: %w", id, size, ErrNotFound)
	}
	o := list[i]
	if upd.Name != nil {
		o.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		o.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Price != nil {
		p := *upd.Price
		o.Price = &p
	}
	if upd.MenuItemIDs != nil {
		o.MenuItemIDs = nil
		if len(*upd.MenuItemIDs) > 0 {
			o.MenuItemIDs = slices.Clone(*upd.MenuItemIDs)
		}
	}
	list[i] = o
	s.persist()
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.Debug("group option updated", "party_size", int(size), "id", id)
	s.subs.emit(snap)
	return nil
}

// DeleteOption removes option id under size. An unknown size or id returns
// an error wrapping ErrNotFound and changes nothing.
func (s *GroupStore) DeleteOption(size PartySize, id string) error {
	s.mu.Lock()
	list := s.options[size]
	i := indexOption(list, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("delete group option %q for %d: %w", id, size, ErrNotFound)
	}
	s.options[size] = slices.Delete(list, i, i+1)
	s.persist()
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.Debug("group option deleted", "party_size", int(size), "id", id)
	s.subs.emit(snap)
	return nil
}

func indexOption(list []SharingOption, id string) int {
	return slices.IndexFunc(list, func(o SharingOption) bool { return o.ID == id })
}

func cloneOptions(list []SharingOption) []SharingOption {
	out := make([]SharingOption, len(list))
	for i, o := range list {
		out[i] = o.clone()
	}
	return out
}

func (s *GroupStore) snapshot() map[PartySize][]SharingOption {
	out := make(map[PartySize][]SharingOption, len(PartySizes))
	for _, size := range PartySizes {
		out[size] = cloneOptions(s.options[size])
	}
	return out
}

// persist writes every party size, using an empty list for sizes without options.
func (s *GroupStore) persist() {
	doc := make(map[string][]SharingOption, len(PartySizes))
	for _, size := range PartySizes {
		list := s.options[size]
		if list == nil {
			list = []SharingOption{}
		}
		doc[strconv.Itoa(int(size))] = list
	}
	s.storage.Set(KeyGroupOptions, doc)
}
