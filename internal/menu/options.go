package menu

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDSource issues candidate numeric identifiers.
// Stores bump any candidate that is not above the highest id they have seen.
type IDSource interface {
	Next() int64
}

// WallClock issues Unix-millisecond identifiers.
type WallClock struct{}

// Next returns the current Unix time in milliseconds.
func (WallClock) Next() int64 {
	return time.Now().UnixMilli()
}

// Seeds provides first-run data for stores whose collection is not persisted yet.
type Seeds interface {
	MenuItems() []MenuItem
	CategoryNames() []string
	GroupOptions() map[PartySize][]SharingOption
}

// Option configures a store.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	ids       IDSource
	seeds     Seeds
	optionIDs func(PartySize) string
}

func newConfig(opts []Option) config {
	c := config{
		logger:    slog.Default(),
		ids:       WallClock{},
		optionIDs: generateOptionID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDSource sets the source of numeric identifiers.
func WithIDSource(ids IDSource) Option {
	return func(c *config) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// WithSeeds sets the first-run data provider. Without it stores start empty.
func WithSeeds(seeds Seeds) Option {
	return func(c *config) {
		c.seeds = seeds
	}
}

// WithOptionIDs overrides the sharing option id generator.
func WithOptionIDs(gen func(PartySize) string) Option {
	return func(c *config) {
		if gen != nil {
			c.optionIDs = gen
		}
	}
}

// generateOptionID builds "group-<size>-<unixMillis>-<7 random chars>".
func generateOptionID(size PartySize) string {
	suffix := uuid.NewString()
	return fmt.Sprintf("group-%d-%d-%s", size, time.Now().UnixMilli(), suffix[:7])
}

// sequence hands out identifiers above a high-water mark.
type sequence struct {
	src  IDSource
	last int64
}

func (s *sequence) observe(id int64) {
	if id > s.last {
		s.last = id
	}
}

func (s *sequence) next() int64 {
	id := s.src.Next()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// notifier fans snapshots out to subscribers.
type notifier[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(T)
}

func (n *notifier[T]) subscribe(fn func(T)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(T))
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier[T]) emit(v T) {
	n.mu.Lock()
	fns := make([]func(T), 0, len(n.subs))
	for i := 0; i < n.next; i++ {
		if fn, ok := n.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
