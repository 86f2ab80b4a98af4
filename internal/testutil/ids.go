// Package testutil provides predictable identifier sources for tests and the
// scenario harness.
package testutil

import (
	"fmt"
	"sync"
)

// Counter hands out 1, 2, 3, ... and satisfies menu.IDSource, so dishes and
// categories created in tests get small stable ids instead of wall-clock
// milliseconds. The harness also uses one to number trace events.
//
// Safe for concurrent use.
type Counter struct {
	mu   sync.Mutex
	last int64
}

// NewCounter returns a counter whose first Next is 1.
func NewCounter() *Counter {
	return &Counter{}
}

// NewCounterFrom returns a counter whose first Next is start+1.
func NewCounterFrom(start int64) *Counter {
	return &Counter{last: start}
}

// Next advances the counter and returns the new value.
func (c *Counter) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	return c.last
}

// Last returns the most recent value handed out, or the start value.
func (c *Counter) Last() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// OptionIDs generates sharing option ids of the form "group-<size>-<n>",
// where n counts calls across all sizes starting at 1. The size is an int so
// the generator adapts to menu.PartySize with a closure.
type OptionIDs struct {
	mu sync.Mutex
	n  int
}

// NewOptionIDs creates a generator whose first id ends in "-1".
func NewOptionIDs() *OptionIDs {
	return &OptionIDs{}
}

// Generate returns the next id for a party size.
func (g *OptionIDs) Generate(size int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("group-%d-%d", size, g.n)
}
