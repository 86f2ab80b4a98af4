package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Sequence(t *testing.T) {
	c := NewCounter()
	assert.Equal(t, int64(0), c.Last())

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Last())
}

func TestCounterFrom(t *testing.T) {
	c := NewCounterFrom(41)
	assert.Equal(t, int64(41), c.Last())
	assert.Equal(t, int64(42), c.Next())
}

func TestCounter_IndependentInstancesAgree(t *testing.T) {
	a, b := NewCounter(), NewCounter()
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestCounter_ConcurrentNextIsUnique(t *testing.T) {
	c := NewCounter()
	const workers, calls = 16, 50

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*calls)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				id := c.Next()
				mu.Lock()
				require.False(t, seen[id], "duplicate id %d", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*calls)
	assert.Equal(t, int64(workers*calls), c.Last())
}

func TestOptionIDs_CountsAcrossSizes(t *testing.T) {
	gen := NewOptionIDs()

	assert.Equal(t, "group-4-1", gen.Generate(4))
	assert.Equal(t, "group-2-2", gen.Generate(2))
	assert.Equal(t, "group-4-3", gen.Generate(4))
}

func TestOptionIDs_Concurrent(t *testing.T) {
	gen := NewOptionIDs()

	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = gen.Generate(2)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 10)
}
