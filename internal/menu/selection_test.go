package menu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionStore_QuantityLifecycle(t *testing.T) {
	storage, _ := newTestStorage(t)
	s := NewSelectionStore(storage, testOptions(nil)...)

	s.Adjust(5, -1)
	assert.False(t, s.IsSaved(5), "decrementing an absent dish is a no-op")
	assert.Equal(t, 0, s.Quantity(5))

	assert.True(t, s.Toggle(5))
	assert.Equal(t, 1, s.Quantity(5))

	s.Adjust(5, +1)
	s.Adjust(5, +1)
	assert.Equal(t, 3, s.Quantity(5))

	s.SetQuantity(5, 150)
	assert.Equal(t, MaxQuantity, s.Quantity(5))

	s.Adjust(5, +1)
	assert.Equal(t, MaxQuantity, s.Quantity(5), "adjust clamps at the maximum")

	s.SetQuantity(5, 0)
	assert.False(t, s.IsSaved(5))
	assert.Equal(t, 0, s.Quantity(5))
}

func TestSelectionStore_ToggleOffRemoves(t *testing.T) {
	storage, _ := newTestStorage(t)
	s := NewSelectionStore(storage, testOptions(nil)...)

	s.SetQuantity(7, 4)
	assert.False(t, s.Toggle(7))
	assert.False(t, s.IsSaved(7))
}

func TestSelectionStore_AdjustDownToZeroRemoves(t *testing.T) {
	storage, _ := newTestStorage(t)
	s := NewSelectionStore(storage, testOptions(nil)...)

	s.Toggle(3)
	s.Adjust(3, -1)
	assert.False(t, s.IsSaved(3))
	assert.NotContains(t, s.Snapshot(), int64(3))
}

func TestSelectionStore_AdjustExtremeDeltas(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		delta   int
		want    int
		present bool
	}{
		{"huge increment clamps", 3, math.MaxInt, MaxQuantity, true},
		{"huge increment from absent clamps", 0, math.MaxInt, MaxQuantity, true},
		{"huge decrement removes", 3, math.MinInt, 0, false},
		{"huge decrement from absent stays absent", 0, math.MinInt, 0, false},
		{"increment past maximum clamps", 98, 5, MaxQuantity, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, _ := newTestStorage(t)
			s := NewSelectionStore(storage, testOptions(nil)...)
			if tt.start > 0 {
				s.SetQuantity(5, tt.start)
			}

			s.Adjust(5, tt.delta)

			assert.Equal(t, tt.want, s.Quantity(5))
			assert.Equal(t, tt.present, s.IsSaved(5))
		})
	}
}

func TestSelectionStore_AdjustFromAbsentAdds(t *testing.T) {
	storage, _ := newTestStorage(t)
	s := NewSelectionStore(storage, testOptions(nil)...)

	s.Adjust(8, +1)
	assert.Equal(t, 1, s.Quantity(8))
}

func TestSelectionStore_RemoveAndSavedIDs(t *testing.T) {
	storage, _ := newTestStorage(t)
	s := NewSelectionStore(storage, testOptions(nil)...)

	s.Toggle(30)
	s.Toggle(10)
	s.SetQuantity(20, 2)

	assert.Equal(t, []int64{10, 20, 30}, s.SavedIDs())

	s.Remove(20)
	s.Remove(404)
	assert.Equal(t, []int64{10, 30}, s.SavedIDs())
	assert.Equal(t, map[int64]int{10: 1, 30: 1}, s.Snapshot())
}

func TestSelectionStore_PersistedShape(t *testing.T) {
	storage, mem := newTestStorage(t)
	s := NewSelectionStore(storage, testOptions(nil)...)

	s.SetQuantity(12, 3)
	s.Toggle(4)

	raw, ok := mem.Raw(KeySelection)
	require.True(t, ok)
	assert.Equal(t, `{"12":3,"4":1}`, raw)
}

func TestSelectionStore_RoundTrip(t *testing.T) {
	storage, _ := newTestStorage(t)
	s := NewSelectionStore(storage, testOptions(nil)...)
	s.SetQuantity(1, 2)
	s.SetQuantity(1700000000123, 99)
	s.Toggle(3)

	reloaded := NewSelectionStore(storage, testOptions(nil)...)
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
}

func TestSelectionStore_LoadsLegacyArray(t *testing.T) {
	storage, mem := newTestStorage(t)
	require.NoError(t, mem.Put(t.Context(), KeySelection, `[1, 2, 2.0, 3.5, "4", null]`))

	s := NewSelectionStore(storage, testOptions(nil)...)

	assert.Equal(t, map[int64]int{1: 1, 2: 1}, s.Snapshot())
}

func TestSelectionStore_DiscardsMalformedEntries(t *testing.T) {
	storage, mem := newTestStorage(t)
	require.NoError(t, mem.Put(t.Context(), KeySelection, `{
		"1": 2,
		"2": 0,
		"3": 100,
		"4": 1.5,
		"x": 3,
		"6": true,
		"7": 99,
		"8": "0"
	}`))

	s := NewSelectionStore(storage, testOptions(nil)...)

	assert.Equal(t, map[int64]int{1: 2, 7: 99}, s.Snapshot())
}

func TestSelectionStore_AcceptsNumericStringQuantities(t *testing.T) {
	storage, mem := newTestStorage(t)
	require.NoError(t, mem.Put(t.Context(), KeySelection, `{"5": "2", "6": 3, "7": " 4 ", "8": "dos"}`))

	s := NewSelectionStore(storage, testOptions(nil)...)

	assert.Equal(t, map[int64]int{5: 2, 6: 3, 7: 4}, s.Snapshot())
}

func TestSelectionStore_UnreadableDocumentStartsEmpty(t *testing.T) {
	storage, mem := newTestStorage(t)
	require.NoError(t, mem.Put(t.Context(), KeySelection, `{broken`))

	s := NewSelectionStore(storage, testOptions(nil)...)
	assert.Empty(t, s.Snapshot())
}

func TestSelectionStore_NotifiesOnlyOnChange(t *testing.T) {
	storage, _ := newTestStorage(t)
	s := NewSelectionStore(storage, testOptions(nil)...)

	calls := 0
	s.Subscribe(func(map[int64]int) { calls++ })

	s.Adjust(1, -1)
	s.Remove(1)
	assert.Equal(t, 0, calls)

	s.Toggle(1)
	s.SetQuantity(1, 1)
	assert.Equal(t, 1, calls, "setting the current quantity is not a change")
}
