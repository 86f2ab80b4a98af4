package menu

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/carta/internal/kv"
	"github.com/roach88/carta/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStorage returns an adapter over a fresh in-memory backend plus the
// backend itself for raw assertions.
func newTestStorage(t *testing.T) (*kv.Adapter, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	return kv.New(mem, kv.WithLogger(discardLogger())), mem
}

// testOptions wires a discard logger, deterministic ids and optional seeds.
func testOptions(seeds Seeds) []Option {
	gen := testutil.NewOptionIDs()
	return []Option{
		WithLogger(discardLogger()),
		WithIDSource(testutil.NewCounter()),
		WithSeeds(seeds),
		WithOptionIDs(func(size PartySize) string { return gen.Generate(int(size)) }),
	}
}

type fixedSeeds struct {
	items      []MenuItem
	categories []string
	options    map[PartySize][]SharingOption
}

func (f fixedSeeds) MenuItems() []MenuItem                       { return f.items }
func (f fixedSeeds) CategoryNames() []string                     { return f.categories }
func (f fixedSeeds) GroupOptions() map[PartySize][]SharingOption { return f.options }

func demoSeeds() fixedSeeds {
	return fixedSeeds{
		items: []MenuItem{
			{ID: 1, Name: "Croquetas", Category: "Entrantes", Price: 8.5, Allergens: []Allergen{Gluten, Milk}},
			{ID: 2, Name: "Pizza margarita", Category: "Pizza", Price: 11, Allergens: []Allergen{Gluten}},
			{ID: 3, Name: "Pizza diavola", Category: "Pizza", Price: 12.5},
		},
		categories: []string{"Entrantes", "Pizza", "Postres"},
		options: map[PartySize][]SharingOption{
			2: {{ID: "compartir-2-1", Name: "Menú para dos", MenuItemIDs: []int64{1, 2}}},
		},
	}
}

func validForm() ItemForm {
	return ItemForm{Name: "Tiramisú", Category: "Postres", Price: "6.50"}
}

func requireNoRaw(t *testing.T, mem *kv.Memory, key string) {
	t.Helper()
	_, ok := mem.Raw(key)
	require.False(t, ok, "expected %q not to be persisted", key)
}
