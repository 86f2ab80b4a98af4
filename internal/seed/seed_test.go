package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/carta/internal/menu"
)

func TestBuiltin_IsConsistent(t *testing.T) {
	d := Builtin()

	assert.Equal(t, DefaultCategoryNames, d.CategoryNames())
	require.Len(t, d.MenuItems(), 4)

	declared := map[string]bool{}
	for _, name := range d.CategoryNames() {
		declared[name] = true
	}
	ids := map[int64]bool{}
	for _, item := range d.MenuItems() {
		assert.True(t, declared[item.Category], "dish %d uses undeclared category %q", item.ID, item.Category)
		assert.False(t, ids[item.ID], "duplicate dish id %d", item.ID)
		ids[item.ID] = true
		assert.Greater(t, item.Price, 0.0)
	}

	for _, size := range menu.PartySizes {
		assert.NotEmpty(t, d.GroupOptions()[size], "party size %d has no options", size)
		for _, o := range d.GroupOptions()[size] {
			for _, id := range o.MenuItemIDs {
				assert.True(t, ids[id], "option %s references unknown dish %d", o.ID, id)
			}
		}
	}
}

func TestBuiltin_ReturnsFreshCopies(t *testing.T) {
	a := Builtin()
	a.Categories[0] = "changed"
	assert.Equal(t, "Para picar / entrantes", Builtin().Categories[0])
}

func TestParse_ValidSeed(t *testing.T) {
	src := `
categories: ["Pizza", "Postres"]
menuItems: [
	{id: 1, name: "Margarita", category: "Pizza", price: 9.5, allergens: ["gluten", "milk"]},
	{id: 2, name: "Tiramisú", category: "Postres", price: 6, active: false},
]
groupOptions: "4": [{id: "pizza-party", name: "Pizza party", price: 30, menuItemIds: [1, 1, 2]}]
`
	d, err := Parse("menu.cue", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"Pizza", "Postres"}, d.CategoryNames())
	require.Len(t, d.MenuItems(), 2)
	assert.Equal(t, "Margarita", d.MenuItems()[0].Name)
	assert.Equal(t, 9.5, d.MenuItems()[0].Price)
	assert.Equal(t, []menu.Allergen{menu.Gluten, menu.Milk}, d.MenuItems()[0].Allergens)
	assert.False(t, d.MenuItems()[1].IsActive())

	opts := d.GroupOptions()[4]
	require.Len(t, opts, 1)
	assert.Equal(t, "pizza-party", opts[0].ID)
	require.NotNil(t, opts[0].Price)
	assert.Equal(t, 30.0, *opts[0].Price)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown allergen", `categories: ["A"], menuItems: [{id: 1, name: "x", category: "A", price: 1, allergens: ["kiwi"]}], groupOptions: {}`},
		{"non-positive price", `categories: ["A"], menuItems: [{id: 1, name: "x", category: "A", price: 0}], groupOptions: {}`},
		{"empty name", `categories: ["A"], menuItems: [{id: 1, name: "", category: "A", price: 1}], groupOptions: {}`},
		{"unknown field", `categories: ["A"], menuItems: [], groupOptions: {}, extras: true`},
		{"invalid party size", `categories: ["A"], menuItems: [], groupOptions: "3": [{id: "x", name: "y"}]`},
		{"syntax error", `categories: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.cue", []byte(tt.src))
			require.Error(t, err)
		})
	}
}

func TestParse_CrossFieldRules(t *testing.T) {
	t.Run("undeclared category", func(t *testing.T) {
		_, err := Parse("x.cue", []byte(`categories: ["A"], menuItems: [{id: 1, name: "x", category: "B", price: 1}], groupOptions: {}`))
		var le *LoadError
		require.True(t, errors.As(err, &le), "got %v", err)
		assert.Contains(t, le.Message, `undeclared category "B"`)
	})

	t.Run("duplicate dish id", func(t *testing.T) {
		_, err := Parse("x.cue", []byte(`categories: ["A"], menuItems: [{id: 1, name: "x", category: "A", price: 1}, {id: 1, name: "y", category: "A", price: 2}], groupOptions: {}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate id 1")
	})

	t.Run("duplicate option id", func(t *testing.T) {
		_, err := Parse("x.cue", []byte(`categories: [], menuItems: [], groupOptions: {"2": [{id: "a", name: "x"}], "4": [{id: "a", name: "y"}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate option id "a"`)
	})
}

func TestParse_ErrorsNameTheField(t *testing.T) {
	_, err := Parse("pos.cue", []byte("categories: [\"A\"]\nmenuItems: [{id: 1, name: \"x\", category: \"A\", price: -2}]\ngroupOptions: {}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.cue")
	require.NoError(t, os.WriteFile(path, []byte(`categories: ["Vinos"], menuItems: [], groupOptions: {}`), 0644))

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vinos"}, d.CategoryNames())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read seed file")
}
