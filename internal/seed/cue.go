package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/carta/internal/menu"
)

//go:embed schema.cue
var schemaCUE string

// LoadError reports a seed file that does not compile or does not satisfy
// the seed schema.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// document mirrors #Seed; group option keys stay strings until validated.
type document struct {
	Categories   []string                        `json:"categories"`
	MenuItems    []menu.MenuItem                 `json:"menuItems"`
	GroupOptions map[string][]menu.SharingOption `json:"groupOptions"`
}

// LoadFile reads and validates a CUE seed file.
func LoadFile(path string) (*Data, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(path, src)
}

// Parse compiles src, unifies it with the #Seed schema and decodes it.
// filename is only used in error positions.
//
// Example seed:
//
//	categories: ["Pizza"]
//	menuItems: [{id: 1, name: "Margarita", category: "Pizza", price: 9.5}]
//	groupOptions: "4": [{id: "pizza-party", name: "Pizza party", menuItemIds: [1]}]
func Parse(filename string, src []byte) (*Data, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile seed schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Seed")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	data, err := unified.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	return fromDocument(doc)
}

// fromDocument applies the cross-field rules CUE does not express:
// unique ids, and dishes referencing declared categories.
func fromDocument(doc document) (*Data, error) {
	out := &Data{
		Categories: doc.Categories,
		Items:      doc.MenuItems,
		Options:    make(map[menu.PartySize][]menu.SharingOption, len(doc.GroupOptions)),
	}

	declared := make(map[string]bool, len(doc.Categories))
	for _, name := range doc.Categories {
		declared[name] = true
	}

	seen := make(map[int64]bool, len(doc.MenuItems))
	for _, item := range doc.MenuItems {
		if seen[item.ID] {
			return nil, &LoadError{Field: "menuItems", Message: fmt.Sprintf("duplicate id %d", item.ID)}
		}
		seen[item.ID] = true
		if !declared[item.Category] {
			return nil, &LoadError{Field: "menuItems", Message: fmt.Sprintf("dish %d uses undeclared category %q", item.ID, item.Category)}
		}
	}

	optionIDs := make(map[string]bool)
	for key, list := range doc.GroupOptions {
		n, err := strconv.Atoi(key)
		if err != nil || !menu.PartySize(n).Valid() {
			return nil, &LoadError{Field: "groupOptions", Message: fmt.Sprintf("invalid party size %q", key)}
		}
		for _, o := range list {
			if optionIDs[o.ID] {
				return nil, &LoadError{Field: "groupOptions", Message: fmt.Sprintf("duplicate option id %q", o.ID)}
			}
			optionIDs[o.ID] = true
		}
		out.Options[menu.PartySize(n)] = list
	}

	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &LoadError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
