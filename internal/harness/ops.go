package harness

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/roach88/carta/internal/catalog"
	"github.com/roach88/carta/internal/menu"
)

// opFunc executes one scenario operation against a catalog.
type opFunc func(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error)

// operations maps scenario op names to their implementation.
var operations = map[string]opFunc{
	"items.add":         opItemsAdd,
	"items.update":      opItemsUpdate,
	"items.activate":    opItemsSetActive(true),
	"items.deactivate":  opItemsSetActive(false),
	"items.delete":      opItemsDelete,
	"categories.add":    opCategoriesAdd,
	"categories.rename": opCategoriesRename,
	"categories.delete": opCategoriesDelete,
	"groups.add":        opGroupsAdd,
	"groups.update":     opGroupsUpdate,
	"groups.delete":     opGroupsDelete,
	"selection.toggle":  opSelectionToggle,
	"selection.set":     opSelectionSet,
	"selection.adjust":  opSelectionAdjust,
	"selection.remove":  opSelectionRemove,
	"reset":             opReset,
}

// Operations returns the supported op names, sorted.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Outcome kinds reported in the trace and matched by expect clauses.
const (
	OutcomeOK               = "ok"
	OutcomeNotFound         = "not_found"
	OutcomeValidation       = "validation"
	OutcomeDuplicate        = "duplicate_category"
	OutcomeInvalidPartySize = "invalid_party_size"
	OutcomeUnknownCategory  = "unknown_category"
	OutcomeCategoryInUse    = "category_in_use"
	OutcomeError            = "error"
)

// outcomeOf classifies an operation error.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, menu.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, menu.ErrDuplicateCategory):
		return OutcomeDuplicate
	case errors.Is(err, menu.ErrInvalidPartySize):
		return OutcomeInvalidPartySize
	case errors.Is(err, catalog.ErrUnknownCategory):
		return OutcomeUnknownCategory
	case errors.Is(err, catalog.ErrCategoryInUse):
		return OutcomeCategoryInUse
	case menu.IsValidation(err):
		return OutcomeValidation
	default:
		return OutcomeError
	}
}

// ArgError reports a malformed scenario argument. It aborts the run
// instead of being recorded as an outcome.
type ArgError struct {
	Arg     string
	Message string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("arg %q: %s", e.Arg, e.Message)
}

func opItemsAdd(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	form, err := itemForm(args)
	if err != nil {
		return nil, err
	}
	item, err := c.AddItem(form)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": item.ID}, nil
}

func opItemsUpdate(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	id, err := intArg(args, "id")
	if err != nil {
		return nil, err
	}
	form, err := itemForm(args)
	if err != nil {
		return nil, err
	}
	return nil, c.UpdateItem(id, form)
}

func opItemsSetActive(active bool) opFunc {
	return func(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
		id, err := intArg(args, "id")
		if err != nil {
			return nil, err
		}
		return nil, c.Items.SetActive(id, active)
	}
}

func opItemsDelete(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	id, err := intArg(args, "id")
	if err != nil {
		return nil, err
	}
	return nil, c.Items.Remove(id)
}

func opCategoriesAdd(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	cat, err := c.Categories.Add(name)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": cat.ID}, nil
}

func opCategoriesRename(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	id, err := categoryID(c, args)
	if err != nil {
		return nil, err
	}
	to, err := stringArg(args, "to")
	if err != nil {
		return nil, err
	}
	moved, err := c.RenameCategory(id, to)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"moved": moved}, nil
}

func opCategoriesDelete(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	id, err := categoryID(c, args)
	if err != nil {
		return nil, err
	}
	return nil, c.DeleteCategory(id)
}

// categoryID accepts either an "id" or the current "name" of a category.
// An unknown name resolves to id 0, which no category has.
func categoryID(c *catalog.Catalog, args map[string]interface{}) (int64, error) {
	if _, ok := args["id"]; ok {
		return intArg(args, "id")
	}
	name, err := stringArg(args, "name")
	if err != nil {
		return 0, &ArgError{Arg: "id", Message: "id or name is required"}
	}
	cat, _ := c.Categories.FindByName(name)
	return cat.ID, nil
}

func opGroupsAdd(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	size, err := intArg(args, "size")
	if err != nil {
		return nil, err
	}
	in := menu.OptionInput{
		Name:        optionalString(args, "name"),
		Description: optionalString(args, "description"),
	}
	if in.Price, err = optionalFloat(args, "price"); err != nil {
		return nil, err
	}
	if ids, ok, err := optionalInts(args, "items"); err != nil {
		return nil, err
	} else if ok {
		in.MenuItemIDs = ids
	}

	opt, err := c.Groups.AddOption(menu.PartySize(size), in)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": opt.ID}, nil
}

func opGroupsUpdate(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	size, err := intArg(args, "size")
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}

	var upd menu.OptionUpdate
	if _, ok := args["name"]; ok {
		v := optionalString(args, "name")
		upd.Name = &v
	}
	if _, ok := args["description"]; ok {
		v := optionalString(args, "description")
		upd.Description = &v
	}
	if upd.Price, err = optionalFloat(args, "price"); err != nil {
		return nil, err
	}
	if ids, ok, err := optionalInts(args, "items"); err != nil {
		return nil, err
	} else if ok {
		upd.MenuItemIDs = &ids
	}

	return nil, c.Groups.UpdateOption(menu.PartySize(size), id, upd)
}

func opGroupsDelete(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	size, err := intArg(args, "size")
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	return nil, c.Groups.DeleteOption(menu.PartySize(size), id)
}

func opSelectionToggle(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	id, err := intArg(args, "id")
	if err != nil {
		return nil, err
	}
	saved := c.Selection.Toggle(id)
	return map[string]interface{}{"saved": saved}, nil
}

func opSelectionSet(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	id, err := intArg(args, "id")
	if err != nil {
		return nil, err
	}
	qty, err := intArg(args, "quantity")
	if err != nil {
		return nil, err
	}
	c.Selection.SetQuantity(id, int(qty))
	return map[string]interface{}{"quantity": c.Selection.Quantity(id)}, nil
}

func opSelectionAdjust(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	id, err := intArg(args, "id")
	if err != nil {
		return nil, err
	}
	delta, err := intArg(args, "delta")
	if err != nil {
		return nil, err
	}
	c.Selection.Adjust(id, int(delta))
	return map[string]interface{}{"quantity": c.Selection.Quantity(id)}, nil
}

func opSelectionRemove(c *catalog.Catalog, args map[string]interface{}) (map[string]interface{}, error) {
	id, err := intArg(args, "id")
	if err != nil {
		return nil, err
	}
	c.Selection.Remove(id)
	return nil, nil
}

func opReset(c *catalog.Catalog, _ map[string]interface{}) (map[string]interface{}, error) {
	c.Reset()
	return nil, nil
}

// itemForm builds a dish form. Price may be written as a number or a string.
func itemForm(args map[string]interface{}) (menu.ItemForm, error) {
	form := menu.ItemForm{
		Name:        optionalString(args, "name"),
		Category:    optionalString(args, "category"),
		Image:       optionalString(args, "image"),
		VideoURL:    optionalString(args, "video_url"),
		Description: optionalString(args, "description"),
	}

	switch v := args["price"].(type) {
	case nil:
	case string:
		form.Price = v
	case int:
		form.Price = strconv.Itoa(v)
	case float64:
		form.Price = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return form, &ArgError{Arg: "price", Message: fmt.Sprintf("unsupported type %T", v)}
	}

	var err error
	if form.Allergens, err = optionalStrings(args, "allergens"); err != nil {
		return form, err
	}
	if form.Suggestions, err = optionalStrings(args, "suggestions"); err != nil {
		return form, err
	}
	return form, nil
}

// toInt converts a YAML-parsed number to int64, rejecting fractions.
func toInt(val interface{}) (int64, bool) {
	switch v := val.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

func intArg(args map[string]interface{}, key string) (int64, error) {
	val, ok := args[key]
	if !ok {
		return 0, &ArgError{Arg: key, Message: "is required"}
	}
	n, ok := toInt(val)
	if !ok {
		return 0, &ArgError{Arg: key, Message: fmt.Sprintf("expected an integer, got %T", val)}
	}
	return n, nil
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok {
		return "", &ArgError{Arg: key, Message: "expected a string"}
	}
	return val, nil
}

func optionalString(args map[string]interface{}, key string) string {
	if val, ok := args[key]; ok && val != nil {
		return fmt.Sprint(val)
	}
	return ""
}

func optionalStrings(args map[string]interface{}, key string) ([]string, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return nil, nil
	}
	list, ok := val.([]interface{})
	if !ok {
		return nil, &ArgError{Arg: key, Message: "expected a list"}
	}
	out := make([]string, len(list))
	for i, elem := range list {
		out[i] = fmt.Sprint(elem)
	}
	return out, nil
}

func optionalInts(args map[string]interface{}, key string) ([]int64, bool, error) {
	val, ok := args[key]
	if !ok {
		return nil, false, nil
	}
	list, ok := val.([]interface{})
	if !ok {
		return nil, false, &ArgError{Arg: key, Message: "expected a list of integers"}
	}
	out := make([]int64, len(list))
	for i, elem := range list {
		n, ok := toInt(elem)
		if !ok {
			return nil, false, &ArgError{Arg: fmt.Sprintf("%s[%d]", key, i), Message: "expected an integer"}
		}
		out[i] = n
	}
	return out, true, nil
}

func optionalFloat(args map[string]interface{}, key string) (*float64, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return nil, nil
	}
	switch v := val.(type) {
	case int:
		f := float64(v)
		return &f, nil
	case float64:
		return &v, nil
	}
	return nil, &ArgError{Arg: key, Message: fmt.Sprintf("expected a number, got %T", val)}
}
