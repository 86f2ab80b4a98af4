package catalog

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/roach88/carta/internal/menu"
)

// dishEnv is the environment a query expression sees for each dish.
type dishEnv struct {
	ID          int64    `expr:"id"`
	Name        string   `expr:"name"`
	Category    string   `expr:"category"`
	Price       float64  `expr:"price"`
	Active      bool     `expr:"active"`
	Allergens   []string `expr:"allergens"`
	Suggestions []string `expr:"suggestions"`
	Description string   `expr:"description"`
}

func newDishEnv(item menu.MenuItem) dishEnv {
	allergens := make([]string, len(item.Allergens))
	for i, a := range item.Allergens {
		allergens[i] = string(a)
	}
	suggestions := item.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return dishEnv{
		ID:          item.ID,
		Name:        item.Name,
		Category:    item.Category,
		Price:       item.Price,
		Active:      item.IsActive(),
		Allergens:   allergens,
		Suggestions: suggestions,
		Description: item.Description,
	}
}

// CompileQuery compiles a boolean dish filter such as
//
//	price < 15 && !("gluten" in allergens)
func CompileQuery(expression string) (*vm.Program, error) {
	if expression == "" {
		return nil, fmt.Errorf("query expression must not be empty")
	}
	program, err := expr.Compile(expression, expr.Env(dishEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile query %q: %w", expression, err)
	}
	return program, nil
}

// Query returns every dish, active or not, matching expression.
func (c *Catalog) Query(expression string) ([]menu.MenuItem, error) {
	program, err := CompileQuery(expression)
	if err != nil {
		return nil, err
	}

	var out []menu.MenuItem
	for _, item := range c.Items.Items() {
		result, err := expr.Run(program, newDishEnv(item))
		if err != nil {
			return nil, fmt.Errorf("evaluate query on dish %d: %w", item.ID, err)
		}
		if match, _ := result.(bool); match {
			out = append(out, item)
		}
	}
	return out, nil
}
