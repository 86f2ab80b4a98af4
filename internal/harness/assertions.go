package harness

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/roach88/carta/internal/catalog"
	"github.com/roach88/carta/internal/menu"
)

// AssertionError describes a failed assertion. Trace assertions attach the
// trace so the failure message lists the steps that actually ran.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assertion failed: %s\n  Expected: %s\n  Actual: %s\n", e.Type, e.Expected, e.Actual)
	steps := invocations(e.Trace)
	if len(steps) > 0 {
		b.WriteString("\nFull trace:\n")
	}
	for _, s := range steps {
		fmt.Fprintf(&b, "  [%d] %s %v\n", s.pos, s.Op, s.Args)
	}
	return b.String()
}

// step is an invocation together with its 1-based position in the trace.
type step struct {
	TraceEvent
	pos int
}

func invocations(trace []TraceEvent) []step {
	var steps []step
	for i, event := range trace {
		if event.Type == EventInvocation {
			steps = append(steps, step{TraceEvent: event, pos: i + 1})
		}
	}
	return steps
}

// assertTraceContains passes when some invocation of assertion.Op carries at
// least the expected args.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, s := range invocations(trace) {
		if s.Op == assertion.Op && matchArgs(s.Args, assertion.Args) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("op %s with args %v", assertion.Op, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder passes when the first invocation of each listed op
// appears in the listed order. Other ops may run in between.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	first := make(map[string]int, len(assertion.Ops))
	for _, s := range invocations(trace) {
		if _, seen := first[s.Op]; !seen {
			first[s.Op] = s.pos
		}
	}

	prev := ""
	for _, op := range assertion.Ops {
		pos, ok := first[op]
		if !ok {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", assertion.Ops),
				Actual:   "missing op: " + op,
				Trace:    trace,
			}
		}
		if prev != "" && first[prev] >= pos {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
				Actual:   fmt.Sprintf("%s (pos %d) should be before %s (pos %d)", prev, first[prev], op, pos),
				Trace:    trace,
			}
		}
		prev = op
	}
	return nil
}

func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	n := 0
	for _, s := range invocations(trace) {
		if s.Op == assertion.Op {
			n++
		}
	}
	if n == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Op),
		Actual:   fmt.Sprintf("%d occurrences", n),
		Trace:    trace,
	}
}

// assertItemCount counts every dish, or the dishes of one category.
func assertItemCount(c *catalog.Catalog, assertion Assertion) error {
	count := len(c.Items.Items())
	scope := "dishes"
	if assertion.Category != "" {
		count = c.Items.CountInCategory(assertion.Category)
		scope = fmt.Sprintf("dishes in %q", assertion.Category)
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertItemCount,
			Expected: fmt.Sprintf("%d %s", assertion.Count, scope),
			Actual:   fmt.Sprintf("%d %s", count, scope),
		}
	}
	return nil
}

func assertCategoryCount(c *catalog.Catalog, assertion Assertion) error {
	if n := len(c.Categories.Categories()); n != assertion.Count {
		return &AssertionError{
			Type:     AssertCategoryCount,
			Expected: fmt.Sprintf("%d categories", assertion.Count),
			Actual:   fmt.Sprintf("%d categories", n),
		}
	}
	return nil
}

func assertOptionCount(c *catalog.Catalog, assertion Assertion) error {
	if n := len(c.Groups.Options(menu.PartySize(assertion.Size))); n != assertion.Count {
		return &AssertionError{
			Type:     AssertOptionCount,
			Expected: fmt.Sprintf("%d options for %d people", assertion.Count, assertion.Size),
			Actual:   fmt.Sprintf("%d options", n),
		}
	}
	return nil
}

func assertSelectionQuantity(c *catalog.Catalog, assertion Assertion) error {
	if q := c.Selection.Quantity(assertion.ID); q != assertion.Quantity {
		return &AssertionError{
			Type:     AssertSelectionQuantity,
			Expected: fmt.Sprintf("dish %d quantity %d", assertion.ID, assertion.Quantity),
			Actual:   fmt.Sprintf("quantity %d", q),
		}
	}
	return nil
}

func assertSelectionTotal(c *catalog.Catalog, assertion Assertion) error {
	if total := c.SelectionTotal(); math.Abs(total-assertion.Total) > 0.005 {
		return &AssertionError{
			Type:     AssertSelectionTotal,
			Expected: catalog.FormatPrice(assertion.Total),
			Actual:   catalog.FormatPrice(total),
		}
	}
	return nil
}

func assertItemCategory(c *catalog.Catalog, assertion Assertion) error {
	item, ok := c.Items.FindByID(assertion.ID)
	if !ok {
		return &AssertionError{
			Type:     AssertItemCategory,
			Expected: fmt.Sprintf("dish %d in %q", assertion.ID, assertion.Category),
			Actual:   "dish not found",
		}
	}
	if item.Category != assertion.Category {
		return &AssertionError{
			Type:     AssertItemCategory,
			Expected: fmt.Sprintf("dish %d in %q", assertion.ID, assertion.Category),
			Actual:   fmt.Sprintf("in %q", item.Category),
		}
	}
	return nil
}

// matchArgs reports whether actual holds every expected key with an equal
// value. Integers compare by value whatever their Go type: YAML decodes int
// while the catalog reports int64.
func matchArgs(actual, expected map[string]interface{}) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(actual, expected interface{}) bool {
	a, aInt := toInt(actual)
	e, eInt := toInt(expected)
	if aInt && eInt {
		return a == e
	}
	return reflect.DeepEqual(actual, expected)
}

// AssertionContext gives state assertions access to the catalog after the
// last step.
type AssertionContext struct {
	Catalog *catalog.Catalog
}

var stateChecks = map[string]func(*catalog.Catalog, Assertion) error{
	AssertItemCount:         assertItemCount,
	AssertCategoryCount:     assertCategoryCount,
	AssertOptionCount:       assertOptionCount,
	AssertSelectionQuantity: assertSelectionQuantity,
	AssertSelectionTotal:    assertSelectionTotal,
	AssertItemCategory:      assertItemCategory,
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. Trace assertions read result; state assertions need actx.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for i, assertion := range assertions {
		if err := evaluate(i, result, assertion, actx); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(i int, result *Result, assertion Assertion, actx *AssertionContext) error {
	switch assertion.Type {
	case AssertTraceContains:
		return assertTraceContains(result.Trace, assertion)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, assertion)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, assertion)
	}

	check, ok := stateChecks[assertion.Type]
	switch {
	case !ok:
		return fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
	case actx == nil || actx.Catalog == nil:
		return fmt.Errorf("assertion[%d]: %s requires catalog context", i, assertion.Type)
	}
	return check(actx.Catalog, assertion)
}
