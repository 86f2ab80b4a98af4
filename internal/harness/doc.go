// Package harness runs scripted carta sessions ("scenarios") against a
// fresh in-memory namespace and checks the outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	seed: builtin            # builtin (default), empty, or a CUE seed file
//	steps:
//	  - op: items.add
//	    args: { name: Flan, category: Postres, price: "4.50" }
//	    expect:
//	      outcome: ok
//	      result: { id: 9 }
//	  - op: categories.delete
//	    args: { name: Postres }
//	    expect: { outcome: category_in_use }
//	assertions:
//	  - type: item_count
//	    category: Postres
//	    count: 1
//	  - type: trace_order
//	    ops: [items.add, categories.delete]
//
// A step without expect must succeed. Outcomes other than "ok" name the
// error kind: not_found, validation, duplicate_category,
// invalid_party_size, unknown_category, category_in_use.
//
// # Assertion Types
//
//   - trace_contains, trace_order, trace_count: check the step trace
//   - item_count, category_count, option_count: count dishes (optionally
//     per category), categories, or sharing options of a party size
//   - selection_quantity, selection_total: check the customer selection
//   - item_category: check which category a dish is in
//
// # Deterministic Testing
//
// Dish and category ids come from testutil.Counter and sharing
// option ids from testutil.OptionIDs, so a scenario always produces the
// same trace and final snapshot. RunWithGolden compares both against
// testdata/golden/<name>.golden.
package harness
