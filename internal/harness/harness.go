package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/carta/internal/catalog"
	"github.com/roach88/carta/internal/kv"
	"github.com/roach88/carta/internal/menu"
	"github.com/roach88/carta/internal/seed"
	"github.com/roach88/carta/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with deterministic identifiers and trace sequence numbers.
type Harness struct {
	catalog *catalog.Catalog
	seq     *testutil.Counter
	logger  *slog.Logger
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger for step events. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory namespace. Dish and category ids
// count up from 1 and generated sharing option ids are "group-<size>-<n>",
// so identical scenarios produce identical traces and snapshots.
//
// Execution flow:
// 1. Open a catalog over an empty in-memory backend with the scenario seed
// 2. Execute steps, checking expect clauses
// 3. Evaluate assertions
// 4. Return result with pass/fail, trace, errors and final state
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		seq:    testutil.NewCounter(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	seeds, err := scenarioSeeds(scenario.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed: %w", err)
	}

	storage := kv.New(kv.NewMemory(), kv.WithLogger(h.logger))
	optionIDs := testutil.NewOptionIDs()
	h.catalog = catalog.Open(storage,
		catalog.WithLogger(h.logger),
		catalog.WithStoreOptions(
			menu.WithIDSource(testutil.NewCounter()),
			menu.WithSeeds(seeds),
			menu.WithOptionIDs(func(size menu.PartySize) string { return optionIDs.Generate(int(size)) }),
		),
	)

	result := NewResult()
	if err := h.executeSteps(scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{Catalog: h.catalog}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.Fail(errMsg)
	}

	result.State = h.catalog.Export()
	return result, nil
}

func scenarioSeeds(name string) (*seed.Data, error) {
	switch name {
	case "", SeedBuiltin:
		return seed.Builtin(), nil
	case SeedEmpty:
		return seed.Empty(), nil
	default:
		return seed.LoadFile(name)
	}
}

// executeSteps runs every step and records an invocation and a completion
// per step. Mismatched expect clauses are recorded as result errors;
// malformed arguments abort the run.
func (h *Harness) executeSteps(steps []Step, result *Result) error {
	for i, step := range steps {
		op, ok := operations[step.Op]
		if !ok {
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}

		result.invoked(step.Op, step.Args, h.seq.Next())

		out, err := op(h.catalog, step.Args)
		var argErr *ArgError
		if errors.As(err, &argErr) {
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		outcome := outcomeOf(err)

		result.completed(outcome, out, h.seq.Next())

		expected := &ExpectClause{Outcome: OutcomeOK}
		if step.Expect != nil {
			expected = step.Expect
		}
		if outcome != expected.Outcome {
			msg := fmt.Sprintf("step %d (%s): expected outcome %s, got %s", i, step.Op, expected.Outcome, outcome)
			if err != nil {
				msg += ": " + err.Error()
			}
			result.Fail(msg)
		} else if !matchArgs(out, expected.Result) {
			result.Fail(fmt.Sprintf("step %d (%s): expected result %v, got %v", i, step.Op, expected.Result, out))
		}

		h.logger.Info("scenario step completed",
			"step", i,
			"op", step.Op,
			"outcome", outcome,
		)
	}
	return nil
}
