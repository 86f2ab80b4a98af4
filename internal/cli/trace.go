package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/carta/internal/harness"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Op string
}

// TraceResult is the trace command's report.
type TraceResult struct {
	Scenario string               `json:"scenario"`
	Pass     bool                 `json:"pass"`
	Timeline []harness.TraceEvent `json:"timeline"`
	Errors   []string             `json:"errors,omitempty"`
	Stats    TraceStats           `json:"stats"`
}

// TraceStats counts the events of a (possibly filtered) timeline.
// Rejected counts completions with any outcome other than ok.
type TraceStats struct {
	TotalEvents int `json:"total_events"`
	Invocations int `json:"invocations"`
	Completions int `json:"completions"`
	Rejected    int `json:"rejected"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <scenario.yaml>",
		Short: "Show the step timeline of a scenario",
		Long: `Run one scenario against a fresh in-memory menu and print its timeline:
every operation invoked, its arguments, and the outcome it completed with.

Examples:
  carta trace ./scenarios/category_guards.yaml
  carta trace ./scenarios/category_guards.yaml --op categories.delete -v
  carta trace ./scenarios/category_guards.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "only show this operation, e.g. items.add")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return formatter.Fail(ErrCodeArgs, "failed to load scenario", err)
	}

	run, err := harness.Run(scenario, harnessOptions(opts.Verbose)...)
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, "scenario execution failed", err)
	}

	timeline := buildTimeline(run.Trace, opts.Op)
	result := TraceResult{
		Scenario: scenario.Name,
		Pass:     run.Pass,
		Timeline: timeline,
		Errors:   run.Errors,
		Stats:    traceStats(timeline),
	}

	if opts.Format == "json" {
		return formatter.Success(result, "")
	}
	return outputTraceText(cmd.OutOrStdout(), result, opts.Verbose)
}

// buildTimeline filters trace events to the invocations of op and the
// completion that follows each. An empty op keeps every event.
func buildTimeline(events []harness.TraceEvent, op string) []harness.TraceEvent {
	timeline := []harness.TraceEvent{}
	keepNext := false
	for _, event := range events {
		switch event.Type {
		case harness.EventInvocation:
			keepNext = op == "" || event.Op == op
			if keepNext {
				timeline = append(timeline, event)
			}
		case harness.EventCompletion:
			if keepNext {
				timeline = append(timeline, event)
			}
			keepNext = false
		}
	}
	return timeline
}

func traceStats(timeline []harness.TraceEvent) TraceStats {
	stats := TraceStats{TotalEvents: len(timeline)}
	for _, event := range timeline {
		switch event.Type {
		case harness.EventInvocation:
			stats.Invocations++
		case harness.EventCompletion:
			stats.Completions++
			if event.Outcome != "ok" {
				stats.Rejected++
			}
		}
	}
	return stats
}

func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	fmt.Fprintf(w, "Trace for Scenario: %s\nStatus: %s\n\n=== Timeline ===\n", result.Scenario, passStatus(result.Pass))
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, event := range result.Timeline {
		label, name, detail, extra := "INV ", event.Op, "Args", event.Args
		if event.Type == harness.EventCompletion {
			label, name, detail, extra = "COMP", event.Outcome, "Result", event.Result
		}
		fmt.Fprintf(w, "  [%d] %s %s\n", event.Seq, label, name)
		if verbose && len(extra) > 0 {
			fmt.Fprintf(w, "       %s: %s\n", detail, formatArgs(extra))
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprint(w, "\n=== Failures ===\n")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	st := result.Stats
	fmt.Fprintf(w, "\n=== Stats ===\n  Total Events: %d\n  Invocations:  %d\n  Completions:  %d\n  Rejected:     %d\n",
		st.TotalEvents, st.Invocations, st.Completions, st.Rejected)
	return nil
}

// formatArgs renders a step's arguments or result as {k=v, ...} with keys
// sorted.
func formatArgs(args map[string]interface{}) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + formatValue(args[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case map[string]interface{}:
		return formatArgs(val)
	case []interface{}:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = formatValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func passStatus(pass bool) string {
	if pass {
		return "Passed"
	}
	return "Failed"
}
