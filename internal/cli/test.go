package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/carta/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool
	Filter string
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult summarises a scenario run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r *TestResult) record(s ScenarioResult) {
	r.Scenarios = append(r.Scenarios, s)
	r.Total++
	if s.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run menu scenarios",
		Long: `Run YAML scenarios against a fresh in-memory menu.

Each scenario seeds a namespace, performs its steps, then checks the
expected outcomes, the trace and final state assertions. When
golden/<scenario>.golden exists next to the scenario, the trace and final
state must also match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  carta test ./scenarios
  carta test ./scenarios --filter "group-*"
  carta test ./scenarios --update
  carta test ./scenarios --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name matches this glob")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return formatter.Fail(ErrCodeArgs, "scenarios directory not found: "+dir, nil)
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return formatter.Fail(ErrCodeArgs, "failed to find scenarios", err)
	}

	r := &scenarioRunner{opts: opts, out: cmd.OutOrStdout(), text: opts.Format != "json"}
	result := TestResult{Scenarios: []ScenarioResult{}}
	if len(files) == 0 && r.text {
		fmt.Fprintln(r.out, "No scenarios found.")
		return nil
	}
	for _, file := range files {
		result.record(r.run(file))
	}

	var failure error
	if result.Failed > 0 {
		failure = NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	if !r.text {
		response := CLIResponse{Status: "ok", Data: result}
		if failure != nil {
			response.Status = "error"
			response.Error = &CLIError{Code: ErrCodeScenario, Message: failure.Error()}
		}
		if err := formatter.encode(response); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintf(r.out, "\nTest Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if failure == nil {
		fmt.Fprintln(r.out, "✓ All scenarios passed")
	}
	return failure
}

// findScenarioFiles walks dir for .yaml/.yml files, skipping golden
// directories. A non-empty filter is matched against the file name without
// its extension.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir() && d.Name() == "golden":
			return filepath.SkipDir
		case d.IsDir():
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			ok, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// scenarioRunner runs scenario files and reports each one as it finishes.
type scenarioRunner struct {
	opts *TestOptions
	out  io.Writer
	text bool
}

func (r *scenarioRunner) run(file string) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return r.fail(filepath.Base(file), "failed to load scenario: "+err.Error())
	}

	result, err := harness.Run(scenario, harnessOptions(r.opts.Verbose)...)
	if err != nil {
		return r.fail(scenario.Name, "execution failed: "+err.Error())
	}

	golden := goldenFilePath(file)
	if r.opts.Update {
		if err := writeGolden(golden, scenario.Name, result); err != nil {
			return r.fail(scenario.Name, "failed to update golden file: "+err.Error())
		}
		return r.pass(scenario.Name, " (golden updated)")
	}

	if err := checkGolden(golden, scenario.Name, result); err != nil {
		return r.fail(scenario.Name, err.Error())
	}
	if !result.Pass {
		return r.fail(scenario.Name, result.Errors...)
	}
	return r.pass(scenario.Name, "")
}

func (r *scenarioRunner) fail(name string, errs ...string) ScenarioResult {
	if r.text {
		fmt.Fprintf(r.out, "✗ %s\n", name)
		for _, e := range errs {
			fmt.Fprintf(r.out, "  %s\n", e)
		}
	}
	return ScenarioResult{Name: name, Errors: errs}
}

func (r *scenarioRunner) pass(name, note string) ScenarioResult {
	if r.text {
		fmt.Fprintf(r.out, "✓ %s%s\n", name, note)
	}
	return ScenarioResult{Name: name, Pass: true}
}

// harnessOptions routes step logs to the default logger in verbose mode.
func harnessOptions(verbose bool) []harness.Option {
	if !verbose {
		return nil
	}
	return []harness.Option{harness.WithLogger(slog.Default())}
}

// goldenFilePath maps dir/name.yaml to dir/golden/name.golden.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

func writeGolden(path, scenario string, result *harness.Result) error {
	data, err := harness.MarshalGolden(scenario, result)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// checkGolden compares result with the golden file at path. A missing
// golden file is not an error.
func checkGolden(path, scenario string, result *harness.Result) error {
	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("golden comparison failed: %w", err)
	}
	got, err := harness.MarshalGolden(scenario, result)
	if err != nil {
		return fmt.Errorf("golden comparison failed: %w", err)
	}
	if !bytes.Equal(want, got) {
		return errors.New("trace does not match golden file (run with --update to regenerate)")
	}
	return nil
}
