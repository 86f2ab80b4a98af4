package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/carta/internal/seed"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  []SeedSummary     `json:"files,omitempty"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// SeedSummary counts the contents of a valid seed file.
type SeedSummary struct {
	File       string `json:"file"`
	Categories int    `json:"categories"`
	Items      int    `json:"items"`
	Options    int    `json:"options"`
}

// ValidationIssue is one problem found in a seed file.
type ValidationIssue struct {
	File    string `json:"file"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <seed.cue>...",
		Short: "Validate CUE seed files without touching the database",
		Long: `Validate CUE seed files against the seed schema.

Checks syntax, field types and ranges, unique dish and option ids, that
every dish names a declared category, and that group options use a party
size of 2, 4, 6 or 8.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	result := ValidationResult{Valid: true}
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		data, err := seed.LoadFile(path)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, issueFromError(path, err))
			continue
		}

		options := 0
		for _, list := range data.Options {
			options += len(list)
		}
		result.Files = append(result.Files, SeedSummary{
			File:       path,
			Categories: len(data.Categories),
			Items:      len(data.Items),
			Options:    options,
		})
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

func issueFromError(path string, err error) ValidationIssue {
	issue := ValidationIssue{File: path, Message: err.Error()}
	var le *seed.LoadError
	if errors.As(err, &le) {
		issue.Field = le.Field
		issue.Message = le.Message
		if le.Pos.IsValid() {
			issue.Line = le.Pos.Line()
			issue.Column = le.Pos.Column()
		}
	}
	return issue
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result, "")
	}

	for _, f := range result.Files {
		fmt.Fprintf(formatter.Writer, "✓ %s: %d categories, %d dishes, %d group options\n",
			f.File, f.Categories, f.Items, f.Options)
	}
	return nil
}

// outputValidationErrors outputs every problem and returns an ExitFailure error.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	first := result.Errors[0]
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeSeed,
				Message: first.Message,
			},
		}
		if err := formatter.encode(response); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range result.Errors {
		loc := issue.File
		if issue.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", issue.File, issue.Line, issue.Column)
		}
		fmt.Fprintln(formatter.Writer, loc)
		if issue.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Field, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s\n\n", issue.Message)
		}
	}
	return failure
}
