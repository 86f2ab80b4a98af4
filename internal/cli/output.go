package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/carta/internal/catalog"
	"github.com/roach88/carta/internal/menu"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // operation rejected, scenario or validation failed
	ExitCommandError = 2 // bad arguments, unusable database or seed
)

// Error codes reported in the JSON envelope and the text error line.
const (
	ErrCodeGeneric          = "E001" // Generic/unknown error
	ErrCodeArgs             = "E002" // Malformed command argument
	ErrCodeStorage          = "E003" // Database could not be opened
	ErrCodeSeed             = "E004" // Seed file unreadable or invalid
	ErrCodeNotFound         = "E005" // Unknown dish, category or option
	ErrCodeValidation       = "E101" // Form failed validation
	ErrCodeDuplicate        = "E102" // Category name already exists
	ErrCodeInvalidPartySize = "E103" // Party size outside 2/4/6/8
	ErrCodeUnknownCategory  = "E104" // Dish references a missing category
	ErrCodeCategoryInUse    = "E105" // Category still has dishes
	ErrCodeQuery            = "E106" // Query expression does not compile
	ErrCodeScenario         = "E201" // One or more scenarios failed
)

// ExitError carries the process exit code a command failed with. The
// message has usually been reported through the formatter already, so main
// only exits.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError wrapping err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode reports the exit code for err: the ExitError code when there
// is one in the chain, ExitFailure otherwise.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as a JSON envelope.
// Diagnostics go to ErrWriter, or to Writer when ErrWriter is nil.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command. Status is "ok" or
// "error".
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (f *OutputFormatter) isJSON() bool { return f.Format == "json" }

// Success reports data. Text mode prints text, or data itself when text is
// empty.
func (f *OutputFormatter) Success(data interface{}, text string) error {
	switch {
	case f.isJSON():
		return f.encode(CLIResponse{Status: "ok", Data: data})
	case text != "":
		_, err := fmt.Fprintln(f.Writer, text)
		return err
	default:
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
}

// Error reports an error code and message. Details are always part of the
// JSON envelope and printed in text mode only when verbose.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.isJSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Reject reports an operation the catalog refused. Validation problems are
// attached as details. The returned error exits with ExitFailure.
func (f *OutputFormatter) Reject(err error) error {
	var details interface{}
	var ve *menu.ValidationError
	if errors.As(err, &ve) {
		details = ve.Problems
	}
	_ = f.Error(errorCode(err), err.Error(), details)
	return WrapExitError(ExitFailure, "operation rejected", err)
}

// Fail reports a problem with the command itself (arguments, database,
// seed). The returned error exits with ExitCommandError.
func (f *OutputFormatter) Fail(code, message string, err error) error {
	text := message
	if err != nil {
		text += ": " + err.Error()
	}
	_ = f.Error(code, text, nil)
	return WrapExitError(ExitCommandError, message, err)
}

func (f *OutputFormatter) encode(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// VerboseLog prints a diagnostic line when verbose. It never touches Writer
// when ErrWriter is set, so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// errorCode maps catalog errors to CLI error codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, menu.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, menu.ErrDuplicateCategory):
		return ErrCodeDuplicate
	case errors.Is(err, menu.ErrInvalidPartySize):
		return ErrCodeInvalidPartySize
	case errors.Is(err, catalog.ErrUnknownCategory):
		return ErrCodeUnknownCategory
	case errors.Is(err, catalog.ErrCategoryInUse):
		return ErrCodeCategoryInUse
	case menu.IsValidation(err):
		return ErrCodeValidation
	default:
		return ErrCodeGeneric
	}
}
