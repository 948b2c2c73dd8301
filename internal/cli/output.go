package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/store"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // ran, but the answer is no (rejected mutation, duplicate user)
	ExitCommandError = 2 // could not run: bad flags, config, database
)

// Codes carried in error output. Scripts match on these rather than on
// message text.
const (
	ErrCodeGeneric   = "E001"
	ErrCodeConfig    = "E002"
	ErrCodeDatabase  = "E003"
	ErrCodeArgument  = "E004"
	ErrCodeConflict  = "E005"
	ErrCodeViolation = "E010"
)

// ErrorCode picks the output code for err from the store and guard error
// taxonomy. Config failures are not detectable here and fall back to
// ErrCodeGeneric.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, guard.ErrImmutableRecord):
		return ErrCodeViolation
	case errors.Is(err, store.ErrConflict):
		return ErrCodeConflict
	case errors.Is(err, store.ErrUnknownField),
		errors.Is(err, store.ErrReadOnlyField),
		errors.Is(err, store.ErrNoChanges),
		errors.Is(err, store.ErrInvalidValue),
		errors.Is(err, store.ErrInvalidReference):
		return ErrCodeArgument
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeDatabase
	default:
		return ErrCodeGeneric
	}
}

// ExitError carries the process exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain, or
// ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope for --format json.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes data. Text mode prints it with fmt, so result types with
// a String method control their own rendering.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes an error report. Details are shown in text mode only with
// --verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
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

// Fail reports err under code and returns it wrapped with the exit code,
// ready to be returned from RunE. An empty code is derived with ErrorCode.
func (f *OutputFormatter) Fail(exit int, code, message string, err error) error {
	if code == "" {
		code = ErrorCode(err)
	}
	exitErr := WrapExitError(exit, message, err)
	_ = f.Error(code, exitErr.Error(), nil)
	return exitErr
}

// VerboseLog writes a diagnostic line to ErrWriter when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
