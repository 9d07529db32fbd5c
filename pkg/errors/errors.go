package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"clipdata/pkg/logger"

	"github.com/fatih/color"
)

type ExitCode int

const (
	ExitCodeSuccess       ExitCode = 0
	ExitCodeGeneral       ExitCode = 1
	ExitCodeConfig        ExitCode = 2
	ExitCodeClipboard     ExitCode = 3
	ExitCodeParse         ExitCode = 4
	ExitCodeValidation    ExitCode = 6
	ExitCodeFileOperation ExitCode = 7
	ExitCodeCancellation  ExitCode = 8
	ExitCodeTimeout       ExitCode = 9
	ExitCodeHistory       ExitCode = 11
)

// Standardized error messages for consistent user-facing errors
const (
	ErrMsgClipboardRead  = "Failed to read the clipboard"
	ErrMsgClipboardWrite = "Failed to write the clipboard"
	ErrMsgParseTable     = "Failed to parse tabular data"
	ErrMsgWriteTable     = "Failed to format tabular data"
	ErrMsgReadFile       = "Failed to read input file"
	ErrMsgWriteFile      = "Failed to write output file"
	ErrMsgHistoryFailed  = "History operation failed"
	ErrMsgInvalidInput   = "Invalid input provided"
)

// Stderr is where HandleReturn prints. Tests replace it.
var Stderr io.Writer = os.Stderr

type Error struct {
	Code       ExitCode
	Message    string
	Underlying error
	Suggestion string
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func New(code ExitCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func NewWithError(code ExitCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

func NewWithSuggestion(code ExitCode, message string, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

func NewWithAll(code ExitCode, message string, err error, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Suggestion: suggestion,
	}
}

func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var wrapped *Error
	if stderrors.As(err, &wrapped) {
		return &Error{
			Code:       wrapped.Code,
			Message:    message + ": " + wrapped.Message,
			Underlying: wrapped.Underlying,
			Suggestion: wrapped.Suggestion,
		}
	}

	return &Error{
		Code:       codeFor(err, ExitCodeGeneral),
		Message:    message,
		Underlying: err,
	}
}

// WrapWithCode wraps err with message under code. The code of an *Error
// already in the chain wins, as do context cancellation and deadlines.
func WrapWithCode(err error, code ExitCode, message string) *Error {
	if err == nil {
		return nil
	}

	var wrapped *Error
	if stderrors.As(err, &wrapped) {
		return &Error{
			Code:       wrapped.Code,
			Message:    message + ": " + wrapped.Message,
			Underlying: wrapped.Underlying,
			Suggestion: wrapped.Suggestion,
		}
	}

	return &Error{
		Code:       codeFor(err, code),
		Message:    message,
		Underlying: err,
	}
}

func codeFor(err error, fallback ExitCode) ExitCode {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return ExitCodeTimeout
	case stderrors.Is(err, context.Canceled):
		return ExitCodeCancellation
	default:
		return fallback
	}
}

func Is(err error, target error) bool {
	if err == nil || target == nil {
		return false
	}

	var e, t *Error
	if stderrors.As(err, &e) && stderrors.As(target, &t) {
		return e.Code == t.Code
	}

	return stderrors.Is(err, target)
}

func IsExitCode(err error, code ExitCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// HandleReturn logs err, prints it to Stderr with any suggestion, and
// returns the exit code for it. The caller exits.
func HandleReturn(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}

	exitCode := codeFor(err, ExitCodeGeneral)
	message := err.Error()
	var suggestion string

	var e *Error
	if stderrors.As(err, &e) {
		exitCode = e.Code
		message = e.Error()
		suggestion = e.Suggestion

		if e.Underlying != nil {
			logger.Debug().Err(e.Underlying).Int("exit_code", int(exitCode)).Msg(e.Message)
		}
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	red.Fprint(Stderr, "Error: ")
	fmt.Fprintln(Stderr, message)

	if suggestion != "" {
		yellow.Fprint(Stderr, "Suggestion: ")
		lines := strings.Split(strings.TrimRight(suggestion, "\n"), "\n")
		for i, line := range lines {
			switch {
			case i == 0:
				fmt.Fprintln(Stderr, line)
			case strings.HasPrefix(line, "  -"):
				cyan.Fprintln(Stderr, line)
			default:
				fmt.Fprintln(Stderr, "            "+line)
			}
		}
	}

	return exitCode
}

// HandleQuietReturn returns the exit code for err without printing it.
func HandleQuietReturn(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	logger.Error().Err(err).Msg("operation failed")
	return codeFor(err, ExitCodeGeneral)
}

func ConfigError(message string) *Error {
	return &Error{
		Code:       ExitCodeConfig,
		Message:    message,
		Suggestion: "Check your configuration file (clipdata config path) or the CLIPDATA_* environment variables.",
	}
}

func ValidationError(message string) *Error {
	return &Error{
		Code:    ExitCodeValidation,
		Message: message,
	}
}

// ClipboardError wraps a failure of the OS clipboard helper.
func ClipboardError(message string, err error) *Error {
	e := WrapWithCode(err, ExitCodeClipboard, message)
	if e != nil && e.Code == ExitCodeClipboard {
		e.Suggestion = "Make sure a clipboard helper is installed:\n" +
			"  - Linux/X11: xclip or xsel\n" +
			"  - Linux/Wayland: wl-clipboard\n" +
			"  - macOS and Windows need nothing extra"
	}
	return e
}

// ParseError wraps a parser failure on user data.
func ParseError(source string, err error) *Error {
	e := WrapWithCode(err, ExitCodeParse, fmt.Sprintf("%s from %s", ErrMsgParseTable, source))
	if e != nil && e.Code == ExitCodeParse {
		e.Suggestion = "Set the delimiter explicitly with --delim, or skip preamble lines with --skip."
	}
	return e
}

func EmptyClipboardError() *Error {
	return &Error{
		Code:       ExitCodeParse,
		Message:    "The clipboard does not contain any tabular data",
		Suggestion: "Copy a range of cells from a spreadsheet, or text with one row per line.",
	}
}

func FileError(message, path string, err error) *Error {
	return WrapWithCode(err, ExitCodeFileOperation, fmt.Sprintf("%s %s", message, path))
}

func HistoryError(err error) *Error {
	e := WrapWithCode(err, ExitCodeHistory, ErrMsgHistoryFailed)
	if e != nil && e.Code == ExitCodeHistory {
		e.Suggestion = "Disable history with --no-history, or remove the history database (clipdata history path)."
	}
	return e
}

func NotFoundError(resource string) *Error {
	return &Error{
		Code:    ExitCodeValidation,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NotFoundErrorWithSuggestions(resource string, suggestions []string) *Error {
	e := NotFoundError(resource)
	if len(suggestions) > 0 {
		e.Suggestion = "Did you mean:\n"
		for _, s := range suggestions {
			e.Suggestion += fmt.Sprintf("  - %s\n", s)
		}
	}
	return e
}

func TimeoutError(operation string) *Error {
	return &Error{
		Code:       ExitCodeTimeout,
		Message:    fmt.Sprintf("Operation timed out: %s", operation),
		Suggestion: "Try again with a longer timeout using --timeout flag.",
	}
}

func CancelledError(operation string) *Error {
	return &Error{
		Code:    ExitCodeCancellation,
		Message: fmt.Sprintf("Operation cancelled: %s", operation),
	}
}

// CommandError wraps errors from command handlers with consistent formatting.
// It preserves the original error chain for inspection while providing
// a user-friendly message.
func CommandError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", operation, err)
}
