package errors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "basic error without underlying",
			err:      &Error{Code: ExitCodeGeneral, Message: "test error"},
			expected: "test error",
		},
		{
			name:     "error with underlying",
			err:      &Error{Code: ExitCodeClipboard, Message: "clipboard error", Underlying: errors.New("xclip not found")},
			expected: "clipboard error: xclip not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewWithError(ExitCodeParse, "test error", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("errors.Is(%v, underlying) = false, want true", err)
	}
}

func TestNewWithSuggestion(t *testing.T) {
	err := NewWithSuggestion(ExitCodeValidation, "invalid input", "Check the documentation for valid values")

	if err.Code != ExitCodeValidation {
		t.Errorf("Code = %d, want %d", err.Code, ExitCodeValidation)
	}
	if err.Suggestion != "Check the documentation for valid values" {
		t.Errorf("Suggestion = %q, want %q", err.Suggestion, "Check the documentation for valid values")
	}
}

func TestWrap(t *testing.T) {
	underlying := errors.New("original error")
	err := Wrap(underlying, "wrapped message")

	if err.Error() != "wrapped message: original error" {
		t.Errorf("Error() = %q, want %q", err.Error(), "wrapped message: original error")
	}
	if err.Code != ExitCodeGeneral {
		t.Errorf("Code = %d, want %d", err.Code, ExitCodeGeneral)
	}

	if Wrap(nil, "message") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapPreservesCode(t *testing.T) {
	inner := NewWithSuggestion(ExitCodeConfig, "bad preset", "Use clipdata config presets list")
	err := Wrap(fmt.Errorf("loading: %w", inner), "outer error")

	if err.Code != ExitCodeConfig {
		t.Errorf("Code = %d, want %d", err.Code, ExitCodeConfig)
	}
	if err.Message != "outer error: bad preset" {
		t.Errorf("Message = %q, want %q", err.Message, "outer error: bad preset")
	}
	if err.Suggestion == "" {
		t.Error("Suggestion was dropped")
	}
}

func TestWrapWithCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"plain error takes code", errors.New("boom"), ExitCodeParse},
		{"deadline becomes timeout", fmt.Errorf("read: %w", context.DeadlineExceeded), ExitCodeTimeout},
		{"cancel becomes cancellation", context.Canceled, ExitCodeCancellation},
		{"existing code wins", New(ExitCodeFileOperation, "disk"), ExitCodeFileOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapWithCode(tt.err, ExitCodeParse, "parse")
			if got.Code != tt.want {
				t.Errorf("Code = %d, want %d", got.Code, tt.want)
			}
		})
	}

	if WrapWithCode(nil, ExitCodeParse, "parse") != nil {
		t.Error("WrapWithCode(nil) should return nil")
	}
}

func TestIs(t *testing.T) {
	err1 := New(ExitCodeConfig, "error 1")
	err2 := New(ExitCodeConfig, "error 2")
	err3 := New(ExitCodeGeneral, "error 3")

	if !Is(err1, err2) {
		t.Error("Is() should return true for same exit code")
	}

	if Is(err1, err3) {
		t.Error("Is() should return false for different exit codes")
	}

	if Is(err1, errors.New("plain error")) {
		t.Error("Is() should return false for plain error")
	}
}

func TestIsExitCode(t *testing.T) {
	err := ClipboardError(ErrMsgClipboardRead, errors.New("exit status 1"))

	if !IsExitCode(err, ExitCodeClipboard) {
		t.Error("IsExitCode() should return true for matching code")
	}

	if IsExitCode(err, ExitCodeConfig) {
		t.Error("IsExitCode() should return false for non-matching code")
	}

	if IsExitCode(nil, ExitCodeGeneral) {
		t.Error("IsExitCode() should return false for nil error")
	}

	if IsExitCode(fmt.Errorf("cmd: %w", err), ExitCodeClipboard) == false {
		t.Error("IsExitCode() should see through fmt.Errorf wrapping")
	}
}

func TestHandleReturn(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	orig := Stderr
	Stderr = &buf
	defer func() { Stderr = orig }()

	if code := HandleReturn(nil); code != ExitCodeSuccess {
		t.Errorf("HandleReturn(nil) = %d, want %d", code, ExitCodeSuccess)
	}

	err := ParseError("clipboard", errors.New("bare quote in field"))
	if code := HandleReturn(err); code != ExitCodeParse {
		t.Errorf("HandleReturn() = %d, want %d", code, ExitCodeParse)
	}

	out := buf.String()
	if !strings.Contains(out, "Error: Failed to parse tabular data from clipboard: bare quote in field") {
		t.Errorf("missing error line in output:\n%s", out)
	}
	if !strings.Contains(out, "Suggestion: Set the delimiter explicitly") {
		t.Errorf("missing suggestion in output:\n%s", out)
	}

	buf.Reset()
	if code := HandleReturn(fmt.Errorf("wait: %w", context.DeadlineExceeded)); code != ExitCodeTimeout {
		t.Errorf("HandleReturn(deadline) = %d, want %d", code, ExitCodeTimeout)
	}
}

func TestHandleQuietReturn(t *testing.T) {
	if code := HandleQuietReturn(nil); code != ExitCodeSuccess {
		t.Errorf("HandleQuietReturn(nil) = %d, want %d", code, ExitCodeSuccess)
	}
	if code := HandleQuietReturn(HistoryError(errors.New("locked"))); code != ExitCodeHistory {
		t.Errorf("HandleQuietReturn() = %d, want %d", code, ExitCodeHistory)
	}
}

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		name  string
		fn    func() *Error
		check func(*Error) bool
	}{
		{
			name:  "ClipboardError",
			fn:    func() *Error { return ClipboardError(ErrMsgClipboardWrite, errors.New("no helper")) },
			check: func(e *Error) bool { return e.Code == ExitCodeClipboard && e.Suggestion != "" },
		},
		{
			name:  "ClipboardError on timeout",
			fn:    func() *Error { return ClipboardError(ErrMsgClipboardRead, context.DeadlineExceeded) },
			check: func(e *Error) bool { return e.Code == ExitCodeTimeout && e.Suggestion == "" },
		},
		{
			name:  "EmptyClipboardError",
			fn:    func() *Error { return EmptyClipboardError() },
			check: func(e *Error) bool { return e.Code == ExitCodeParse },
		},
		{
			name:  "FileError",
			fn:    func() *Error { return FileError(ErrMsgReadFile, "data.csv", errors.New("no such file")) },
			check: func(e *Error) bool { return e.Code == ExitCodeFileOperation && strings.Contains(e.Message, "data.csv") },
		},
		{
			name:  "NotFoundErrorWithSuggestions",
			fn:    func() *Error { return NotFoundErrorWithSuggestions("preset 'exel'", []string{"excel"}) },
			check: func(e *Error) bool { return strings.Contains(e.Suggestion, "  - excel") },
		},
		{
			name:  "ConfigError",
			fn:    func() *Error { return ConfigError("invalid yaml") },
			check: func(e *Error) bool { return e.Code == ExitCodeConfig },
		},
		{
			name:  "ValidationError",
			fn:    func() *Error { return ValidationError("missing required field") },
			check: func(e *Error) bool { return e.Code == ExitCodeValidation },
		},
		{
			name:  "TimeoutError",
			fn:    func() *Error { return TimeoutError("clipboard read") },
			check: func(e *Error) bool { return e.Code == ExitCodeTimeout },
		},
		{
			name:  "CancelledError",
			fn:    func() *Error { return CancelledError("user cancelled") },
			check: func(e *Error) bool { return e.Code == ExitCodeCancellation },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if !tt.check(err) {
				t.Errorf("%s() returned unexpected error %+v", tt.name, err)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	if CommandError("copy", nil) != nil {
		t.Error("CommandError(nil) should return nil")
	}
	base := errors.New("boom")
	if err := CommandError("copy", base); !errors.Is(err, base) || err.Error() != "copy: boom" {
		t.Errorf("CommandError() = %v", err)
	}
}
