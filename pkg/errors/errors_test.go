package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeCompile, cause, "engine failed")

	if err.Code != ErrCodeCompile {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeCompile)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestNotFoundCarriesPath(t *testing.T) {
	err := NotFound("/ws/docs/report", "document not found")

	if err.Path != "/ws/docs/report" {
		t.Errorf("Path = %q, want %q", err.Path, "/ws/docs/report")
	}
	want := "NOT_FOUND: document not found: /ws/docs/report"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNotValid(t *testing.T) {
	err := NotValid("/ws/workspace.toml", errors.New("line 3: expected '='"), "malformed config")

	want := "NOT_VALID: malformed config: /ws/workspace.toml: line 3: expected '='"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFromFS(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"not exist", fs.ErrNotExist, ErrCodeNotFound},
		{"wrapped not exist", fmt.Errorf("open: %w", fs.ErrNotExist), ErrCodeNotFound},
		{"permission", fs.ErrPermission, ErrCodeIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromFS(tt.err, "/some/path", "read config")
			if got := GetCode(err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}

	if FromFS(nil, "/x", "noop") != nil {
		t.Error("FromFS(nil) should return nil")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNotFound,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeCompile, New(ErrCodeIO, "inner"), "outer"),
			code:     ErrCodeCompile,
			expected: true,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("loading: %w", NotFound("/x", "missing")),
			code:     ErrCodeNotFound,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeNotValid, "test"),
			expected: ErrCodeNotValid,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "with path",
			err:      NotFound("/ws", "workspace root not found"),
			expected: "workspace root not found: /ws",
		},
		{
			name:     "nested",
			err:      Wrap(ErrCodeCompile, NotFound("/tmp/main.pdf", "artifact missing"), "compile failed"),
			expected: "compile failed: artifact missing: /tmp/main.pdf",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
