// Package errors provides structured error types for texman.
//
// Every component of the workspace pipeline reports failures as an [*Error]
// carrying a machine-readable [Code]. This lets the CLI and the preview server
// map failures to exit statuses and HTTP statuses without string matching:
//
//   - NOT_FOUND: a workspace root, document, config file or directory is absent
//   - NOT_VALID: a config file exists but has the wrong shape
//   - IO_ERROR: a filesystem failure not explained by the above
//   - COMPILE_FAILED: the typesetting engine did not produce an artifact
//   - INTERNAL: a packaging defect, such as a broken embedded template
//
// # Usage
//
//	err := errors.NotFound(path, "workspace root not found")
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // keep searching
//	}
//
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write %s", name)
package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNotValid     Code = "NOT_VALID"

	// Resource errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeAlreadyExists Code = "ALREADY_EXISTS"
	ErrCodeNotEmpty      Code = "NOT_EMPTY"

	// Filesystem errors
	ErrCodeIO Code = "IO_ERROR"

	// Build errors
	ErrCodeCompile Code = "COMPILE_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Path    string // Filesystem path involved (optional)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// NotFound creates a NOT_FOUND error carrying the attempted path.
func NotFound(path, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
	}
}

// NotValid creates a NOT_VALID error carrying the offending path and a
// parser diagnostic.
func NotValid(path string, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeNotValid,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
		Cause:   cause,
	}
}

// FromFS classifies a filesystem error for path. Missing files become
// NOT_FOUND, anything else IO_ERROR. A nil err yields nil.
func FromFS(err error, path, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return NotFound(path, format, args...)
	}
	return &Error{
		Code:    ErrCodeIO,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
		Cause:   err,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a one-line, user-friendly message for the error.
// For *Error types the code prefix is dropped; the path and cause are kept
// since they identify what failed.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, UserMessage(e.Cause))
	}
	return msg
}
