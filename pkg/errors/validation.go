package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateDocumentKey validates a document key for safety and correctness.
// A key names a directory directly under docs/, so anything that could escape
// that directory is rejected:
//   - No empty keys
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No hidden names (leading dot)
//   - Maximum length of 128 characters
func ValidateDocumentKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "document key cannot be empty")
	}

	if len(key) > 128 {
		return New(ErrCodeInvalidInput, "document key too long (max 128 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "document key contains invalid control characters")
		}
	}

	if strings.ContainsAny(key, "/\\") {
		return New(ErrCodeInvalidInput, "document key cannot contain path separators: %q", key)
	}

	if strings.HasPrefix(key, ".") {
		return New(ErrCodeInvalidInput, "document key cannot start with a dot: %q", key)
	}

	return nil
}

// ValidateIncludePath validates a file name referenced from document metadata
// (a prelude include or a section). Names are relative to a fixed directory,
// so absolute paths and traversal out of that directory are rejected.
// Subdirectories ("chapters/intro.tex") are allowed.
func ValidateIncludePath(path string) error {
	if path == "" {
		return New(ErrCodeNotValid, "include path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeNotValid, "include path contains invalid characters: %q", path)
		}
	}

	if strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return New(ErrCodeNotValid, "include path must be relative: %q", path)
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeNotValid, "include path cannot contain traversal sequences (..): %q", path)
		}
	}

	return nil
}

// workspaceNameRegex matches directory names accepted by `texman init`.
var workspaceNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateWorkspaceName validates the optional name given to `texman init`.
func ValidateWorkspaceName(name string) error {
	if !workspaceNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid workspace name: %q", name)
	}
	return nil
}
