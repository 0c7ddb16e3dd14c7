package errors

import (
	"slices"
	"strings"
	"unicode"
)

// Limits on user input.
const (
	MaxMoveSequence = 4096
	MaxWorkers      = 1024
)

// ValidateEncoding checks that name is one of known.
func ValidateEncoding(name string, known []string) error {
	if name == "" {
		return New(ErrCodeInvalidEncoding, "encoding name cannot be empty")
	}
	if !slices.Contains(known, name) {
		return New(ErrCodeInvalidEncoding, "unknown encoding %q (known: %s)", name, strings.Join(known, ", "))
	}
	return nil
}

// ValidateMoveSequence rejects input that cannot be a move sequence before it
// reaches the parser: overlong strings and control characters other than
// whitespace.
func ValidateMoveSequence(s string) error {
	if len(s) > MaxMoveSequence {
		return New(ErrCodeInvalidMove, "move sequence too long (max %d characters)", MaxMoveSequence)
	}
	for _, r := range s {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return New(ErrCodeInvalidMove, "move sequence contains invalid control characters")
		}
	}
	return nil
}

// ValidateWorkers checks a build worker count.
func ValidateWorkers(n int) error {
	if n < 1 || n > MaxWorkers {
		return New(ErrCodeInvalidInput, "workers must be between 1 and %d, got %d", MaxWorkers, n)
	}
	return nil
}

// ValidatePath validates a user-supplied output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
