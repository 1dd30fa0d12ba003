package errors

import (
	"strings"
	"unicode"
)

// ValidateNamePattern validates a --skip-names substring.
//
// Patterns are matched literally, so the rules only guard against input that
// can never match a CMake target name:
//   - No empty patterns (an empty substring would match every target)
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNamePattern(pattern string) error {
	if pattern == "" {
		return New(ErrCodeInvalidInput, "name pattern cannot be empty")
	}

	if len(pattern) > 256 {
		return New(ErrCodeInvalidInput, "name pattern too long (max 256 characters)")
	}

	for _, r := range pattern {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name pattern %q contains control characters", pattern)
		}
	}
	return nil
}

// ValidateThreshold validates the frequent-dependency threshold.
// Zero disables annotation; negative values are rejected.
func ValidateThreshold(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "frequent-deps threshold must be >= 0, got %d", n)
	}
	return nil
}

// ValidatePath validates an input or output file path.
//
// Validation rules:
//   - Path cannot be empty or blank
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
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
