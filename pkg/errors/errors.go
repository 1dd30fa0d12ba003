// Package errors provides structured error types for cmakegraph.
//
// Every failure that leaves the pipeline carries a [Code] so the CLI and the
// HTTP endpoint can report a distinct error kind:
//
//   - MALFORMED_DESCRIPTION: the input does not follow the DOT grammar
//   - UNKNOWN_NODE_REFERENCE: an edge names a node that is never declared
//   - UNRECOGNIZED_ATTRIBUTE_MAPPING: a node's shape maps to no known target
//     kind (recoverable, reported as a warning)
//   - MISSING_INPUT_FILE: an input file or file-API reply does not exist
//   - RENDERER_INVOCATION_FAILED: Graphviz could not render the emitted DOT
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedDescription, "line %d: unbalanced braces", line)
//	if errors.Is(err, errors.ErrCodeMalformedDescription) {
//	    // Handle parse error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMissingInputFile, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input description errors
	ErrCodeMalformedDescription  Code = "MALFORMED_DESCRIPTION"
	ErrCodeUnknownNodeReference  Code = "UNKNOWN_NODE_REFERENCE"
	ErrCodeUnrecognizedAttribute Code = "UNRECOGNIZED_ATTRIBUTE_MAPPING"

	// Option validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// File errors
	ErrCodeMissingInputFile Code = "MISSING_INPUT_FILE"

	// Rendering errors
	ErrCodeRendererFailed Code = "RENDERER_INVOCATION_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInputError reports whether err was caused by the caller's input rather
// than by the environment or a bug.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeMalformedDescription, ErrCodeUnknownNodeReference, ErrCodeInvalidInput:
		return true
	}
	return false
}
