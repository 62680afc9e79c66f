// Package errors provides structured error types for the wardley toolchain.
//
// This package defines error codes and types that enable:
//   - Distinguishable failures for every stage of the notation compiler
//   - Line-accurate reporting so editors can point at the offending statement
//   - Machine-readable error codes for the CLI and HTTP API
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The core taxonomy mirrors the stages that can fail:
//   - LEXICAL_ERROR: a line does not match any known statement shape
//   - NUMERIC_ERROR: a field expected to be a number does not parse
//   - REFERENCE_ERROR: a name is unresolved or declared twice
//   - OVERLAY_FORMAT_ERROR: meta overlay text is not a valid record list
//
// Ambient codes (INVALID_*, INTERNAL_ERROR) cover option validation.
//
// # Usage
//
//	err := errors.AtLine(errors.ErrCodeNumeric, 3, "invalid maturity %q", field)
//	if errors.Is(err, errors.ErrCodeNumeric) {
//	    line := errors.LineOf(err) // 3
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeOverlayFormat, jsonErr, "decode overlay")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Notation and overlay errors
	ErrCodeLexical       Code = "LEXICAL_ERROR"
	ErrCodeNumeric       Code = "NUMERIC_ERROR"
	ErrCodeReference     Code = "REFERENCE_ERROR"
	ErrCodeOverlayFormat Code = "OVERLAY_FORMAT_ERROR"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"
	ErrCodeInvalidCanvas Code = "INVALID_CANVAS"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, an optional source line and an
// optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Line    int    // 1-based source line, 0 when not tied to a line
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, e.Message)
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

// AtLine creates a new Error tied to a 1-based source line.
func AtLine(code Code, line int, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
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

// LineOf returns the source line recorded on the first *Error in the chain,
// or 0 if there is none.
func LineOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Line
	}
	return 0
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix but with
// the line number when one is known.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Line > 0 {
			return fmt.Sprintf("line %d: %s", e.Line, e.Message)
		}
		return e.Message
	}
	return err.Error()
}
