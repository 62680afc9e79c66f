package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIDLength bounds identifiers accepted from CLI arguments and API bodies.
const maxIDLength = 256

// ValidateElementID validates an overlay key supplied by a caller.
//
// The rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No surrounding whitespace
//   - Maximum length of 256 characters
//
// Keys are otherwise free-form: flow and label keys such as
// "flow_text_a_b" are valid even though they name no element.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "element id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "element id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "element id contains invalid control characters")
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "element id has surrounding whitespace: %q", id)
	}

	return nil
}

// ValidateCanvas validates canvas dimensions.
// Both dimensions must be finite and strictly positive.
func ValidateCanvas(width, height float64) error {
	if math.IsNaN(width) || math.IsInf(width, 0) || width <= 0 {
		return New(ErrCodeInvalidCanvas, "canvas width must be a positive number, got %v", width)
	}
	if math.IsNaN(height) || math.IsInf(height, 0) || height <= 0 {
		return New(ErrCodeInvalidCanvas, "canvas height must be a positive number, got %v", height)
	}
	return nil
}

// ValidateCoordinate validates a pixel coordinate supplied by a caller.
// NaN and infinities cannot be serialized into overlay text.
func ValidateCoordinate(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number", name)
	}
	return nil
}
