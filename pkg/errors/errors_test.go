package errors

import (
	"errors"
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

func TestAtLine(t *testing.T) {
	err := AtLine(ErrCodeNumeric, 3, "invalid maturity %q", "abc")

	if err.Line != 3 {
		t.Errorf("Line = %d, want 3", err.Line)
	}

	expected := `NUMERIC_ERROR: line 3: invalid maturity "abc"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeOverlayFormat, cause, "decode overlay")

	if err.Code != ErrCodeOverlayFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeOverlayFormat)
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

	expected := "OVERLAY_FORMAT_ERROR: decode overlay: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
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
			err:      New(ErrCodeLexical, "test"),
			code:     ErrCodeLexical,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeLexical, "test"),
			code:     ErrCodeReference,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInternal, New(ErrCodeNumeric, "inner"), "outer"),
			code:     ErrCodeInternal,
			expected: true,
		},
		{
			name:     "fmt wrapped error",
			err:      wrapf(AtLine(ErrCodeReference, 2, "unknown")),
			code:     ErrCodeReference,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeLexical,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeLexical,
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
			err:      New(ErrCodeOverlayFormat, "test"),
			expected: ErrCodeOverlayFormat,
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

func TestLineOf(t *testing.T) {
	if got := LineOf(AtLine(ErrCodeLexical, 7, "bad")); got != 7 {
		t.Errorf("LineOf() = %d, want 7", got)
	}
	if got := LineOf(New(ErrCodeLexical, "bad")); got != 0 {
		t.Errorf("LineOf() = %d, want 0", got)
	}
	if got := LineOf(errors.New("plain")); got != 0 {
		t.Errorf("LineOf() = %d, want 0", got)
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
			name:     "Error with line",
			err:      AtLine(ErrCodeLexical, 4, "unknown statement"),
			expected: "line 4: unknown statement",
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

func wrapf(err error) error {
	return errors.Join(errors.New("context"), err)
}
