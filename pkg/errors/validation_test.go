package errors

import (
	"math"
	"testing"
)

func TestValidateElementID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "kettle", false},
		{"valid with underscore", "cup_of_tea", false},
		{"valid flow key", "flow_text_a_b", false},
		{"valid with spaces inside", "Cup of Tea", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"leading space", " foo", true},
		{"trailing space", "foo ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElementID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateElementID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateElementID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateCanvas(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		wantErr       bool
	}{
		{"typical", 500, 600, false},
		{"fractional", 0.5, 0.5, false},

		{"zero width", 0, 600, true},
		{"zero height", 500, 0, true},
		{"negative", -1, 600, true},
		{"nan", math.NaN(), 600, true},
		{"inf", 500, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCanvas(tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCanvas(%v, %v) error = %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCanvas) {
				t.Errorf("ValidateCanvas code = %v, want %v", GetCode(err), ErrCodeInvalidCanvas)
			}
		})
	}
}

func TestValidateCoordinate(t *testing.T) {
	if err := ValidateCoordinate("x", -30); err != nil {
		t.Errorf("negative coordinate should be valid: %v", err)
	}
	if err := ValidateCoordinate("x", math.NaN()); err == nil {
		t.Error("NaN coordinate should fail")
	}
	if err := ValidateCoordinate("y", math.Inf(-1)); err == nil {
		t.Error("infinite coordinate should fail")
	}
}
