package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRUT(t *testing.T) {
	tests := []struct {
		name  string
		rut   string
		valid bool
	}{
		{"valid with dots and dash", "12.345.678-5", true},
		{"valid bare digits", "123456785", true},
		{"valid with K check digit", "20.347.878-K", true},
		{"wrong check digit", "12.345.678-9", false},
		{"too short", "1234-5", false},
		{"letters in body", "12.34a.678-5", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateRUT(tt.rut))
		})
	}
}

func TestFormatRUT(t *testing.T) {
	assert.Equal(t, "12.345.678-5", FormatRUT("123456785"))
	assert.Equal(t, "12.345.678-5", FormatRUT("12.345.678-5"))
	assert.Equal(t, "1.234.567-8", FormatRUT("12345678"))
	// Too short to reformat
	assert.Equal(t, "123-4", FormatRUT("123-4"))
}
