package internal

import (
	"testing"

	"github.com/google/uuid"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"germanic", "germanic"},
		{"Indo-European_2024", "Indo-European_2024"},
		{"my data/set", "my_data_set"},
		{"ɓantu", "_antu"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.input); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Error("Expected distinct run IDs")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("Run ID %q is not a UUID: %v", a, err)
	}
}
