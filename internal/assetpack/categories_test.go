package assetpack

import "testing"

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name     string
		pack     string
		expected string
	}{
		{"exact category", "water", "water"},
		{"prefixed category", "water-calm", "water"},
		{"effects prefix", "effects-fireworks", "effects"},
		{"unknown prefix", "marble-hall", ""},
		{"no prefix", "sculptures", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferCategory(tt.pack); got != tt.expected {
				t.Errorf("Expected InferCategory(%s) = %q, got %q", tt.pack, tt.expected, got)
			}
		})
	}
}
