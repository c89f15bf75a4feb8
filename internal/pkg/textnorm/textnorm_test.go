package textnorm

import (
	"testing"
)

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Étui Câble", "Etui Cable"},
		{"Lámpara LED", "Lampara LED"},
		{"Süß", "Suß"},
		{"no accents", "no accents"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := RemoveDiacritics(tt.input)
			if result != tt.expected {
				t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFoldTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Lowercases", "Mini LED Lamp", "mini led lamp"},
		{"Collapses whitespace", "  Mini   LED\tLamp ", "mini led lamp"},
		{"Strips diacritics", "Étui Câble USB", "etui cable usb"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FoldTitle(tt.input)
			if result != tt.expected {
				t.Errorf("FoldTitle(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
