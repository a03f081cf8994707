package domain

import "testing"

func TestCanonicalHostname(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already canonical", "example.com", "example.com"},
		{"uppercase", "EXAMPLE.COM", "example.com"},
		{"mixed case", "ExAmPle.Com", "example.com"},
		{"trailing dot", "example.com.", "example.com"},
		{"multiple trailing dots", "example.com...", "example.com"},
		{"surrounding whitespace", "  example.com  ", "example.com"},
		{"whitespace and dot", " Example.Com. ", "example.com"},
		{"empty", "", ""},
		{"only dots", "...", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalHostname(tt.input)
			if got != tt.expected {
				t.Errorf("CanonicalHostname(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
