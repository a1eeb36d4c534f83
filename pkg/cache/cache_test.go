package cache

import "testing"

func TestIsValidCacheTable(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Valid standard", "findings_cache", true},
		{"Valid with underscore prefix", "_cache", true},
		{"Valid with numbers", "cache2024", true},
		{"Valid short", "c", true},
		{"Valid max length", "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz0123456789_", true}, // 63 chars
		{"Invalid start with number", "1cache", false},
		{"Invalid uppercase start", "Cache", false},
		{"Invalid hyphen", "findings-cache", false},
		{"Invalid space", "findings cache", false},
		{"Invalid SQL injection", "x; DROP TABLE findings_cache", false},
		{"Invalid empty", "", false},
		{"Invalid too long", "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz0123456789__", false}, // 64 chars
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidCacheTable(tt.input); got != tt.expected {
				t.Errorf("isValidCacheTable(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
