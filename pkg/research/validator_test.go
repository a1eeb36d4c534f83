package research

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	v := NewValidator(DefaultConfig())

	tests := []struct {
		name     string
		input    string
		want     string
		wantKind RejectionKind
	}{
		{"Valid simple", "quantum computing", "quantum computing", ""},
		{"Valid trims whitespace", "  quantum computing  ", "quantum computing", ""},
		{"Valid collapses whitespace", "quantum\t\n  computing   basics", "quantum computing basics", ""},
		{"Valid at max length", strings.Repeat("a", 500), strings.Repeat("a", 500), ""},
		{"Empty", "", "", RejectionEmpty},
		{"Whitespace only", "   \t\n ", "", RejectionEmpty},
		{"Too long", strings.Repeat("a", 501), "", RejectionTooLong},
		{"Sensitive topic", "how to hack a bank", "", RejectionSensitive},
		{"Sensitive mixed case", "How To HACK my neighbor's wifi", "", RejectionSensitive},
		{"Sensitive embedded", "research on illegal drugs trade", "", RejectionSensitive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Validate(%q) returned error %v, want none", tt.input, err)
				}
				if got != tt.want {
					t.Errorf("Validate(%q) = %q, want %q", tt.input, got, tt.want)
				}
				return
			}

			var rej *RejectionError
			if !errors.As(err, &rej) {
				t.Fatalf("Validate(%q) error = %v, want *RejectionError", tt.input, err)
			}
			if rej.Kind != tt.wantKind {
				t.Errorf("Validate(%q) kind = %q, want %q", tt.input, rej.Kind, tt.wantKind)
			}
			if rej.Message == "" {
				t.Error("rejection message must not be empty")
			}
		})
	}
}

func TestValidateCustomPatterns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SensitiveTopicPatterns = []string{"forbidden subject"}
	v := NewValidator(cfg)

	if _, err := v.Validate("the Forbidden Subject explained"); err == nil {
		t.Error("expected rejection for custom pattern")
	}
	// The default denylist no longer applies once overridden.
	if _, err := v.Validate("how to hack"); err != nil {
		t.Errorf("unexpected rejection: %v", err)
	}
}

func TestSanitizeOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain text untouched", "key insight here", "key insight here"},
		{"Strips script block", "before<script>alert(1)</script>after", "beforeafter"},
		{"Strips multiline script", "a<script type=\"text/javascript\">\nx\n</script>b", "ab"},
		{"Strips tags", "<b>bold</b> and <i>italic</i>", "bold and italic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeOutput(tt.input); got != tt.want {
				t.Errorf("SanitizeOutput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
