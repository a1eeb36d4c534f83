package research

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	scriptRe     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
)

// Validator checks raw user queries against the configured guardrails.
// It is a pure function of its input and configuration.
type Validator struct {
	cfg Config
}

func NewValidator(cfg Config) *Validator {
	return &Validator{cfg: cfg.normalize()}
}

// Validate returns the trimmed, whitespace-collapsed query, or a
// *RejectionError describing why the input was refused.
func (v *Validator) Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &RejectionError{
			Kind:    RejectionEmpty,
			Message: "please provide a research topic or question",
		}
	}

	if len(raw) > v.cfg.MaxQueryLength {
		return "", &RejectionError{
			Kind:    RejectionTooLong,
			Message: fmt.Sprintf("query is too long, limit is %d characters", v.cfg.MaxQueryLength),
		}
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range v.cfg.SensitiveTopicPatterns {
		if pattern != "" && strings.Contains(lower, pattern) {
			return "", &RejectionError{
				Kind:    RejectionSensitive,
				Message: "this topic cannot be researched due to safety guidelines",
			}
		}
	}

	return whitespaceRe.ReplaceAllString(trimmed, " "), nil
}

// SanitizeOutput strips script blocks and HTML tags from model output
// before it is displayed or exported.
func SanitizeOutput(text string) string {
	text = scriptRe.ReplaceAllString(text, "")
	return htmlTagRe.ReplaceAllString(text, "")
}
