package research

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	executiveHeadingRe = regexp.MustCompile(`(?i)executive summary`)
	insightsHeadingRe  = regexp.MustCompile(`(?i)key insights`)
)

// Summarizer turns accumulated findings into the terminal Summary via a
// single language model call.
type Summarizer struct {
	model LanguageModel
}

func NewSummarizer(model LanguageModel) *Summarizer {
	return &Summarizer{model: model}
}

// Summarize builds the prompt from every finding, invokes the model once
// and parses the sectioned response. A model failure or an empty response
// wraps ErrGenerationFailed; the caller keeps the findings either way.
func (s *Summarizer) Summarize(ctx context.Context, state *ResearchState) (*Summary, error) {
	prompt := buildSummaryPrompt(state.Query, state.Findings)

	content, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: model returned empty content", ErrGenerationFailed)
	}

	content = SanitizeOutput(content)
	executive, insights := parseSummarySections(content)

	return &Summary{
		ExecutiveSummary: executive,
		KeyInsights:      insights,
		Sources:          RankFindings(state.Findings),
	}, nil
}

// parseSummarySections extracts the EXECUTIVE SUMMARY and KEY INSIGHTS
// sections. Minor formatting deviation is tolerated; if the structure is
// missing entirely the whole response becomes the executive summary.
func parseSummarySections(content string) (string, []string) {
	// Heading offsets must come from the original string; case folding can
	// change byte lengths for some runes.
	sumLoc := executiveHeadingRe.FindStringIndex(content)
	insLoc := insightsHeadingRe.FindStringIndex(content)

	if sumLoc == nil && insLoc == nil {
		return strings.TrimSpace(content), nil
	}

	var executive string
	if sumLoc != nil {
		end := len(content)
		if insLoc != nil && insLoc[0] > sumLoc[0] {
			end = insLoc[0]
		}
		executive = content[sumLoc[1]:end]
	} else {
		executive = content[:insLoc[0]]
	}
	executive = strings.Trim(executive, "#*: \n")

	var insights []string
	if insLoc != nil {
		block := content[insLoc[1]:]
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") &&
				!strings.HasPrefix(line, "•") && !startsWithDigit(line) {
				continue
			}
			insight := strings.TrimLeft(line, "-*•0123456789. ")
			if insight != "" {
				insights = append(insights, insight)
			}
		}
	}

	if executive == "" {
		executive = strings.TrimSpace(content)
	}
	return executive, insights
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// RankFindings orders findings by descending quality score, preserving
// discovery order among equals.
func RankFindings(findings []Finding) []Finding {
	ranked := make([]Finding, len(findings))
	copy(ranked, findings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].QualityScore > ranked[j].QualityScore
	})
	return ranked
}
