package research

import (
	"fmt"
	"strings"
)

const summarySystemPrompt = `You are a summary agent specialized in creating executive summaries.

Guidelines:
- Start with a brief overview (2-3 sentences)
- Highlight 3-5 key insights as bullet points
- Include relevant statistics or data points
- Note any areas of uncertainty or conflicting information
- Always cite sources for specific claims
- Only use information from the provided research findings

Format your output with these sections:
EXECUTIVE SUMMARY
(2-3 paragraphs)
KEY INSIGHTS
(bullet points)
`

// buildSummaryPrompt renders all findings into the summarization prompt.
// No truncation is applied here; the model's own context limits govern.
func buildSummaryPrompt(query string, findings []Finding) string {
	var b strings.Builder
	b.WriteString(summarySystemPrompt)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Original research query: %q\n\nResearch findings:\n", query)
	for i, f := range findings {
		fmt.Fprintf(&b, "\nFinding %d:\n- Title: %s\n- URL: %s\n- Content: %s\n", i+1, f.Title, f.URL, f.Snippet)
	}
	return b.String()
}
