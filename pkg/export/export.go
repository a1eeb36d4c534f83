// Package export writes completed research results to files. Persistence
// of run state lives in the database; these files are for humans.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mikeboe/research-assistant/pkg/research"
)

// Exporter writes reports into a single output directory, created on
// first use.
type Exporter struct {
	OutputDir string
}

func NewExporter(outputDir string) *Exporter {
	if outputDir == "" {
		outputDir = "./research_outputs"
	}
	return &Exporter{OutputDir: outputDir}
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// filename builds "research_<slug>_<timestamp>.<ext>" from the query.
func (e *Exporter) filename(query, ext string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(query), "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > 40 {
		slug = slug[:40]
	}
	if slug == "" {
		slug = "report"
	}
	return fmt.Sprintf("research_%s_%d.%s", slug, time.Now().Unix(), ext)
}

func (e *Exporter) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(e.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Markdown renders the result as a Markdown report.
func (e *Exporter) Markdown(query string, result research.FinalResult) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research Report\n\n**Query:** %s\n\n", query)
	fmt.Fprintf(&b, "**Status:** %s\n\n", result.Status)

	if result.Summary != nil {
		b.WriteString("## Executive Summary\n\n")
		b.WriteString(result.Summary.ExecutiveSummary)
		b.WriteString("\n\n## Key Insights\n\n")
		for _, insight := range result.Summary.KeyInsights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Sources\n\n")
	for _, f := range sourcesOf(result) {
		fmt.Fprintf(&b, "- [%s](%s) (score %.2f)\n", f.Title, f.URL, f.QualityScore)
	}
	fmt.Fprintf(&b, "\n---\nGenerated: %s\n", time.Now().Format("2006-01-02 15:04:05"))

	return e.write(e.filename(query, "md"), []byte(b.String()))
}

// JSON writes the full structured result.
func (e *Exporter) JSON(query string, result research.FinalResult) (string, error) {
	payload := struct {
		Query       string               `json:"query"`
		GeneratedAt time.Time            `json:"generated_at"`
		Result      research.FinalResult `json:"result"`
	}{Query: query, GeneratedAt: time.Now(), Result: result}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return e.write(e.filename(query, "json"), data)
}

// Text renders a plain-text report.
func (e *Exporter) Text(query string, result research.FinalResult) (string, error) {
	divider := strings.Repeat("=", 60)
	var b strings.Builder
	fmt.Fprintf(&b, "RESEARCH REPORT\n%s\n\nQUERY: %s\nSTATUS: %s\n\n", divider, query, result.Status)

	if result.Summary != nil {
		fmt.Fprintf(&b, "%s\nEXECUTIVE SUMMARY\n%s\n\n%s\n\n", divider, divider, result.Summary.ExecutiveSummary)
		fmt.Fprintf(&b, "%s\nKEY INSIGHTS\n%s\n\n", divider, divider)
		for i, insight := range result.Summary.KeyInsights {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, insight)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\nSOURCES\n%s\n\n", divider, divider)
	for _, f := range sourcesOf(result) {
		fmt.Fprintf(&b, "  * %s\n    URL: %s\n\n", f.Title, f.URL)
	}
	fmt.Fprintf(&b, "%s\nGenerated: %s\n", divider, time.Now().Format("2006-01-02 15:04:05"))

	return e.write(e.filename(query, "txt"), []byte(b.String()))
}

// All exports every supported format and returns format -> path.
func (e *Exporter) All(query string, result research.FinalResult) (map[string]string, error) {
	paths := make(map[string]string, 3)
	md, err := e.Markdown(query, result)
	if err != nil {
		return nil, err
	}
	paths["markdown"] = md

	js, err := e.JSON(query, result)
	if err != nil {
		return nil, err
	}
	paths["json"] = js

	txt, err := e.Text(query, result)
	if err != nil {
		return nil, err
	}
	paths["text"] = txt
	return paths, nil
}

// sourcesOf prefers the ranked summary sources, falling back to raw
// findings for failed or aborted runs.
func sourcesOf(result research.FinalResult) []research.Finding {
	if result.Summary != nil && len(result.Summary.Sources) > 0 {
		return result.Summary.Sources
	}
	return research.RankFindings(result.Findings)
}
