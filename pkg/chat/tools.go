package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/mikeboe/research-assistant/pkg/database"
	"github.com/mikeboe/research-assistant/pkg/research"
)

// FindingsToolset exposes completed research to the chat agent: semantic
// search over cached findings plus lookups against the runs table.
type FindingsToolset struct {
	DB       *database.PostgresDB
	Findings research.FindingsCache
}

func NewFindingsToolset(db *database.PostgresDB, findings research.FindingsCache) *FindingsToolset {
	return &FindingsToolset{
		DB:       db,
		Findings: findings,
	}
}

func (t *FindingsToolset) Name() string {
	return "findings_tools"
}

func (t *FindingsToolset) Tools(ctx agent.ReadonlyContext) ([]tool.Tool, error) {
	searchTool, err := functiontool.New[SearchFindingsArgs, SearchFindingsResp](
		functiontool.Config{
			Name:        "search_findings",
			Description: "Search findings collected by past research runs using semantic search.",
		},
		t.searchFindingsTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search tool: %w", err)
	}

	listTool, err := functiontool.New[ListRunsArgs, ListRunsResp](
		functiontool.Config{
			Name:        "list_runs",
			Description: "List recent research runs with their queries and statuses.",
		},
		t.listRunsTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create list_runs tool: %w", err)
	}

	summaryTool, err := functiontool.New[RunSummaryArgs, RunSummaryResp](
		functiontool.Config{
			Name:        "get_run_summary",
			Description: "Fetch the executive summary, key insights and sources of a completed research run by its ID.",
		},
		t.runSummaryTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create get_run_summary tool: %w", err)
	}

	return []tool.Tool{searchTool, listTool, summaryTool}, nil
}

// --- Tool Implementations ---

type SearchFindingsArgs struct {
	Query string `json:"query" description:"The search query"`
	Limit int    `json:"limit,omitempty" description:"Number of findings to return (default 5)"`
}

type SearchFindingsResp struct {
	Results string `json:"results"`
}

// Wrapper for ADK tool interface
func (t *FindingsToolset) searchFindingsTool(ctx tool.Context, args SearchFindingsArgs) (SearchFindingsResp, error) {
	return t.SearchFindings(ctx, args)
}

// Public method using standard context
func (t *FindingsToolset) SearchFindings(ctx context.Context, args SearchFindingsArgs) (SearchFindingsResp, error) {
	if args.Limit == 0 {
		args.Limit = 5
	}
	if t.Findings == nil {
		return SearchFindingsResp{Results: "The findings cache is not available."}, nil
	}

	slog.Info("Search findings", "query", args.Query, "limit", args.Limit)

	findings, err := t.Findings.Similar(ctx, args.Query, args.Limit)
	if err != nil {
		return SearchFindingsResp{}, fmt.Errorf("failed to search findings: %w", err)
	}

	var formatted []string
	for _, f := range findings {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("[Source]: %s\n[Title]: %s\n[Content]: %s", f.URL, f.Title, f.Snippet))
		sb.WriteString(fmt.Sprintf("\n[Quality]: %s (%.2f)", f.QualityTier, f.QualityScore))
		formatted = append(formatted, sb.String())
	}
	if len(formatted) == 0 {
		return SearchFindingsResp{Results: "No findings matched the query."}, nil
	}

	return SearchFindingsResp{Results: strings.Join(formatted, "\n\n")}, nil
}

type ListRunsArgs struct {
	Limit int `json:"limit,omitempty" description:"Number of runs to return (default 10)"`
}

type ListRunsResp struct {
	Runs string `json:"runs"`
}

// Wrapper for ADK tool interface
func (t *FindingsToolset) listRunsTool(ctx tool.Context, args ListRunsArgs) (ListRunsResp, error) {
	return t.ListRuns(ctx, args)
}

// Public method using standard context
func (t *FindingsToolset) ListRuns(ctx context.Context, args ListRunsArgs) (ListRunsResp, error) {
	if args.Limit == 0 {
		args.Limit = 10
	}

	rows, err := t.DB.Pool.Query(ctx,
		`SELECT id, query, status, created_at FROM research_runs ORDER BY created_at DESC LIMIT $1`,
		args.Limit)
	if err != nil {
		return ListRunsResp{}, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var (
			id        uuid.UUID
			query     string
			status    string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &query, &status, &createdAt); err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s (status: %s, started: %s)", id, query, status, createdAt.Format("2006-01-02 15:04")))
	}
	if len(lines) == 0 {
		return ListRunsResp{Runs: "No research runs found."}, nil
	}

	return ListRunsResp{Runs: strings.Join(lines, "\n")}, nil
}

type RunSummaryArgs struct {
	RunID string `json:"run_id" description:"The UUID of the research run"`
}

type RunSummaryResp struct {
	Summary string `json:"summary"`
}

// Wrapper for ADK tool interface
func (t *FindingsToolset) runSummaryTool(ctx tool.Context, args RunSummaryArgs) (RunSummaryResp, error) {
	return t.RunSummary(ctx, args)
}

// Public method using standard context
func (t *FindingsToolset) RunSummary(ctx context.Context, args RunSummaryArgs) (RunSummaryResp, error) {
	id, err := uuid.Parse(args.RunID)
	if err != nil {
		return RunSummaryResp{}, fmt.Errorf("invalid run id: %w", err)
	}

	var resultJSON []byte
	err = t.DB.Pool.QueryRow(ctx,
		`SELECT result FROM research_runs WHERE id = $1`, id).Scan(&resultJSON)
	if err != nil {
		return RunSummaryResp{}, fmt.Errorf("failed to fetch run: %w", err)
	}
	if len(resultJSON) == 0 {
		return RunSummaryResp{Summary: "The run has no result yet."}, nil
	}

	var result research.FinalResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return RunSummaryResp{}, fmt.Errorf("failed to decode run result: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status: %s\n", result.Status))
	if result.Summary != nil {
		sb.WriteString("\nExecutive Summary:\n")
		sb.WriteString(result.Summary.ExecutiveSummary)
		sb.WriteString("\n\nKey Insights:\n")
		for _, insight := range result.Summary.KeyInsights {
			sb.WriteString("- " + insight + "\n")
		}
		sb.WriteString("\nSources:\n")
		for _, f := range result.Summary.Sources {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", f.Title, f.URL))
		}
	} else if len(result.Findings) > 0 {
		sb.WriteString("\nNo summary was generated. Raw findings:\n")
		for _, f := range result.Findings {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", f.Title, f.URL))
		}
	}

	return RunSummaryResp{Summary: sb.String()}, nil
}
