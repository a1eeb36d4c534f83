package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/research-assistant/pkg/cache"
	"github.com/mikeboe/research-assistant/pkg/clients"
	"github.com/mikeboe/research-assistant/pkg/config"
	"github.com/mikeboe/research-assistant/pkg/database"
	"github.com/mikeboe/research-assistant/pkg/export"
	"github.com/mikeboe/research-assistant/pkg/research"
	"github.com/mikeboe/research-assistant/pkg/search"
)

var (
	query       string
	llmProvider string
	searchName  string
	exportAll   bool
)

func main() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	slog.SetDefault(slog.New(handler))

	// Missing .env is fine as long as env vars are set
	_ = godotenv.Load()

	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "research-assistant",
		Short: "A conversational research assistant",
		Long: `research-assistant answers research queries by searching the web in a
bounded loop, scoring sources for quality and summarizing the findings
with an LLM. Run it with --query for a single answer, or without for an
interactive session with follow-up commands.`,
		Run: func(cmd *cobra.Command, args []string) {
			if llmProvider != "" {
				cfg.LLMProvider = llmProvider
			}
			if searchName != "" {
				cfg.SearchProvider = searchName
			}

			interactive := !cmd.Flags().Changed("query")
			session, err := newSession(context.Background(), cfg)
			if err != nil {
				slog.Error("Failed to initialize", "error", err)
				os.Exit(1)
			}
			defer session.Close()

			if interactive {
				session.Interactive()
				return
			}

			if strings.TrimSpace(query) == "" {
				slog.Error("--query flag provided but empty")
				os.Exit(1)
			}

			result := session.Research(context.Background(), query)
			session.PrintResult(result)
			if exportAll {
				session.ExportAll(query, result)
			}
			if result.Status != research.StatusSufficient {
				os.Exit(1)
			}
		},
	}

	rootCmd.Flags().StringVarP(&query, "query", "q", "", "The research query")
	rootCmd.Flags().StringVarP(&llmProvider, "provider", "p", "", "LLM provider (googleai, openai, anthropic, ollama)")
	rootCmd.Flags().StringVarP(&searchName, "search", "s", "", "Search provider (duckduckgo, arxiv)")
	rootCmd.Flags().BoolVar(&exportAll, "export", false, "Export the result to markdown, JSON and text files")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

// session holds everything a CLI run needs. The database and the
// findings cache are optional; without them research still works, only
// history and cache seeding are unavailable.
type session struct {
	cfg      *config.Config
	provider search.Provider
	model    research.LanguageModel
	cache    research.FindingsCache
	db       *database.PostgresDB
	exporter *export.Exporter

	lastQuery  string
	lastResult *research.FinalResult
}

func newSession(ctx context.Context, cfg *config.Config) (*session, error) {
	provider, err := search.Select(cfg.SearchProvider, cfg.SearchMaxResults)
	if err != nil {
		return nil, err
	}

	llm, err := clients.New(ctx, clients.Options{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		APIKey:   cfg.LLMApiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init LLM client: %w", err)
	}

	s := &session{
		cfg:      cfg,
		provider: provider,
		model:    clients.NewGenerator(llm),
		exporter: export.NewExporter(cfg.ExportDir),
	}

	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Warn("Database unavailable, history disabled", "error", err)
		} else if err := db.InitSchema(ctx); err != nil {
			slog.Warn("Schema init failed, history disabled", "error", err)
			db.Close()
		} else {
			s.db = db
			if embedder, err := cache.NewGoogleEmbedder(ctx, cfg.EmbeddingModel, cfg.LLMApiKey); err == nil {
				if c, err := cache.New(ctx, db, embedder, cfg.CacheTable); err == nil {
					s.cache = c
				}
			}
		}
	}

	return s, nil
}

func (s *session) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// Research runs one full research loop and records it in history.
func (s *session) Research(ctx context.Context, q string) research.FinalResult {
	var prior []research.Finding
	if s.lastResult != nil && s.lastQuery == q {
		prior = s.lastResult.Findings
	}

	engine := research.NewEngine(s.cfg.ResearchConfig(), s.provider, s.model, s.cache)
	fmt.Println("Researching...")
	result := engine.Run(ctx, q, prior)

	s.lastQuery = q
	s.lastResult = &result
	s.recordRun(ctx, q, result)
	return result
}

func (s *session) PrintResult(result research.FinalResult) {
	switch result.Status {
	case research.StatusRejected:
		fmt.Printf("\nQuery rejected: %s\n", result.RejectionReason)
		return
	case research.StatusAborted:
		fmt.Printf("\nNot enough evidence was found (%d findings). Try rephrasing the query.\n", len(result.Findings))
		return
	case research.StatusFailed:
		fmt.Printf("\nResearch failed. %d findings were collected before the failure; use 'sources' to inspect them.\n", len(result.Findings))
		return
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 60))
	fmt.Println("EXECUTIVE SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println(result.Summary.ExecutiveSummary)
	fmt.Println("\nType 'insights' for key insights, 'sources' for sources, 'help' for all commands.")
}

func (s *session) Interactive() {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("research-assistant interactive mode. Type 'help' for commands.")

	for {
		fmt.Print("\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		switch strings.ToLower(cmd) {
		case "quit", "exit":
			return

		case "help":
			s.printHelp()

		case "insights":
			s.printInsights()

		case "sources":
			s.printSources()

		case "more":
			if s.lastResult == nil {
				fmt.Println("No research yet. Enter a query first.")
				continue
			}
			result := s.Research(context.Background(), s.lastQuery)
			s.PrintResult(result)

		case "export":
			if s.lastResult == nil {
				fmt.Println("No research to export yet.")
				continue
			}
			format := strings.TrimSpace(rest)
			s.export(s.lastQuery, *s.lastResult, format)

		case "history":
			s.printHistory(context.Background())

		default:
			// Anything that is not a command is a new research query.
			result := s.Research(context.Background(), line)
			s.PrintResult(result)
		}
	}
}

func (s *session) printHelp() {
	fmt.Println(`Commands:
  <query>          Research a new query
  more             Run another research pass on the last query, keeping its findings
  insights         Show the key insights of the last result
  sources          Show the ranked sources of the last result
  export [format]  Export the last result (markdown, json, text; default all)
  history          Show recent research runs
  quit             Exit`)
}

func (s *session) printInsights() {
	if s.lastResult == nil || s.lastResult.Summary == nil {
		fmt.Println("No summary available.")
		return
	}
	for i, insight := range s.lastResult.Summary.KeyInsights {
		fmt.Printf("%d. %s\n", i+1, insight)
	}
}

func (s *session) printSources() {
	if s.lastResult == nil || len(s.lastResult.Findings) == 0 {
		fmt.Println("No sources available.")
		return
	}
	for _, f := range research.RankFindings(s.lastResult.Findings) {
		fmt.Printf("[%.2f %-6s] %s\n           %s\n", f.QualityScore, f.QualityTier, f.Title, f.URL)
	}
}

func (s *session) export(q string, result research.FinalResult, format string) {
	var (
		path string
		err  error
	)
	switch format {
	case "markdown", "md":
		path, err = s.exporter.Markdown(q, result)
	case "json":
		path, err = s.exporter.JSON(q, result)
	case "text", "txt":
		path, err = s.exporter.Text(q, result)
	case "":
		s.ExportAll(q, result)
		return
	default:
		fmt.Printf("Unknown format %q (markdown, json, text)\n", format)
		return
	}
	if err != nil {
		fmt.Printf("Export failed: %v\n", err)
		return
	}
	fmt.Printf("Exported to %s\n", path)
}

func (s *session) ExportAll(q string, result research.FinalResult) {
	paths, err := s.exporter.All(q, result)
	if err != nil {
		fmt.Printf("Export failed: %v\n", err)
		return
	}
	for format, path := range paths {
		fmt.Printf("Exported %s to %s\n", format, path)
	}
}

func (s *session) recordRun(ctx context.Context, q string, result research.FinalResult) {
	if s.db == nil {
		return
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		slog.Warn("Failed to marshal run result", "error", err)
		return
	}
	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO research_runs (query, status, result)
		VALUES ($1, $2, $3)
	`, q, string(result.Status), resultJSON)
	if err != nil {
		slog.Warn("Failed to record run", "error", err)
	}
}

func (s *session) printHistory(ctx context.Context) {
	if s.db == nil {
		fmt.Println("History requires DATABASE_URL to be configured.")
		return
	}
	rows, err := s.db.Pool.Query(ctx, `
		SELECT query, status, created_at
		FROM research_runs
		ORDER BY created_at DESC
		LIMIT 10
	`)
	if err != nil {
		fmt.Printf("Failed to load history: %v\n", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q, status string
			createdAt time.Time
		)
		if err := rows.Scan(&q, &status, &createdAt); err != nil {
			continue
		}
		fmt.Printf("[%s] %-10s %s\n", createdAt.Format("2006-01-02 15:04"), status, q)
	}
}
