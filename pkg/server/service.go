// Package server exposes research runs over REST and MCP. Runs execute in
// background workers; clients poll run status and stream logs.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mikeboe/research-assistant/pkg/database"
	"github.com/mikeboe/research-assistant/pkg/research"
	"github.com/mikeboe/research-assistant/pkg/search"
)

type Service struct {
	DB       *database.PostgresDB
	Cfg      research.Config
	Provider search.Provider
	Model    research.LanguageModel
	Cache    research.FindingsCache
}

func NewService(db *database.PostgresDB, cfg research.Config, provider search.Provider, model research.LanguageModel, cache research.FindingsCache) *Service {
	return &Service{
		DB:       db,
		Cfg:      cfg,
		Provider: provider,
		Model:    model,
		Cache:    cache,
	}
}

// Run is a research run record. Status moves pending -> running -> one of
// the engine's terminal statuses (sufficient, aborted, failed, rejected).
type Run struct {
	ID        uuid.UUID       `json:"id"`
	ThreadID  *uuid.UUID      `json:"thread_id,omitempty"`
	Query     string          `json:"query"`
	Status    string          `json:"status"`
	State     json.RawMessage `json:"state,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type CreateRunRequest struct {
	Query    string     `json:"query"`
	ThreadID *uuid.UUID `json:"thread_id,omitempty"`
}

// CreateRun inserts a pending run and starts a background worker for it.
// Queries are validated by the engine inside the worker, so an
// unacceptable query still produces a run record, with status "rejected".
func (s *Service) CreateRun(ctx context.Context, req CreateRunRequest) (*Run, error) {
	runID := uuid.New()
	query := `
		INSERT INTO research_runs (id, thread_id, query, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, thread_id, query, status, created_at, updated_at
	`

	run := &Run{}
	err := s.DB.Pool.QueryRow(ctx, query, runID, req.ThreadID, req.Query).Scan(
		&run.ID, &run.ThreadID, &run.Query, &run.Status, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	go s.runWorker(run.ID, req.ThreadID, req.Query)

	return run, nil
}

func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `
		SELECT id, thread_id, query, status, state, result, created_at, updated_at
		FROM research_runs
		WHERE id = $1
	`
	run := &Run{}
	err := s.DB.Pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.ThreadID, &run.Query, &run.Status, &run.State, &run.Result, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (s *Service) ListRuns(ctx context.Context, threadID *uuid.UUID) ([]Run, error) {
	query := `
		SELECT id, thread_id, query, status, created_at, updated_at
		FROM research_runs
		WHERE ($1::uuid IS NULL OR thread_id = $1)
		ORDER BY created_at DESC
		LIMIT 50
	`
	rows, err := s.DB.Pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.ThreadID, &run.Query, &run.Status, &run.CreatedAt, &run.UpdatedAt); err != nil {
			slog.Error("failed to scan run row", "error", err)
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

type LogEntry struct {
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

func (s *Service) GetRunLogs(ctx context.Context, runID uuid.UUID) ([]LogEntry, error) {
	query := `
		SELECT id, timestamp, level, message, metadata
		FROM research_logs
		WHERE run_id = $1
		ORDER BY id ASC
	`
	rows, err := s.DB.Pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var l LogEntry
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message, &l.Metadata); err != nil {
			slog.Error("failed to scan log row", "error", err)
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (s *Service) runWorker(runID uuid.UUID, threadID *uuid.UUID, query string) {
	ctx := context.Background()

	_, _ = s.DB.Pool.Exec(ctx, "UPDATE research_runs SET status = 'running', updated_at = NOW() WHERE id = $1", runID)

	dbLogger := slog.New(NewDBLogHandler(s.DB, runID))

	prior := s.priorFindings(ctx, threadID, runID)
	if len(prior) > 0 {
		dbLogger.Info("continuing thread with prior findings", "count", len(prior))
	}

	engine := research.NewEngine(s.Cfg, s.Provider, s.Model, s.Cache)
	engine.Logger = dbLogger

	engine.OnStateUpdate = func(state research.ResearchState) {
		stateJSON, err := json.Marshal(state)
		if err != nil {
			dbLogger.Error("failed to marshal state", "error", err)
			return
		}

		_, err = s.DB.Pool.Exec(context.Background(),
			"UPDATE research_runs SET state = $2, updated_at = NOW() WHERE id = $1",
			runID, stateJSON)
		if err != nil {
			dbLogger.Error("failed to save state", "error", err)
		}
	}

	result := engine.Run(ctx, query, prior)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		dbLogger.Error("failed to marshal result", "error", err)
		resultJSON = []byte("{}")
	}

	_, err = s.DB.Pool.Exec(ctx,
		"UPDATE research_runs SET status = $2, result = $3, updated_at = NOW() WHERE id = $1",
		runID, string(result.Status), resultJSON)
	if err != nil {
		dbLogger.Error("failed to save result", "error", err)
	}
}

// priorFindings loads findings from the thread's most recent completed
// run, so a follow-up query builds on what was already discovered.
// Anything that goes wrong here means the run starts fresh.
func (s *Service) priorFindings(ctx context.Context, threadID *uuid.UUID, excludeRun uuid.UUID) []research.Finding {
	if threadID == nil {
		return nil
	}

	var resultJSON []byte
	err := s.DB.Pool.QueryRow(ctx, `
		SELECT result FROM research_runs
		WHERE thread_id = $1 AND id <> $2 AND status = 'sufficient'
		ORDER BY created_at DESC
		LIMIT 1
	`, threadID, excludeRun).Scan(&resultJSON)
	if err != nil || len(resultJSON) == 0 {
		return nil
	}

	var result research.FinalResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil
	}
	return result.Findings
}
