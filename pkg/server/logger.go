package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mikeboe/research-assistant/pkg/database"
)

// DBLogHandler is a slog.Handler that writes records into research_logs,
// keyed by run. The API serves these rows back as the run's progress log.
type DBLogHandler struct {
	DB    *database.PostgresDB
	RunID uuid.UUID

	attrs []slog.Attr
}

func NewDBLogHandler(db *database.PostgresDB, runID uuid.UUID) *DBLogHandler {
	return &DBLogHandler{
		DB:    db,
		RunID: runID,
	}
}

func (h *DBLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelDebug
}

func (h *DBLogHandler) Handle(ctx context.Context, r slog.Record) error {
	meta := make(map[string]interface{}, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		meta[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		meta[a.Key] = a.Value.Any()
		return true
	})

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	query := `
		INSERT INTO research_logs (run_id, timestamp, level, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`

	// Background context so log rows survive request cancellation.
	_, err = h.DB.Pool.Exec(context.Background(), query, h.RunID, r.Time, r.Level.String(), r.Message, metaJSON)
	return err
}

func (h *DBLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &DBLogHandler{DB: h.DB, RunID: h.RunID, attrs: merged}
}

func (h *DBLogHandler) WithGroup(name string) slog.Handler {
	// Groups are flattened; the metadata column is a single JSON object.
	return h
}
