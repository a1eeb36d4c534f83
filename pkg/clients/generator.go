package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// Generator adapts an llms.Model to the single-prompt generation interface
// the research engine consumes, with a bounded retry on transient
// failures.
type Generator struct {
	model      llms.Model
	logger     *slog.Logger
	maxRetries int
}

func NewGenerator(model llms.Model) *Generator {
	return &Generator{
		model:      model,
		logger:     slog.Default(),
		maxRetries: 3,
	}
}

// Generate invokes the model and returns its text content. Empty
// responses are retried alongside transport errors; after the retry
// budget the last error is returned.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for i := 0; i < g.maxRetries; i++ {
		if i > 0 {
			g.logger.Warn("retrying LLM generation", "attempt", i+1, "last_error", lastErr)
			select {
			case <-time.After(time.Second * time.Duration(i)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := g.model.GenerateContent(ctx, []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		})
		if err != nil {
			lastErr = fmt.Errorf("llm generation failed: %w", err)
			continue
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
			lastErr = fmt.Errorf("llm returned no content")
			continue
		}
		return resp.Choices[0].Content, nil
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", g.maxRetries, lastErr)
}
