// Package clients constructs the language model backends. The provider is
// chosen by configuration; every backend is exposed through the common
// langchaingo llms.Model interface.
package clients

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Options identify the provider and model to construct.
type Options struct {
	Provider string // "googleai", "openai", "anthropic" or "ollama"
	Model    string
	APIKey   string
}

// New returns an llms.Model for the configured provider.
func New(ctx context.Context, opts Options) (llms.Model, error) {
	switch opts.Provider {
	case "", "googleai":
		model := opts.Model
		if model == "" {
			model = "gemini-3-flash-preview"
		}
		return googleai.New(ctx, googleai.WithAPIKey(opts.APIKey), googleai.WithDefaultModel(model))
	case "openai":
		model := opts.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return openai.New(openai.WithToken(opts.APIKey), openai.WithModel(model))
	case "anthropic":
		model := opts.Model
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		return anthropic.New(anthropic.WithToken(opts.APIKey), anthropic.WithModel(model))
	case "ollama":
		model := opts.Model
		if model == "" {
			model = "llama3.2"
		}
		return ollama.New(ollama.WithModel(model))
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (supported: googleai, openai, anthropic, ollama)", opts.Provider)
	}
}
