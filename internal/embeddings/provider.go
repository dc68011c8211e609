// Package embeddings turns plan text into vectors for semantic plan search.
package embeddings

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ports/focusflow/internal/config"
)

const (
	defaultOllamaBase = "http://localhost:11434"
	openRouterBase    = "https://openrouter.ai/api/v1"
)

// Provider is the interface for embedding models.
type Provider interface {
	// Embed returns a float32 vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns vectors for multiple texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// NewProvider constructs a Provider from the embedding section of the config.
// Returns (nil, nil) when the provider is "" or "none".
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaBase
		}
		return NewOllama(cfg.Model, baseURL), nil
	case "openai":
		return NewOpenAI(cfg.Model, cfg.APIKey, ""), nil
	case "openrouter":
		return NewOpenAI(cfg.Model, cfg.APIKey, openRouterBase), nil
	case "", "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
}

// Document builds the text embedded for a plan: the description, its
// category and the subtask titles.
func Document(rawText, category string, titles []string) string {
	parts := make([]string, 0, len(titles)+2)
	parts = append(parts, strings.TrimSpace(rawText))
	if category != "" {
		parts = append(parts, category)
	}
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
