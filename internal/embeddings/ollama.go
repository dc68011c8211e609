package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Ollama calls a local Ollama server's batch /api/embed endpoint.
type Ollama struct {
	Model   string
	BaseURL string
	client  *http.Client
}

// NewOllama returns an Ollama provider.
func NewOllama(model, baseURL string) *Ollama {
	return &Ollama{
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(requestTimeout),
	}
}

// Embed embeds a single text.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one request.
func (o *Ollama) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := map[string]any{
		"model": o.Model,
		"input": texts,
	}
	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := doJSON(ctx, o.client, http.MethodPost, o.BaseURL+"/api/embed", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	for _, v := range resp.Embeddings {
		if len(v) == 0 {
			return nil, errors.New("ollama embed: empty embedding returned")
		}
	}
	return resp.Embeddings, nil
}

// OllamaModelLoaded reports whether model is currently resident in the Ollama
// server at baseURL. Any error, including a 500ms timeout, reports false.
func OllamaModelLoaded(ctx context.Context, model, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	var resp struct {
		Models []struct {
			Name  string `json:"name"`
			Model string `json:"model"`
		} `json:"models"`
	}
	url := strings.TrimRight(baseURL, "/") + "/api/ps"
	if err := doJSON(ctx, newHTTPClient(time.Second), http.MethodGet, url, nil, nil, &resp); err != nil {
		return false
	}

	target := stripTag(model)
	for _, m := range resp.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		if stripTag(name) == target {
			return true
		}
	}
	return false
}

// stripTag drops a ":tag" suffix, e.g. "nomic-embed-text:latest".
func stripTag(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return name
}
