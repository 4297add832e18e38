// Package embed provides the text-embedding capability used by the
// semantic index.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// OllamaEmbedder implements domain.Embedder using an Ollama-compatible
// /api/embed endpoint.
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaEmbedder creates an embedder against the given base URL and model.
func NewOllamaEmbedder(baseURL, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:   strings.TrimSpace(model),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Embed requests a vector embedding for the given text.
func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]string{
		"model": o.model,
		"input": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request embedding: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		if len(msg) == 0 {
			return nil, fmt.Errorf("embed request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("embed request failed with status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(parsed.Embeddings) == 0 || len(parsed.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embed response contained no embeddings")
	}

	vector := make([]float32, len(parsed.Embeddings[0]))
	for i, v := range parsed.Embeddings[0] {
		vector[i] = float32(v)
	}
	return vector, nil
}

// Ping validates connectivity by requesting a short embedding.
func (o *OllamaEmbedder) Ping(ctx context.Context) error {
	_, err := o.Embed(ctx, "ping")
	return err
}

var _ domain.Embedder = (*OllamaEmbedder)(nil)
