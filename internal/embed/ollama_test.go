package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbedder_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req["model"])
		assert.Equal(t, "hello", req["input"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": [][]float64{{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(srv.URL, "all-minilm")
	vec, err := emb.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestOllamaEmbedder_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(srv.URL, "nope")
	_, err := emb.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestFakeEmbedder_Deterministic(t *testing.T) {
	emb := NewFakeEmbedder(8)

	a, err := emb.Embed(context.Background(), "same text")
	require.NoError(t, err)
	b, err := emb.Embed(context.Background(), "same text")
	require.NoError(t, err)
	c, err := emb.Embed(context.Background(), "other text")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 8)
}
