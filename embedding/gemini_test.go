package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lovepop1/emotiaisupport/config"
	"github.com/lovepop1/emotiaisupport/schema"
)

func geminiStub(t *testing.T, values []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Content.Parts) == 0 || req.Content.Parts[0].Text == "" {
			t.Errorf("expected non-empty text part, got %+v", req.Content)
		}
		out := geminiEmbedResponse{}
		out.Embedding.Values = values
		_ = json.NewEncoder(w).Encode(out)
	}))
}

func TestGeminiProvider_GetEmbedding(t *testing.T) {
	srv := geminiStub(t, []float32{0.1, 0.2, 0.3})
	defer srv.Close()

	p := NewGeminiProvider(config.EmbeddingConfig{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		Model:      "text-embedding-004",
		Dimensions: 3,
	}, nil)

	vec, err := p.GetEmbedding(context.Background(), "I can't sleep and I'm anxious")
	if err != nil {
		t.Fatalf("GetEmbedding: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(vec))
	}
}

func TestGeminiProvider_EmptyTextRejected(t *testing.T) {
	p := NewGeminiProvider(config.EmbeddingConfig{APIKey: "k"}, nil)

	_, err := p.GetEmbedding(context.Background(), "   ")
	if !errors.Is(err, schema.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGeminiProvider_MissingPayloadIsProviderFailure(t *testing.T) {
	srv := geminiStub(t, nil)
	defer srv.Close()

	p := NewGeminiProvider(config.EmbeddingConfig{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		Dimensions: 3,
	}, nil)

	_, err := p.GetEmbedding(context.Background(), "hello")
	if !errors.Is(err, schema.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
}

func TestGeminiProvider_DimensionMismatch(t *testing.T) {
	srv := geminiStub(t, []float32{1, 2})
	defer srv.Close()

	p := NewGeminiProvider(config.EmbeddingConfig{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		Dimensions: 3,
	}, nil)

	_, err := p.GetEmbedding(context.Background(), "hello")
	if !errors.Is(err, schema.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure for dimension mismatch, got %v", err)
	}
}
