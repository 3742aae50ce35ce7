package llm

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

func TestGeminiProvider_GenerateCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 {
			t.Errorf("expected one content entry, got %d", len(req.Contents))
		}
		out := geminiGenerateResponse{}
		out.Candidates = append(out.Candidates, struct {
			Content geminiContent `json:"content"`
		}{Content: geminiContent{Parts: []geminiPart{{Text: "Take a slow breath. "}, {Text: "You are doing fine."}}}})
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	p := NewGeminiProvider(config.LLMConfig{BaseURL: srv.URL, APIKey: "k", Model: "gemini-2.0-flash"}, nil)

	got, err := p.GenerateCompletion(context.Background(), "hello")
	if err != nil {
		t.Fatalf("GenerateCompletion: %v", err)
	}
	want := "Take a slow breath. You are doing fine."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestGeminiProvider_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiGenerateResponse{})
	}))
	defer srv.Close()

	p := NewGeminiProvider(config.LLMConfig{BaseURL: srv.URL, APIKey: "k"}, nil)

	_, err := p.GenerateCompletion(context.Background(), "hello")
	if !errors.Is(err, schema.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
}

func TestGeminiProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewGeminiProvider(config.LLMConfig{BaseURL: srv.URL, APIKey: "k"}, nil)

	_, err := p.GenerateCompletion(context.Background(), "hello")
	if !errors.Is(err, schema.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
}
