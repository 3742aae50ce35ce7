package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lovepop1/emotiaisupport/common/httpx"
	"github.com/lovepop1/emotiaisupport/config"
	"github.com/lovepop1/emotiaisupport/schema"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider embeds text through the Google Generative Language API
// (text-embedding-004, 768 dimensions).
type GeminiProvider struct {
	client     *httpx.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

// NewGeminiProvider creates a Gemini embedding provider.
func NewGeminiProvider(cfg config.EmbeddingConfig, hc *httpx.Client) *GeminiProvider {
	base := cfg.BaseURL
	if base == "" {
		base = defaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-004"
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = 768
	}
	if hc == nil {
		hc = httpx.NewFromConfig(nil)
	}
	return &GeminiProvider{
		client:     hc,
		baseURL:    base,
		apiKey:     cfg.APIKey,
		model:      model,
		dimensions: dims,
	}
}

func (p *GeminiProvider) Dimensions() int { return p.dimensions }

type geminiEmbedRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

func (p *GeminiProvider) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}

	body, err := json.Marshal(geminiEmbedRequest{
		Model:   "models/" + p.model,
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal embed request: %v", schema.ErrProviderFailure, err)
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", p.baseURL, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build embed request: %v", schema.ErrProviderFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embedContent: %v", schema.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: gemini embedContent status %d: %s", schema.ErrProviderFailure, resp.StatusCode, payload)
	}

	var out geminiEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode embed response: %v", schema.ErrProviderFailure, err)
	}
	if err := checkVector(out.Embedding.Values, p.dimensions); err != nil {
		return nil, err
	}
	return out.Embedding.Values, nil
}
