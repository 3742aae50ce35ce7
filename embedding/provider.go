// Package embedding turns free text into fixed-dimension vectors via an
// external embedding model.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/lovepop1/emotiaisupport/common/httpx"
	"github.com/lovepop1/emotiaisupport/config"
	"github.com/lovepop1/emotiaisupport/schema"
)

// Provider is the embedding model abstraction.
type Provider interface {
	// GetEmbedding embeds a single non-empty text. The returned vector
	// always has Dimensions() elements; a backend response without a
	// vector payload is reported as an error, never as an empty slice.
	GetEmbedding(ctx context.Context, text string) ([]float32, error)

	// Dimensions reports the vector dimensionality of this provider.
	Dimensions() int
}

// NewProvider creates an embedding provider from config.
func NewProvider(cfg config.EmbeddingConfig, hc *httpx.Client) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "gemini":
		return NewGeminiProvider(cfg, hc), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

// checkInput rejects empty input before any provider call.
func checkInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty text", schema.ErrInvalidInput)
	}
	return nil
}

// checkVector validates the dimensionality of a provider response.
func checkVector(vec []float32, want int) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: embedding response missing vector payload", schema.ErrProviderFailure)
	}
	if want > 0 && len(vec) != want {
		return fmt.Errorf("%w: embedding has %d dimensions, want %d", schema.ErrProviderFailure, len(vec), want)
	}
	return nil
}
