// Package llm wraps the generative model backends used for response and
// takeaway generation.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lovepop1/emotiaisupport/common/httpx"
	"github.com/lovepop1/emotiaisupport/config"
)

// Provider is the generative model abstraction.
type Provider interface {
	// GenerateCompletion runs a single completion for the prompt.
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
}

// NewProvider creates an LLM provider from config.
func NewProvider(cfg config.LLMConfig, hc *httpx.Client) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "gemini":
		return NewGeminiProvider(cfg, hc), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
