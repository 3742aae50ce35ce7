package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateChat()...)
	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateLLM()...)
	errs = append(errs, c.validateCorpus()...)
	errs = append(errs, c.validateHistory()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateChat() ValidationErrors {
	var errs ValidationErrors

	if c.Chat.TopK <= 0 {
		errs = append(errs, ValidationError{
			Field:   "chat.top_k",
			Message: fmt.Sprintf("chat.top_k must be positive, got %d", c.Chat.TopK),
		})
	}
	if c.Chat.TopK > 50 {
		errs = append(errs, ValidationError{
			Field:   "chat.top_k",
			Message: fmt.Sprintf("chat.top_k %d is too large (max recommended: 50)", c.Chat.TopK),
		})
	}
	if c.Chat.HistoryLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "chat.history_limit",
			Message: fmt.Sprintf("chat.history_limit must be non-negative, got %d", c.Chat.HistoryLimit),
		})
	}
	if c.Chat.PromptBudgetTokens < 0 {
		errs = append(errs, ValidationError{
			Field:   "chat.prompt_budget_tokens",
			Message: fmt.Sprintf("chat.prompt_budget_tokens must be non-negative, got %d", c.Chat.PromptBudgetTokens),
		})
	}

	return errs
}

func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors

	if c.Embedding.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: "embedding provider is required",
		})
	}
	if c.Embedding.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.model",
			Message: "embedding model is required",
		})
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
		})
	}

	// Typical range for current embedding models.
	if c.Embedding.Dimensions > 0 && (c.Embedding.Dimensions < 128 || c.Embedding.Dimensions > 4096) {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions %d is outside typical range [128, 4096]", c.Embedding.Dimensions),
		})
	}

	return errs
}

func (c *Config) validateLLM() ValidationErrors {
	var errs ValidationErrors

	if c.LLM.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: "llm provider is required",
		})
	}
	if c.LLM.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.model",
			Message: "llm model is required",
		})
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "llm.temperature",
			Message: fmt.Sprintf("llm.temperature must be in [0, 2], got %.2f", c.LLM.Temperature),
		})
	}

	return errs
}

func (c *Config) validateCorpus() ValidationErrors {
	var errs ValidationErrors

	switch strings.ToLower(c.Corpus.Provider) {
	case "memory", "":
	case "pgvector":
		if c.Corpus.DSN == "" {
			errs = append(errs, ValidationError{
				Field:   "corpus.dsn",
				Message: "corpus dsn is required for pgvector provider",
			})
		}
	case "milvus":
		if c.Corpus.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "corpus.host",
				Message: "corpus host is required for milvus provider",
			})
		}
		if c.Corpus.Collection == "" {
			errs = append(errs, ValidationError{
				Field:   "corpus.collection",
				Message: "collection name is required for milvus provider",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "corpus.provider",
			Message: fmt.Sprintf("unknown corpus provider %q", c.Corpus.Provider),
		})
	}

	return errs
}

func (c *Config) validateHistory() ValidationErrors {
	var errs ValidationErrors

	switch strings.ToLower(c.History.Store) {
	case "memory", "":
	case "redis":
		if c.History.Redis == nil || c.History.Redis.Addr == "" {
			errs = append(errs, ValidationError{
				Field:   "history.redis.addr",
				Message: "redis address is required for redis history store",
			})
		}
	case "postgres":
		if c.History.DSN == "" {
			errs = append(errs, ValidationError{
				Field:   "history.dsn",
				Message: "history dsn is required for postgres store",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "history.store",
			Message: fmt.Sprintf("unknown history store %q", c.History.Store),
		})
	}

	return errs
}
