// Package config holds the typed configuration for the wellness chat
// service and its providers.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Chat      ChatConfig      `json:"chat" yaml:"chat"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Corpus    CorpusConfig    `json:"corpus" yaml:"corpus"`
	History   HistoryConfig   `json:"history" yaml:"history"`
	// HTTP holds defaults for the shared outbound HTTP client. If nil,
	// built-in defaults apply.
	HTTP *HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
}

// ChatConfig contains tuning knobs for the response pipeline.
type ChatConfig struct {
	// TopK is the number of guides retrieved per turn.
	TopK int `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	// HistoryLimit is the number of recent turns included in the prompt.
	HistoryLimit int `json:"history_limit,omitempty" yaml:"history_limit,omitempty"`
	// TakeawayHistoryLimit is the history window for session takeaways.
	TakeawayHistoryLimit int `json:"takeaway_history_limit,omitempty" yaml:"takeaway_history_limit,omitempty"`
	// PromptBudgetTokens is the soft token budget for the assembled prompt.
	PromptBudgetTokens int `json:"prompt_budget_tokens,omitempty" yaml:"prompt_budget_tokens,omitempty"`
	Cache              CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
}

// CacheConfig controls the retrieval-result LRU cache.
type CacheConfig struct {
	Enable     bool `json:"enable" yaml:"enable"`
	MaxEntries int  `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	TTLSeconds int  `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// EmbeddingConfig defines configuration for embedding models
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: openai, gemini
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// LLMConfig defines configuration for the generative model
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: openai, gemini
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// CorpusConfig defines the guidance-document corpus backend.
type CorpusConfig struct {
	Provider string `json:"provider" yaml:"provider"` // Available options: memory, pgvector, milvus
	// DSN is the Postgres connection string for the pgvector provider.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	// SeedPath optionally points to a YAML file of documents loaded into
	// the memory provider at startup.
	SeedPath   string `json:"seed_path,omitempty" yaml:"seed_path,omitempty"`
	Host       string `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
}

// HistoryConfig defines the conversation-history backend.
type HistoryConfig struct {
	Store string `json:"store" yaml:"store"` // Available options: memory, redis, postgres
	// DSN is the Postgres connection string for the postgres store.
	DSN        string       `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Redis      *RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
	TTLSeconds int          `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	// MaxTurns caps the turns kept per conversation in bounded stores.
	MaxTurns int `json:"max_turns,omitempty" yaml:"max_turns,omitempty"`
}

// RedisConfig holds connection settings for the Redis history store.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
}

// HTTPClientConfig tunes the shared outbound HTTP client.
type HTTPClientConfig struct {
	TimeoutMs              int `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	MaxConsecutiveFailures int `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// Default returns a configuration with the built-in defaults applied.
func Default() *Config {
	cfg := &Config{
		Chat: ChatConfig{
			TopK:                 3,
			HistoryLimit:         5,
			TakeawayHistoryLimit: 10,
			PromptBudgetTokens:   6000,
		},
		Embedding: EmbeddingConfig{
			Provider:   "gemini",
			Model:      "text-embedding-004",
			Dimensions: 768,
		},
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Temperature: 0.5,
			MaxTokens:   2048,
		},
		Corpus:  CorpusConfig{Provider: "memory"},
		History: HistoryConfig{Store: "memory", MaxTurns: 200},
	}
	return cfg
}

// Load reads a YAML config file, layers it over the defaults and applies
// environment overrides for secrets.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills API keys and connection strings from the environment so
// secrets never have to live in the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		if c.Embedding.Provider == "gemini" && c.Embedding.APIKey == "" {
			c.Embedding.APIKey = v
		}
		if c.LLM.Provider == "gemini" && c.LLM.APIKey == "" {
			c.LLM.APIKey = v
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if c.Embedding.Provider == "openai" && c.Embedding.APIKey == "" {
			c.Embedding.APIKey = v
		}
		if c.LLM.Provider == "openai" && c.LLM.APIKey == "" {
			c.LLM.APIKey = v
		}
	}
	if v := os.Getenv("CORPUS_DATABASE_URL"); v != "" && c.Corpus.DSN == "" {
		c.Corpus.DSN = v
	}
	if v := os.Getenv("HISTORY_DATABASE_URL"); v != "" && c.History.DSN == "" {
		c.History.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		if c.History.Redis == nil {
			c.History.Redis = &RedisConfig{}
		}
		if c.History.Redis.Addr == "" {
			c.History.Redis.Addr = v
		}
	}
}
