// Package emotiai wires the mental-wellness chat pipeline: embed the
// user message, retrieve grounding guides, assemble a policy-led
// prompt, generate a response, and persist the exchange.
package emotiai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lovepop1/emotiaisupport/cache"
	"github.com/lovepop1/emotiaisupport/common/httpx"
	"github.com/lovepop1/emotiaisupport/common/logger"
	"github.com/lovepop1/emotiaisupport/config"
	"github.com/lovepop1/emotiaisupport/corpus"
	"github.com/lovepop1/emotiaisupport/embedding"
	"github.com/lovepop1/emotiaisupport/generate"
	"github.com/lovepop1/emotiaisupport/history"
	"github.com/lovepop1/emotiaisupport/llm"
	"github.com/lovepop1/emotiaisupport/metrics"
	"github.com/lovepop1/emotiaisupport/policy"
	"github.com/lovepop1/emotiaisupport/prompt"
	"github.com/lovepop1/emotiaisupport/retriever"
	"github.com/lovepop1/emotiaisupport/schema"
)

const maxListGuides = 1000

// ChatRequest is one user turn.
type ChatRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
	SessionType    string `json:"sessionType,omitempty"`
}

// ChatResponse carries the generated (or fallback) response text.
type ChatResponse struct {
	Response string `json:"response"`
}

// TakeawaysRequest asks for a summary of a conversation.
type TakeawaysRequest struct {
	ConversationID string `json:"conversationId"`
	SessionType    string `json:"sessionType,omitempty"`
}

// TakeawaysResponse carries the session summary.
type TakeawaysResponse struct {
	Takeaways string `json:"takeaways"`
}

// Client is the pipeline facade. Construct once at process start and
// share; all methods are safe for concurrent use.
type Client struct {
	cfg       *config.Config
	embed     embedding.Provider
	corpus    corpus.Store
	retriever *retriever.VectorRetriever
	history   history.Store
	assembler *prompt.Assembler
	generator *generate.Generator
	ingestor  *corpus.Ingestor
	retCache  *cache.RetrievalCache
}

// NewClient builds the pipeline from config.
func NewClient(cfg *config.Config) (*Client, error) {
	httpClient := httpx.NewFromConfig(cfg.HTTP)

	embedProvider, err := embedding.NewProvider(cfg.Embedding, httpClient)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider: %w", err)
	}
	llmProvider, err := llm.NewProvider(cfg.LLM, httpClient)
	if err != nil {
		return nil, fmt.Errorf("create llm provider: %w", err)
	}
	corpusStore, err := corpus.NewStore(cfg.Corpus, embedProvider.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("create corpus store: %w", err)
	}
	historyStore, err := history.NewStore(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("create history store: %w", err)
	}

	c := &Client{
		cfg:       cfg,
		embed:     embedProvider,
		corpus:    corpusStore,
		retriever: &retriever.VectorRetriever{Embed: embedProvider, Store: corpusStore, TopK: cfg.Chat.TopK},
		history:   historyStore,
		assembler: prompt.NewAssembler(cfg.Chat.PromptBudgetTokens),
		generator: &generate.Generator{Provider: llmProvider},
		ingestor:  &corpus.Ingestor{Store: corpusStore, Embed: embedProvider},
	}
	if cfg.Chat.Cache.Enable {
		c.retCache = cache.NewRetrievalCache(cfg.Chat.Cache.MaxEntries,
			time.Duration(cfg.Chat.Cache.TTLSeconds)*time.Second)
	}
	return c, nil
}

// Chat runs one grounded chat turn. The returned response is always
// user-presentable text; generation failures degrade to a canned
// apology and are still recorded as the turn's response.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	start := time.Now()
	if err := validateChat(req); err != nil {
		return ChatResponse{}, err
	}

	guides, cacheHit, err := c.retrieve(ctx, req.Message, c.cfg.Chat.TopK)
	if err != nil {
		return ChatResponse{}, err
	}

	turns, err := c.history.RecentTurns(ctx, req.ConversationID, c.cfg.Chat.HistoryLimit)
	if err != nil {
		return ChatResponse{}, err
	}

	directive := policy.Instruction(policy.SessionType(req.SessionType))
	promptText := c.assembler.BuildChat(directive, turns, guides, req.Message)

	response, fellBack := c.generator.Chat(ctx, promptText)

	// An aborted turn commits nothing: a generation "failure" caused by
	// cancellation must not be persisted as a fallback response.
	if err := ctx.Err(); err != nil {
		return ChatResponse{}, err
	}

	if err := c.history.AppendTurn(ctx, req.ConversationID, schema.ConversationTurn{
		Message:  req.Message,
		Response: response,
	}); err != nil {
		return ChatResponse{}, err
	}

	metrics.TurnRecord{
		Operation:      "chat",
		ConversationID: req.ConversationID,
		SessionType:    req.SessionType,
		Guides:         len(guides),
		HistoryTurns:   len(turns),
		PromptTokens:   c.assembler.Counter.Count(promptText),
		CacheHit:       cacheHit,
		FellBack:       fellBack,
	}.Emit(start)

	return ChatResponse{Response: response}, nil
}

// Takeaways summarizes a conversation. Read-only: nothing is persisted.
func (c *Client) Takeaways(ctx context.Context, req TakeawaysRequest) (TakeawaysResponse, error) {
	start := time.Now()
	if strings.TrimSpace(req.ConversationID) == "" {
		return TakeawaysResponse{}, fmt.Errorf("%w: conversationId is required", schema.ErrInvalidInput)
	}

	turns, err := c.history.RecentTurns(ctx, req.ConversationID, c.cfg.Chat.TakeawayHistoryLimit)
	if err != nil {
		return TakeawaysResponse{}, err
	}

	promptText := c.assembler.BuildTakeaways(req.SessionType, turns)
	summary, fellBack := c.generator.Takeaways(ctx, promptText, len(turns))

	metrics.TurnRecord{
		Operation:      "takeaways",
		ConversationID: req.ConversationID,
		SessionType:    req.SessionType,
		HistoryTurns:   len(turns),
		FellBack:       fellBack,
	}.Emit(start)

	return TakeawaysResponse{Takeaways: summary}, nil
}

// IngestCorpus backfills embeddings for guides that lack one (all
// guides when force is set) and invalidates the retrieval cache.
func (c *Client) IngestCorpus(ctx context.Context, force bool) (corpus.Report, error) {
	start := time.Now()
	report, err := c.ingestor.Backfill(ctx, force)
	if err != nil {
		return report, err
	}
	if c.retCache != nil && report.Updated > 0 {
		c.retCache.Purge()
	}
	metrics.ObserveBackfill(report.Updated, report.Failed)
	metrics.ObserveTurn("backfill", start)
	return report, nil
}

// AddGuide embeds and stores a new guidance document.
func (c *Client) AddGuide(ctx context.Context, title, content string) (schema.Document, error) {
	if strings.TrimSpace(content) == "" {
		return schema.Document{}, fmt.Errorf("%w: content is required", schema.ErrInvalidInput)
	}
	text := content
	if title != "" {
		text = title + "\n" + content
	}
	vec, err := c.embed.GetEmbedding(ctx, text)
	if err != nil {
		return schema.Document{}, err
	}
	doc := schema.Document{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		Vector:    vec,
		CreatedAt: time.Now(),
	}
	if err := c.corpus.AddDocs(ctx, []schema.Document{doc}); err != nil {
		return schema.Document{}, err
	}
	if c.retCache != nil {
		c.retCache.Purge()
	}
	return doc, nil
}

// SearchGuides runs a similarity search, bypassing history and
// generation. Useful for corpus inspection.
func (c *Client) SearchGuides(ctx context.Context, query string, topK int) ([]schema.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", schema.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = c.cfg.Chat.TopK
	}
	results, _, err := c.retrieve(ctx, query, topK)
	return results, err
}

// ListGuides returns the stored guides in insertion order.
func (c *Client) ListGuides(ctx context.Context) ([]schema.Document, error) {
	return c.corpus.ListDocs(ctx, maxListGuides)
}

// LoadSeed reads guidance documents from a YAML file into the corpus.
// Only stores with seed support accept it; the rest report an error.
func (c *Client) LoadSeed(ctx context.Context, path string) (int, error) {
	type seedLoader interface {
		LoadSeed(ctx context.Context, path string) (int, error)
	}
	loader, ok := c.corpus.(seedLoader)
	if !ok {
		return 0, fmt.Errorf("corpus provider %q does not load seed files", c.cfg.Corpus.Provider)
	}
	return loader.LoadSeed(ctx, path)
}

func (c *Client) retrieve(ctx context.Context, query string, topK int) ([]schema.SearchResult, bool, error) {
	var key string
	if c.retCache != nil {
		key = cache.Key(query, topK)
		if cached, ok := c.retCache.Get(key); ok {
			logger.Debugf("retrieval cache hit for topK=%d", topK)
			return cached, true, nil
		}
	}
	results, err := c.retriever.Search(ctx, query, topK)
	if err != nil {
		return nil, false, err
	}
	if c.retCache != nil && len(results) > 0 {
		c.retCache.Set(key, results)
	}
	return results, false, nil
}

func validateChat(req ChatRequest) error {
	if strings.TrimSpace(req.ConversationID) == "" {
		return fmt.Errorf("%w: conversationId is required", schema.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message is required", schema.ErrInvalidInput)
	}
	return nil
}
