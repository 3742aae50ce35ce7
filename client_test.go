package emotiai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovepop1/emotiaisupport/cache"
	"github.com/lovepop1/emotiaisupport/config"
	"github.com/lovepop1/emotiaisupport/corpus"
	"github.com/lovepop1/emotiaisupport/generate"
	"github.com/lovepop1/emotiaisupport/history"
	"github.com/lovepop1/emotiaisupport/prompt"
	"github.com/lovepop1/emotiaisupport/retriever"
	"github.com/lovepop1/emotiaisupport/schema"
)

// fakeEmbedder maps texts to fixed directions so ranking is predictable.
type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	lower := strings.ToLower(text)
	vec := []float32{0.1, 0.1, 0.1}
	if strings.Contains(lower, "sleep") {
		vec[0] = 1
	}
	if strings.Contains(lower, "anxi") {
		vec[1] = 1
	}
	if strings.Contains(lower, "gratitude") {
		vec[2] = 1
	}
	return vec, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeLLM) GenerateCompletion(ctx context.Context, p string) (string, error) {
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type testPipeline struct {
	client *Client
	embed  *fakeEmbedder
	llm    *fakeLLM
	store  *corpus.MemoryStore
}

func newTestPipeline(t *testing.T, withCache bool) *testPipeline {
	t.Helper()
	cfg := config.Default()

	embed := &fakeEmbedder{}
	llm := &fakeLLM{reply: "Take a slow breath and note three things you can see."}
	store := corpus.NewMemoryStore(nil)

	client := &Client{
		cfg:       cfg,
		embed:     embed,
		corpus:    store,
		retriever: &retriever.VectorRetriever{Embed: embed, Store: store, TopK: cfg.Chat.TopK},
		history:   history.NewMemoryStore(cfg.History.MaxTurns),
		assembler: &prompt.Assembler{Counter: testCounter{}, BudgetTokens: cfg.Chat.PromptBudgetTokens},
		generator: &generate.Generator{Provider: llm},
		ingestor:  &corpus.Ingestor{Store: store, Embed: embed},
	}
	if withCache {
		client.retCache = cache.NewRetrievalCache(16, time.Minute)
	}
	return &testPipeline{client: client, embed: embed, llm: llm, store: store}
}

type testCounter struct{}

func (testCounter) Count(text string) int { return len(strings.Fields(text)) }

func seedCorpus(t *testing.T, p *testPipeline) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, p.store.AddDocs(ctx, []schema.Document{
		{ID: "anxiety", Title: "Managing Anxiety", Content: "Name the worry, then check the evidence for it."},
		{ID: "sleep", Title: "Sleep Hygiene", Content: "Keep a consistent sleep schedule and a dark room."},
		{ID: "gratitude", Title: "Gratitude Journaling", Content: "Write three things that went well today."},
	}))
	report, err := p.client.IngestCorpus(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 3, report.Updated)
}

func TestChat_FullTurn(t *testing.T) {
	p := newTestPipeline(t, false)
	seedCorpus(t, p)
	ctx := context.Background()

	resp, err := p.client.Chat(ctx, ChatRequest{
		ConversationID: "conv-1",
		Message:        "I can't sleep and I'm anxious",
		SessionType:    "Meditation",
	})
	require.NoError(t, err)
	assert.Equal(t, "Take a slow breath and note three things you can see.", resp.Response)

	require.Len(t, p.llm.prompts, 1)
	sent := p.llm.prompts[0]
	assert.Contains(t, sent, "mindfulness coach", "session policy leads the prompt")
	assert.Contains(t, sent, "Sleep Hygiene")
	assert.Contains(t, sent, "Managing Anxiety")
	assert.NotContains(t, sent, "chat history", "first turn has no transcript")

	sleepAt := strings.Index(sent, "Sleep Hygiene")
	gratitudeAt := strings.Index(sent, "Gratitude Journaling")
	if gratitudeAt >= 0 {
		assert.Less(t, sleepAt, gratitudeAt, "closer guides come first")
	}

	turns, err := p.client.history.RecentTurns(ctx, "conv-1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "I can't sleep and I'm anxious", turns[0].Message)
	assert.Equal(t, resp.Response, turns[0].Response)
}

func TestChat_SecondTurnCarriesHistory(t *testing.T) {
	p := newTestPipeline(t, false)
	seedCorpus(t, p)
	ctx := context.Background()

	_, err := p.client.Chat(ctx, ChatRequest{ConversationID: "conv", Message: "I feel anxious"})
	require.NoError(t, err)
	_, err = p.client.Chat(ctx, ChatRequest{ConversationID: "conv", Message: "It happened again today"})
	require.NoError(t, err)

	require.Len(t, p.llm.prompts, 2)
	assert.Contains(t, p.llm.prompts[1], "User: I feel anxious", "prior turn appears in the transcript")
}

func TestChat_EmptyCorpusStillAnswers(t *testing.T) {
	p := newTestPipeline(t, false)
	ctx := context.Background()

	resp, err := p.client.Chat(ctx, ChatRequest{ConversationID: "conv", Message: "hello"})
	require.NoError(t, err, "an empty corpus degrades, it does not fail")
	assert.NotEmpty(t, resp.Response)
	assert.NotContains(t, p.llm.prompts[0], "these guides")
}

func TestChat_GenerationFailureFallsBackAndPersists(t *testing.T) {
	p := newTestPipeline(t, false)
	seedCorpus(t, p)
	p.llm.err = errors.New("quota exceeded")
	ctx := context.Background()

	resp, err := p.client.Chat(ctx, ChatRequest{ConversationID: "conv", Message: "help"})
	require.NoError(t, err, "provider failure must not surface to the caller")
	assert.Equal(t, generate.ChatFallback, resp.Response)

	turns, err := p.client.history.RecentTurns(ctx, "conv", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, generate.ChatFallback, turns[0].Response, "the fallback is recorded as the turn's response")
}

func TestChat_AbortedTurnWritesNothing(t *testing.T) {
	p := newTestPipeline(t, false)
	seedCorpus(t, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.client.Chat(ctx, ChatRequest{ConversationID: "aborted", Message: "I feel anxious"})
	require.ErrorIs(t, err, context.Canceled)

	turns, err := p.client.history.RecentTurns(context.Background(), "aborted", 10)
	require.NoError(t, err)
	assert.Empty(t, turns, "a cancelled turn must not persist a fallback response")
}

func TestChat_InvalidInput(t *testing.T) {
	p := newTestPipeline(t, false)

	_, err := p.client.Chat(context.Background(), ChatRequest{ConversationID: "", Message: "hi"})
	assert.ErrorIs(t, err, schema.ErrInvalidInput)

	_, err = p.client.Chat(context.Background(), ChatRequest{ConversationID: "c", Message: "   "})
	assert.ErrorIs(t, err, schema.ErrInvalidInput)
	assert.Zero(t, p.embed.calls, "invalid requests are rejected before any provider call")
}

func TestChat_RetrievalCache(t *testing.T) {
	p := newTestPipeline(t, true)
	seedCorpus(t, p)
	ctx := context.Background()

	_, err := p.client.Chat(ctx, ChatRequest{ConversationID: "a", Message: "I can't sleep"})
	require.NoError(t, err)
	embedsAfterFirst := p.embed.calls

	_, err = p.client.Chat(ctx, ChatRequest{ConversationID: "b", Message: "i can't sleep  "})
	require.NoError(t, err)
	assert.Equal(t, embedsAfterFirst, p.embed.calls, "cache hit skips the embedding call")
}

func TestTakeaways_SummarizesHistory(t *testing.T) {
	p := newTestPipeline(t, false)
	p.llm.reply = "You practiced naming your worries and found it calming."
	ctx := context.Background()

	require.NoError(t, p.client.history.AppendTurn(ctx, "conv", schema.ConversationTurn{
		Message: "I named my worry", Response: "Well done",
	}))

	resp, err := p.client.Takeaways(ctx, TakeawaysRequest{ConversationID: "conv", SessionType: "Guided Reflection"})
	require.NoError(t, err)
	assert.Equal(t, "You practiced naming your worries and found it calming.", resp.Takeaways)

	require.Len(t, p.llm.prompts, 1)
	assert.Contains(t, p.llm.prompts[0], `session of type: "Guided Reflection"`)
	assert.Contains(t, p.llm.prompts[0], "User: I named my worry")
}

func TestTakeaways_EmptyHistory(t *testing.T) {
	p := newTestPipeline(t, false)

	resp, err := p.client.Takeaways(context.Background(), TakeawaysRequest{ConversationID: "empty"})
	require.NoError(t, err)
	assert.Equal(t, generate.TakeawaysEmptyHistory, resp.Takeaways)
	assert.Empty(t, p.llm.prompts, "no provider call for an empty transcript")
}

func TestTakeaways_ReadOnly(t *testing.T) {
	p := newTestPipeline(t, false)
	ctx := context.Background()
	require.NoError(t, p.client.history.AppendTurn(ctx, "conv", schema.ConversationTurn{Message: "m", Response: "r"}))

	_, err := p.client.Takeaways(ctx, TakeawaysRequest{ConversationID: "conv"})
	require.NoError(t, err)

	turns, err := p.client.history.RecentTurns(ctx, "conv", 10)
	require.NoError(t, err)
	assert.Len(t, turns, 1, "takeaways never writes history")
}

func TestIngestCorpus_PurgesRetrievalCache(t *testing.T) {
	p := newTestPipeline(t, true)
	seedCorpus(t, p)
	ctx := context.Background()

	_, err := p.client.SearchGuides(ctx, "sleep", 3)
	require.NoError(t, err)
	require.Equal(t, 1, p.client.retCache.Len())

	require.NoError(t, p.store.AddDocs(ctx, []schema.Document{{ID: "new", Title: "New Guide", Content: "gratitude notes"}}))
	report, err := p.client.IngestCorpus(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, p.client.retCache.Len(), "stale rankings are dropped after a backfill")
}

func TestAddGuide_EmbedsAndStores(t *testing.T) {
	p := newTestPipeline(t, false)
	ctx := context.Background()

	doc, err := p.client.AddGuide(ctx, "Gratitude Journaling", "Write three things that went well.")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.True(t, doc.Embedded())

	missing, err := p.store.Missing(ctx)
	require.NoError(t, err)
	assert.Empty(t, missing, "added guides arrive already embedded")

	_, err = p.client.AddGuide(ctx, "Empty", "  ")
	assert.ErrorIs(t, err, schema.ErrInvalidInput)
}

func TestSearchGuides_RanksByDistance(t *testing.T) {
	p := newTestPipeline(t, false)
	seedCorpus(t, p)

	results, err := p.client.SearchGuides(context.Background(), "I can't sleep and I'm anxious", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
	}
	assert.NotEqual(t, "gratitude", results[0].Document.ID, "off-topic guide must not rank first")
}
