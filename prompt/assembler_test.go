package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovepop1/emotiaisupport/schema"
)

// wordCounter keeps tests deterministic and offline.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func guide(title, content string) schema.SearchResult {
	return schema.SearchResult{Document: schema.Document{ID: title, Title: title, Content: content}}
}

func TestBuildChat_SectionOrder(t *testing.T) {
	a := &Assembler{Counter: wordCounter{}, BudgetTokens: 0}
	history := []schema.ConversationTurn{{Message: "I slept badly", Response: "Tell me more"}}
	guides := []schema.SearchResult{guide("Sleep Hygiene", "Keep a schedule.")}

	p := a.BuildChat("DIRECTIVE.", history, guides, "How do I relax?")

	directiveAt := strings.Index(p, "DIRECTIVE.")
	historyAt := strings.Index(p, "User: I slept badly")
	questionAt := strings.Index(p, `"How do I relax?"`)
	guidesAt := strings.Index(p, "Guide 1: Sleep Hygiene")
	closingAt := strings.Index(p, "concise, empathetic, and actionable")

	require.NotEqual(t, -1, directiveAt)
	require.NotEqual(t, -1, historyAt)
	require.NotEqual(t, -1, questionAt)
	require.NotEqual(t, -1, guidesAt)
	require.NotEqual(t, -1, closingAt)
	assert.True(t, directiveAt < historyAt && historyAt < questionAt && questionAt < guidesAt && guidesAt < closingAt,
		"sections out of order:\n%s", p)
	assert.Contains(t, p, "Assistant: Tell me more")
}

func TestBuildChat_OmitsEmptySections(t *testing.T) {
	a := &Assembler{Counter: wordCounter{}}

	p := a.BuildChat("DIRECTIVE.", nil, nil, "hello")
	assert.NotContains(t, p, "chat history")
	assert.NotContains(t, p, "these guides")
	assert.Contains(t, p, `"hello"`)
	assert.Contains(t, p, "concise, empathetic, and actionable")
}

func TestBuildChat_BudgetDropsOldestHistoryFirst(t *testing.T) {
	long := strings.Repeat("word ", 40)
	history := []schema.ConversationTurn{
		{Message: "oldest " + long, Response: "r1"},
		{Message: "newest question", Response: "r2"},
	}
	a := &Assembler{Counter: wordCounter{}, BudgetTokens: 60}

	p := a.BuildChat("DIRECTIVE.", history, nil, "current message")
	assert.NotContains(t, p, "oldest")
	assert.Contains(t, p, "newest question", "newer history survives the cut")
	assert.Contains(t, p, "current message", "the user message is never cut")
	assert.LessOrEqual(t, wordCounter{}.Count(p), 60)
}

func TestBuildChat_BudgetTrimsGuideContentKeepsTitles(t *testing.T) {
	guides := []schema.SearchResult{
		guide("Grounding", strings.Repeat("breathe ", 200)),
		guide("Sleep Hygiene", strings.Repeat("rest ", 200)),
	}
	a := &Assembler{Counter: wordCounter{}, BudgetTokens: 80}

	p := a.BuildChat("DIRECTIVE.", nil, guides, "help me")
	assert.Contains(t, p, "Guide 1: Grounding", "titles survive trimming")
	assert.Contains(t, p, "Guide 2: Sleep Hygiene")
	assert.Contains(t, p, `"help me"`)
	assert.LessOrEqual(t, wordCounter{}.Count(p), 80)
}

func TestBuildChat_NoBudgetKeepsEverything(t *testing.T) {
	long := strings.Repeat("word ", 500)
	a := &Assembler{Counter: wordCounter{}, BudgetTokens: 0}

	p := a.BuildChat("DIRECTIVE.", []schema.ConversationTurn{{Message: long, Response: "ok"}}, nil, "q")
	assert.Contains(t, p, long[:50])
}

func TestBuildTakeaways(t *testing.T) {
	a := &Assembler{Counter: wordCounter{}}
	history := []schema.ConversationTurn{
		{Message: "I felt anxious", Response: "That sounds hard"},
		{Message: "It got better", Response: "Good progress"},
	}

	p := a.BuildTakeaways("Meditation", history)
	assert.Contains(t, p, `session of type: "Meditation"`)
	assert.Contains(t, p, "User: I felt anxious")
	assert.Contains(t, p, "Assistant: Good progress")
	assert.Contains(t, p, "summarize the key takeaways")
	assert.True(t, strings.Index(p, "I felt anxious") < strings.Index(p, "It got better"),
		"transcript must be chronological")
}

func TestTranscript(t *testing.T) {
	assert.Equal(t, "", Transcript(nil))

	got := Transcript([]schema.ConversationTurn{
		{Message: "a", Response: "b"},
		{Message: "c", Response: "d"},
	})
	assert.Equal(t, "User: a\nAssistant: b\n\nUser: c\nAssistant: d", got)
}

func TestTruncateWords(t *testing.T) {
	text := "one two three four five six seven eight"
	assert.Equal(t, "one two three four", truncateWords(text, 0.5))
	assert.Equal(t, text, truncateWords(text, 0))
	assert.Equal(t, text, truncateWords(text, 1))
	assert.Equal(t, "one", truncateWords(text, 0.01))
}
