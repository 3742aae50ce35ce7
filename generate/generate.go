// Package generate wraps the language model behind the degradation
// policy: the caller always gets response text, never a raw provider
// error.
package generate

import (
	"context"
	"strings"

	"github.com/lovepop1/emotiaisupport/common/logger"
	"github.com/lovepop1/emotiaisupport/llm"
)

// Canned responses shown when generation cannot produce text. Kept
// user-facing and apologetic; raw errors never reach the end user.
const (
	ChatFallback          = "An error occurred while generating a response."
	ChatEmptyOutput       = "I'm sorry, but I couldn't find a relevant response."
	TakeawaysFallback     = "An error occurred while generating takeaways."
	TakeawaysEmptyHistory = "No significant takeaways recorded yet."
)

// Generator produces sanitized response text from an assembled prompt.
// A single attempt per call; a provider failure degrades to the error
// apology, an empty completion to its own canned line, and both report
// fellBack=true so the caller can count them.
type Generator struct {
	Provider llm.Provider
}

// Chat generates a chat-turn response.
func (g *Generator) Chat(ctx context.Context, promptText string) (response string, fellBack bool) {
	text, err := g.Provider.GenerateCompletion(ctx, promptText)
	if err != nil {
		logger.Warnf("generation failed, serving fallback: %v", err)
		return ChatFallback, true
	}
	text = Sanitize(text)
	if text == "" {
		logger.Warnf("generation produced empty text")
		return ChatEmptyOutput, true
	}
	return text, false
}

// Takeaways generates a session summary. An empty transcript short-
// circuits to its own canned line without calling the provider.
func (g *Generator) Takeaways(ctx context.Context, promptText string, historyLen int) (summary string, fellBack bool) {
	if historyLen == 0 {
		return TakeawaysEmptyHistory, false
	}
	text, err := g.Provider.GenerateCompletion(ctx, promptText)
	if err != nil {
		logger.Warnf("takeaway generation failed, serving fallback: %v", err)
		return TakeawaysFallback, true
	}
	text = Sanitize(text)
	if text == "" {
		return TakeawaysFallback, true
	}
	return text, false
}

// Sanitize strips markdown emphasis markers and heading symbols from
// model output. Downstream consumers render plain prose.
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '*' || r == '#' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
