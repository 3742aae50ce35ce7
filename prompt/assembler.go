// Package prompt assembles the grounded prompts sent to the language
// model, enforcing a token budget over the variable sections.
package prompt

import (
	"fmt"
	"strings"

	"github.com/lovepop1/emotiaisupport/schema"
)

const closingDirective = "Your response should be concise, empathetic, and actionable and dont include the guide number in response."

// Assembler builds chat and takeaway prompts.
//
// When a prompt exceeds BudgetTokens, history is dropped oldest first,
// then guide content is trimmed (titles stay). The policy directive and
// the user message are never cut.
type Assembler struct {
	Counter      TokenCounter
	BudgetTokens int
}

// NewAssembler creates an assembler with the cl100k_base counter.
func NewAssembler(budgetTokens int) *Assembler {
	return &Assembler{Counter: NewTiktokenCounter(), BudgetTokens: budgetTokens}
}

// BuildChat assembles the prompt for one chat turn.
func (a *Assembler) BuildChat(directive string, history []schema.ConversationTurn, guides []schema.SearchResult, userMessage string) string {
	p := a.render(directive, history, guides, userMessage)
	if a.BudgetTokens <= 0 || a.Counter == nil || a.Counter.Count(p) <= a.BudgetTokens {
		return p
	}

	// Oldest history first.
	for len(history) > 0 {
		history = history[1:]
		p = a.render(directive, history, guides, userMessage)
		if a.Counter.Count(p) <= a.BudgetTokens {
			return p
		}
	}

	// Then trim guide content, halving until it fits or nothing is left.
	trimmed := make([]schema.SearchResult, len(guides))
	copy(trimmed, guides)
	for ratio := 0.5; ratio > 0.05; ratio /= 2 {
		for i := range trimmed {
			trimmed[i].Document.Content = truncateWords(guides[i].Document.Content, ratio)
		}
		p = a.render(directive, nil, trimmed, userMessage)
		if a.Counter.Count(p) <= a.BudgetTokens {
			return p
		}
	}
	for i := range trimmed {
		trimmed[i].Document.Content = ""
	}
	return a.render(directive, nil, trimmed, userMessage)
}

func (a *Assembler) render(directive string, history []schema.ConversationTurn, guides []schema.SearchResult, userMessage string) string {
	var b strings.Builder
	b.WriteString(directive)
	b.WriteString("\n")

	if len(history) > 0 {
		b.WriteString("\nHere is the chat history from the ongoing session:\n\n")
		b.WriteString(Transcript(history))
		b.WriteString("\n")
	}

	b.WriteString("\nA user has asked the following question:\n")
	fmt.Fprintf(&b, "%q\n", userMessage)

	if len(guides) > 0 {
		b.WriteString("\nUse the most relevant information from these guides to generate a helpful response:\n")
		b.WriteString(guideContext(guides))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(closingDirective)
	return b.String()
}

// BuildTakeaways assembles the session-summary prompt.
func (a *Assembler) BuildTakeaways(sessionType string, history []schema.ConversationTurn) string {
	var b strings.Builder
	b.WriteString("You are a mental health AI assistant trained in Cognitive Behavioral Therapy (CBT).\n")
	fmt.Fprintf(&b, "The user has just completed a session of type: %q.\n", sessionType)
	b.WriteString("\nHere is the chat history from this session:\n")
	b.WriteString(Transcript(history))
	b.WriteString("\n\nBased on this, summarize the key takeaways from the session in a concise and structured manner.\n")
	b.WriteString("Format the response with key insights and lessons learned.\n")
	b.WriteString("Keep it helpful and actionable. Avoid using the user said or the user etc and use you. Make it professional like how a therapist would say it to a patient in first person.")
	return b.String()
}

// Transcript renders turns as a User/Assistant dialogue, oldest first.
func Transcript(history []schema.ConversationTurn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("User: %s\nAssistant: %s", turn.Message, turn.Response))
	}
	return strings.Join(lines, "\n\n")
}

func guideContext(guides []schema.SearchResult) string {
	blocks := make([]string, 0, len(guides))
	for i, g := range guides {
		block := fmt.Sprintf("Guide %d: %s", i+1, g.Document.Title)
		if g.Document.Content != "" {
			block += "\n" + g.Document.Content
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

// truncateWords keeps the leading ratio of a text's words.
func truncateWords(text string, ratio float64) string {
	if ratio <= 0 || ratio >= 1 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	keep := int(float64(len(words)) * ratio)
	if keep <= 0 {
		keep = 1
	}
	if keep >= len(words) {
		return text
	}
	return strings.Join(words[:keep], " ")
}
