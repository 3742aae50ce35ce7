// Package policy maps session types to the system directive that leads
// every generated prompt.
package policy

import "strings"

// SessionType identifies the conversation mode a session was opened with.
type SessionType string

const (
	FreeChat         SessionType = "Free Chat"
	GuidedReflection SessionType = "Guided Reflection"
	Meditation       SessionType = "Meditation"
	CognitiveSupport SessionType = "Cognitive Support"
	Journaling       SessionType = "Journaling"
)

// DefaultInstruction is the directive used when a session type is absent
// or unrecognized. Unknown types degrade to it rather than erroring so a
// new client-side session mode never breaks the chat turn.
const DefaultInstruction = "You are a mental health AI assistant trained in Cognitive Behavioral Therapy (CBT)."

var instructions = map[SessionType]string{
	FreeChat:         "You are a cognitive behavioral therapist and You are also a friendly conversational AI. Speak naturally, compassionately, and with sensitivity.Offer structured CBT responses to help users reframe their thoughts and keep responses informal and supportive.",
	GuidedReflection: "You are a reflective therapist guiding users through introspective questions. Focus on encouraging deeper thinking.",
	Meditation:       "You are a mindfulness coach. Provide calming, grounding, and meditation-related responses. The user is seeking relaxation and stress relief.",
	CognitiveSupport: "You are a cognitive behavioral therapist. Offer structured CBT responses to help users reframe their thoughts.",
	Journaling:       "You are a journaling coach. Encourage users to explore their emotions through writing and self-reflection.",
}

// Instruction returns the directive for a session type. Lookup tolerates
// spacing and case differences ("free chat", "FreeChat", "Free Chat" all
// resolve to the same directive).
func Instruction(sessionType SessionType) string {
	if s, ok := instructions[sessionType]; ok {
		return s
	}
	if s, ok := instructions[normalize(string(sessionType))]; ok {
		return s
	}
	return DefaultInstruction
}

// Known reports whether the session type maps to a dedicated directive.
func Known(sessionType SessionType) bool {
	if _, ok := instructions[sessionType]; ok {
		return true
	}
	_, ok := instructions[normalize(string(sessionType))]
	return ok
}

// Types lists the session types with dedicated directives.
func Types() []SessionType {
	return []SessionType{FreeChat, GuidedReflection, Meditation, CognitiveSupport, Journaling}
}

var canonical = func() map[string]SessionType {
	m := make(map[string]SessionType, len(instructions))
	for st := range instructions {
		m[foldKey(string(st))] = st
	}
	return m
}()

func normalize(raw string) SessionType {
	if st, ok := canonical[foldKey(raw)]; ok {
		return st
	}
	return SessionType(raw)
}

func foldKey(s string) string {
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, " ", "")
}
