package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstruction_PerSessionType(t *testing.T) {
	tests := []struct {
		sessionType SessionType
		contains    string
	}{
		{FreeChat, "friendly conversational AI"},
		{GuidedReflection, "reflective therapist"},
		{Meditation, "mindfulness coach"},
		{CognitiveSupport, "reframe their thoughts"},
		{Journaling, "journaling coach"},
	}
	for _, tt := range tests {
		t.Run(string(tt.sessionType), func(t *testing.T) {
			got := Instruction(tt.sessionType)
			assert.Contains(t, got, tt.contains)
			assert.NotEqual(t, DefaultInstruction, got)
		})
	}
}

func TestInstruction_UnknownFallsBack(t *testing.T) {
	assert.Equal(t, DefaultInstruction, Instruction(""))
	assert.Equal(t, DefaultInstruction, Instruction("Astrology"))
}

func TestInstruction_LenientLookup(t *testing.T) {
	want := Instruction(Meditation)
	assert.Equal(t, want, Instruction("meditation"))
	assert.Equal(t, want, Instruction("MEDITATION"))

	assert.Equal(t, Instruction(FreeChat), Instruction("FreeChat"))
	assert.Equal(t, Instruction(GuidedReflection), Instruction("guided reflection"))
}

func TestKnown(t *testing.T) {
	for _, st := range Types() {
		assert.True(t, Known(st), "%s should be known", st)
	}
	assert.False(t, Known("Tarot"))
}

func TestTypes_CoverInstructionTable(t *testing.T) {
	types := Types()
	assert.Len(t, types, len(instructions))
	for _, st := range types {
		if _, ok := instructions[st]; !ok {
			t.Errorf("Types lists %s but the instruction table lacks it", st)
		}
	}
}

func TestInstructions_EndWithPeriod(t *testing.T) {
	for st, text := range instructions {
		if !strings.HasSuffix(text, ".") {
			t.Errorf("%s directive does not end a sentence: %q", st, text)
		}
	}
}
