package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

func TestSummaryPrompt(t *testing.T) {
	prompt, opts := SummaryPrompt("paper body", 500, 200)

	assert.Contains(t, prompt, "200 to 500 words")
	assert.Contains(t, prompt, "paper body")
	assert.Equal(t, 1000, opts.MaxTokens)
	assert.InDelta(t, 0.3, opts.Temperature, 1e-9)
}

func TestCleanSummary(t *testing.T) {
	assert.Equal(t, "A result.", CleanSummary("  A result.\n"))
	assert.Equal(t, "A result.", CleanSummary("Summary: A result."))
	assert.Equal(t, "The Summary: part", CleanSummary("The Summary: part"))
}

func TestSplitSystem(t *testing.T) {
	system, turns := SplitSystem([]driven.ChatMessage{
		{Role: "system", Content: "cite sources"},
		{Role: "user", Content: "first question"},
		{Role: "user", Content: "second question"},
		{Role: "assistant", Content: "answer"},
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "follow up"},
	})

	assert.Equal(t, "cite sources\n\nbe brief", system)
	require.Len(t, turns, 3)
	assert.Equal(t, "first question\n\nsecond question", turns[0].Content)
	assert.Equal(t, "assistant", turns[1].Role)
	assert.Equal(t, "follow up", turns[2].Content)
}

func TestSplitSystem_NoSystem(t *testing.T) {
	system, turns := SplitSystem([]driven.ChatMessage{{Role: "user", Content: "q"}})

	assert.Empty(t, system)
	assert.Len(t, turns, 1)
}
