// Package llm holds the prompt conventions shared by the model adapters in
// its subpackages.
package llm

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

const summaryTemplate = `Summarise the following text in %d to %d words.
Keep the main contributions, methods and findings. Do not add information.

Text:
%s

Summary:`

// tokensPerWord sizes the completion budget of a summary.
const tokensPerWord = 2

// SummaryPrompt builds the Summarise request for a word range.
func SummaryPrompt(content string, maxLength, minLength int) (string, driven.GenerateOptions) {
	return fmt.Sprintf(summaryTemplate, minLength, maxLength, content), driven.GenerateOptions{
		MaxTokens:   maxLength * tokensPerWord,
		Temperature: 0.3,
	}
}

// CleanSummary trims whitespace and a leading "Summary:" echoed by some
// models.
func CleanSummary(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "Summary:"); ok {
		s = strings.TrimSpace(rest)
	}
	return s
}

// SplitSystem separates system messages from the conversation and merges
// consecutive turns of the same role, as providers with strict user and
// assistant alternation require. A stored conversation can hold two user
// turns in a row when an answer failed.
func SplitSystem(messages []driven.ChatMessage) (string, []driven.ChatMessage) {
	var system []string
	turns := make([]driven.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		if n := len(turns); n > 0 && turns[n-1].Role == m.Role {
			turns[n-1].Content += "\n\n" + m.Content
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}
