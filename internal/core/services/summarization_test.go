package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

func tenSentences() string {
	var parts []string
	for _, w := range []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"} {
		parts = append(parts, "Sentence "+w+" has five words")
	}
	return strings.Join(parts, ". ")
}

func TestExtractiveSummary(t *testing.T) {
	text := tenSentences()

	got := ExtractiveSummary(text, 12)
	assert.Equal(t,
		"Sentence zero has five words. Sentence five has five words. Sentence nine has five words.",
		got)
	assert.Equal(t, got, ExtractiveSummary(text, 12), "summary must be deterministic")
}

func TestExtractiveSummary_ShortText(t *testing.T) {
	assert.Equal(t, "Only one sentence here", ExtractiveSummary("Only one sentence here", 200))
	assert.Equal(t, "First. Second", ExtractiveSummary("First. Second", 1))

	text := tenSentences()
	assert.Equal(t, text, ExtractiveSummary(text, 1000))
}

func TestSummarize_Abstractive(t *testing.T) {
	llm := &mockLLM{summary: "  A compact summary.  "}
	svc := NewSummarizationService(llm, nil, &mockPrompts{})
	usage := &mockUsage{}
	svc.SetUsageRecorder(usage, mockCounter{})

	long := strings.Repeat("x", 3000)
	got := svc.Summarize(context.Background(), long, 200, 100, domain.SummaryStrategyAbstractive)

	assert.Equal(t, "A compact summary.", got)
	require.Len(t, llm.summarised, 1)
	assert.Len(t, llm.summarised[0], summariserInputLimit)
	require.Len(t, usage.records, 1)
	assert.Equal(t, domain.OperationSummarization, usage.records[0].OperationType)
}

func TestSummarize_AbstractiveFallsBackToExtractive(t *testing.T) {
	text := tenSentences()

	failing := NewSummarizationService(&mockLLM{summaryErr: errors.New("model crashed")}, nil, &mockPrompts{})
	assert.Equal(t, ExtractiveSummary(text, 12), failing.Summarize(context.Background(), text, 12, 5, domain.SummaryStrategyAbstractive))

	missing := NewSummarizationService(nil, nil, &mockPrompts{})
	assert.Equal(t, ExtractiveSummary(text, 12), missing.Summarize(context.Background(), text, 12, 5, ""))
}

func TestSummarize_Extractive(t *testing.T) {
	llm := &mockLLM{summary: "unused"}
	svc := NewSummarizationService(llm, llm, &mockPrompts{})

	text := tenSentences()
	assert.Equal(t, ExtractiveSummary(text, 12), svc.Summarize(context.Background(), text, 12, 5, domain.SummaryStrategyExtractive))
	assert.Empty(t, llm.summarised)
	assert.Empty(t, llm.prompts)
}

func TestSummarizeWithLLM(t *testing.T) {
	llm := &mockLLM{response: "An LLM summary."}
	svc := NewSummarizationService(nil, llm, &mockPrompts{})

	got := svc.SummarizeWithLLM(context.Background(), "Paper text.", "short")
	assert.Equal(t, "An LLM summary.", got)
	assert.Contains(t, llm.lastPrompt(), "about 100-200 words")
	assert.Contains(t, llm.lastPrompt(), "Paper text.")
	assert.Equal(t, 400, llm.opts[0].MaxTokens)

	svc.SummarizeWithLLM(context.Background(), "Paper text.", "unknown")
	assert.Contains(t, llm.lastPrompt(), "about 200-500 words")
}

func TestSummarizeWithLLM_FallsBack(t *testing.T) {
	summariser := &mockLLM{summary: "From the summariser."}
	llm := &mockLLM{err: errors.New("rate limited")}
	svc := NewSummarizationService(summariser, llm, &mockPrompts{})

	assert.Equal(t, "From the summariser.", svc.SummarizeWithLLM(context.Background(), "text", "long"))

	noPrompts := NewSummarizationService(summariser, &mockLLM{response: "x"}, &mockPrompts{err: domain.ErrNotFound})
	assert.Equal(t, "From the summariser.", noPrompts.Summarize(context.Background(), "text", 200, 100, domain.SummaryStrategyLLM))
}

func TestGenerateMultiLengthSummaries(t *testing.T) {
	svc := NewSummarizationService(&mockLLM{summary: "summary"}, nil, &mockPrompts{})

	got := svc.GenerateMultiLengthSummaries(context.Background(), "text")
	assert.Equal(t, domain.Summaries{Short: "summary", Medium: "summary", Long: "summary"}, got)
}

func TestExtractKeyInsights(t *testing.T) {
	response := "Here is the analysis:\n```json\n" + `{
  "key_findings": ["attention is enough", "faster training"],
  "methodology": "encoder-decoder",
  "conclusions": "works well",
  "limitations": "quadratic cost",
  "future_work": "images"
}` + "\n```"
	llm := &mockLLM{response: response}
	svc := NewSummarizationService(nil, llm, &mockPrompts{})

	got := svc.ExtractKeyInsights(context.Background(), "paper text")
	assert.Equal(t, domain.KeyInsights{
		KeyFindings: []string{"attention is enough", "faster training"},
		Methodology: "encoder-decoder",
		Conclusions: "works well",
		Limitations: []string{"quadratic cost"},
		FutureWork:  "images",
	}, got)
	assert.Contains(t, llm.lastPrompt(), "paper text")
}

func TestExtractKeyInsights_Failures(t *testing.T) {
	tests := []struct {
		name string
		llm  *mockLLM
	}{
		{name: "backend error", llm: &mockLLM{err: domain.ErrLLMUnavailable}},
		{name: "not json", llm: &mockLLM{response: "I cannot help with that."}},
		{name: "broken json", llm: &mockLLM{response: `{"key_findings": [}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSummarizationService(nil, tt.llm, &mockPrompts{})
			assert.Equal(t, domain.EmptyKeyInsights(), svc.ExtractKeyInsights(context.Background(), "text"))
		})
	}

	svc := NewSummarizationService(nil, nil, &mockPrompts{})
	assert.Equal(t, domain.EmptyKeyInsights(), svc.ExtractKeyInsights(context.Background(), "text"))
}

func TestParseKeyInsights_MissingFields(t *testing.T) {
	got, ok := ParseKeyInsights(`{"methodology": "survey"}`)
	require.True(t, ok)
	assert.Equal(t, "survey", got.Methodology)
	assert.Equal(t, []string{}, got.KeyFindings)
	assert.Equal(t, []string{}, got.Limitations)
}
