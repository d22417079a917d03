package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Ensure SummarizationService implements the interface.
var _ driving.SummarizationService = (*SummarizationService)(nil)

// Input caps in characters.
const (
	summariserInputLimit = 1024
	llmInputLimit        = 8000
)

// SummarizationService produces paper summaries and key insights.
type SummarizationService struct {
	summariser driven.LLMService
	llm        driven.LLMService
	prompts    driven.PromptStore
	meter      usageMeter
}

// NewSummarizationService creates a new summarization service.
// summariser and llm are optional; without them summaries use the
// extractive fallback and insights are empty.
func NewSummarizationService(summariser, llm driven.LLMService, prompts driven.PromptStore) *SummarizationService {
	return &SummarizationService{
		summariser: summariser,
		llm:        llm,
		prompts:    prompts,
	}
}

// SetUsageRecorder enables usage accounting. counter may be nil.
func (s *SummarizationService) SetUsageRecorder(recorder driven.UsageRecorder, counter driven.TokenCounter) {
	s.meter = usageMeter{recorder: recorder, counter: counter}
}

// Summarize returns a summary of at most maxLength words.
// Backend failures fall back to the extractive summary.
func (s *SummarizationService) Summarize(
	ctx context.Context,
	text string,
	maxLength, minLength int,
	strategy domain.SummaryStrategy,
) string {
	switch strategy {
	case domain.SummaryStrategyExtractive:
		return ExtractiveSummary(text, maxLength)
	case domain.SummaryStrategyLLM:
		return s.llmSummary(ctx, text, maxLength, minLength)
	default:
		return s.abstractiveSummary(ctx, text, maxLength, minLength)
	}
}

func (s *SummarizationService) abstractiveSummary(ctx context.Context, text string, maxLength, minLength int) string {
	if s.summariser == nil {
		return ExtractiveSummary(text, maxLength)
	}

	input := truncate(text, summariserInputLimit)
	summary, err := s.summariser.Summarise(ctx, input, maxLength, minLength)
	if err != nil || strings.TrimSpace(summary) == "" {
		logger.Warn("summarise with %s failed, using extractive summary: %v", s.summariser.ModelName(), err)
		return ExtractiveSummary(text, maxLength)
	}

	s.meter.record(ctx, domain.OperationSummarization, s.summariser.ModelName(), input, summary)
	return strings.TrimSpace(summary)
}

// SummarizeWithLLM summarises with the general LLM at a named length:
// short, medium or long. Unknown lengths use medium.
func (s *SummarizationService) SummarizeWithLLM(ctx context.Context, text, length string) string {
	budget := summaryLength(length)
	return s.llmSummary(ctx, text, budget.MaxLength, budget.MinLength)
}

func (s *SummarizationService) llmSummary(ctx context.Context, text string, maxLength, minLength int) string {
	if s.llm == nil {
		return s.abstractiveSummary(ctx, text, maxLength, minLength)
	}

	template, err := s.prompts.Load(driven.PromptSummarise)
	if err != nil {
		logger.Warn("load summarise prompt: %v", err)
		return s.abstractiveSummary(ctx, text, maxLength, minLength)
	}

	instruction := fmt.Sprintf("about %d-%d words", minLength, maxLength)
	prompt := fmt.Sprintf(template, instruction, truncate(text, llmInputLimit))

	summary, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: maxLength * 2})
	if err != nil || strings.TrimSpace(summary) == "" {
		logger.Warn("llm summary with %s failed: %v", s.llm.ModelName(), err)
		return s.abstractiveSummary(ctx, text, maxLength, minLength)
	}

	s.meter.record(ctx, domain.OperationSummarization, s.llm.ModelName(), prompt, summary)
	return strings.TrimSpace(summary)
}

// GenerateMultiLengthSummaries returns short, medium and long summaries.
func (s *SummarizationService) GenerateMultiLengthSummaries(ctx context.Context, text string) domain.Summaries {
	var out domain.Summaries
	for _, l := range domain.SummaryLengths() {
		summary := s.Summarize(ctx, text, l.MaxLength, l.MinLength, domain.SummaryStrategyAbstractive)
		switch l.Name {
		case "short":
			out.Short = summary
		case "medium":
			out.Medium = summary
		case "long":
			out.Long = summary
		}
	}
	return out
}

// ExtractKeyInsights asks the LLM for structured insights. Any failure
// yields domain.EmptyKeyInsights.
func (s *SummarizationService) ExtractKeyInsights(ctx context.Context, text string) domain.KeyInsights {
	if s.llm == nil {
		logger.Debug("no LLM configured, skipping key insights")
		return domain.EmptyKeyInsights()
	}

	template, err := s.prompts.Load(driven.PromptKeyInsights)
	if err != nil {
		logger.Warn("load key insights prompt: %v", err)
		return domain.EmptyKeyInsights()
	}
	prompt := fmt.Sprintf(template, truncate(text, llmInputLimit))

	response, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		logger.Error("extract key insights with %s: %v", s.llm.ModelName(), err)
		return domain.EmptyKeyInsights()
	}
	s.meter.record(ctx, domain.OperationKeyInsight, s.llm.ModelName(), prompt, response)

	insights, ok := ParseKeyInsights(response)
	if !ok {
		logger.Error("extract key insights: response is not a JSON object")
		return domain.EmptyKeyInsights()
	}
	return insights
}

// ParseKeyInsights reads the JSON object in an LLM response. Text around
// the object, such as a markdown fence, is ignored.
func ParseKeyInsights(response string) (domain.KeyInsights, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end < start {
		return domain.EmptyKeyInsights(), false
	}
	raw := response[start : end+1]
	if !gjson.Valid(raw) {
		return domain.EmptyKeyInsights(), false
	}

	parsed := gjson.Parse(raw)
	insights := domain.EmptyKeyInsights()
	insights.KeyFindings = stringList(parsed.Get("key_findings"))
	insights.Methodology = parsed.Get("methodology").String()
	insights.Conclusions = parsed.Get("conclusions").String()
	insights.Limitations = stringList(parsed.Get("limitations"))
	insights.FutureWork = parsed.Get("future_work").String()
	return insights, true
}

// stringList returns the non-empty strings of a JSON array, or the value
// itself when it is a single string.
func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.Exists() {
		return out
	}
	if !v.IsArray() {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ExtractiveSummary selects sentences without any model: the first, middle
// and last sentence, or every sentence when the text is short enough.
func ExtractiveSummary(text string, maxLength int) string {
	sentences := strings.Split(text, ". ")
	n := len(sentences)

	keep := 3
	if words := len(strings.Fields(text)); words > 0 {
		avg := float64(words) / float64(n)
		keep = int(float64(maxLength) / avg)
	}
	keep = max(2, min(keep, n))

	if n <= keep {
		return strings.Join(sentences, ". ")
	}
	return strings.Join([]string{sentences[0], sentences[n/2], sentences[n-1]}, ". ") + "."
}

func summaryLength(name string) domain.SummaryLength {
	var medium domain.SummaryLength
	for _, l := range domain.SummaryLengths() {
		if l.Name == name {
			return l
		}
		if l.Name == "medium" {
			medium = l
		}
	}
	return medium
}
