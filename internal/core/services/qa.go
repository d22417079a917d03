package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Ensure QAService implements the interface.
var _ driving.AnswerService = (*QAService)(nil)

const (
	// answerTemperature keeps answers close to the retrieved context.
	answerTemperature = 0.1

	// historyTurns is the number of recent turns included in the prompt.
	historyTurns = 5

	// confidenceTopN is the number of best scores averaged into confidence.
	confidenceTopN = 3

	// maxSuggestions caps the number of suggested questions.
	maxSuggestions = 5

	noHistory = "No previous conversation."
)

// DefaultQuestions are suggested when the LLM cannot propose any.
func DefaultQuestions() []string {
	return []string{
		"What are the main contributions of this paper?",
		"What methodology was used?",
		"What are the key findings?",
		"What are the limitations?",
		"What future work is suggested?",
	}
}

// QAService answers questions from retrieved chunks.
type QAService struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	meter   usageMeter
}

// NewQAService creates a new question answering service.
// llm may be nil, in which case every answer fails.
func NewQAService(llm driven.LLMService, prompts driven.PromptStore) *QAService {
	return &QAService{
		llm:     llm,
		prompts: prompts,
	}
}

// SetUsageRecorder enables usage accounting. counter may be nil.
func (s *QAService) SetUsageRecorder(recorder driven.UsageRecorder, counter driven.TokenCounter) {
	s.meter = usageMeter{recorder: recorder, counter: counter}
}

// AnswerQuestion builds a prompt from retrieved chunks and recent history
// and asks the LLM for a cited answer.
func (s *QAService) AnswerQuestion(
	ctx context.Context,
	question string,
	retrieved []domain.RetrievedResult,
	history []domain.ConversationTurn,
) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnswerGeneration, domain.ErrLLMUnavailable)
	}

	template, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return nil, fmt.Errorf("%w: load prompt: %w", domain.ErrAnswerGeneration, err)
	}

	contextText := FormatContext(retrieved)
	prompt := fmt.Sprintf(template, FormatHistory(history), contextText, question)

	logger.Debug("answering with %d chunks and %d history turns", len(retrieved), len(history))
	response, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: answerTemperature})
	if err != nil {
		logger.Error("answer question with %s: %v", s.llm.ModelName(), err)
		return nil, fmt.Errorf("%w: %w", domain.ErrAnswerGeneration, err)
	}
	answer := strings.TrimSpace(response)
	s.meter.record(ctx, domain.OperationQA, s.llm.ModelName(), prompt, answer)

	return &domain.Answer{
		Answer:     answer,
		Sources:    Sources(retrieved),
		Confidence: Confidence(retrieved),
		TokensUsed: domain.TokenUsage{
			Prompt:     utf8.RuneCountInString(contextText) + utf8.RuneCountInString(question),
			Completion: utf8.RuneCountInString(answer),
		},
	}, nil
}

// SuggestQuestions proposes up to five questions about a paper summary.
// It falls back to DefaultQuestions and never fails.
func (s *QAService) SuggestQuestions(ctx context.Context, summary string) []string {
	if s.llm == nil {
		return DefaultQuestions()
	}

	template, err := s.prompts.Load(driven.PromptSuggestQuestions)
	if err != nil {
		logger.Warn("load suggest prompt: %v", err)
		return DefaultQuestions()
	}
	prompt := fmt.Sprintf(template, summary)

	response, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		logger.Error("suggest questions with %s: %v", s.llm.ModelName(), err)
		return DefaultQuestions()
	}
	s.meter.record(ctx, domain.OperationQuestionSuggestion, s.llm.ModelName(), prompt, response)

	questions := ParseQuestions(response)
	if len(questions) == 0 {
		return DefaultQuestions()
	}
	return questions
}

// ParseQuestions returns up to five non-empty lines with list dashes removed.
func ParseQuestions(response string) []string {
	var questions []string
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		q := strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "- "))
		if q == "" {
			continue
		}
		questions = append(questions, q)
		if len(questions) == maxSuggestions {
			break
		}
	}
	return questions
}

// FormatContext renders retrieved chunks as numbered source blocks.
func FormatContext(retrieved []domain.RetrievedResult) string {
	parts := make([]string, len(retrieved))
	for i, r := range retrieved {
		section := r.Metadata.Section
		if section == "" {
			section = "Unknown"
		}
		page := "Unknown"
		if r.Metadata.PageNumber > 0 {
			page = strconv.Itoa(r.Metadata.PageNumber)
		}
		parts[i] = fmt.Sprintf("[Source %d - %s, Page %s]:\n%s\n", i+1, section, page, r.Content)
	}
	return strings.Join(parts, "\n")
}

// FormatHistory renders the last five turns as "Role: content" lines.
func FormatHistory(history []domain.ConversationTurn) string {
	if len(history) == 0 {
		return noHistory
	}
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	lines := make([]string, len(history))
	for i, turn := range history {
		role := turn.Role
		if role == "" {
			role = domain.RoleUser
		}
		lines[i] = role.Title() + ": " + turn.Content
	}
	return strings.Join(lines, "\n")
}

// Confidence is the mean of the best three similarity scores, clamped to
// [0,1]. It is 0 when nothing was retrieved.
func Confidence(retrieved []domain.RetrievedResult) float64 {
	if len(retrieved) == 0 {
		return 0
	}
	scores := make([]float64, len(retrieved))
	for i, r := range retrieved {
		scores[i] = r.SimilarityScore
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	if len(scores) > confidenceTopN {
		scores = scores[:confidenceTopN]
	}

	var sum float64
	for _, sc := range scores {
		sum += sc
	}
	return min(1, max(0, sum/float64(len(scores))))
}

// Sources cites every retrieved chunk in retrieval order.
func Sources(retrieved []domain.RetrievedResult) []domain.Source {
	sources := make([]domain.Source, len(retrieved))
	for i, r := range retrieved {
		sources[i] = domain.Source{
			ChunkID:         r.ID,
			ContentPreview:  truncate(r.Content, domain.PreviewLength) + "...",
			Page:            r.Metadata.PageNumber,
			Section:         r.Metadata.Section,
			SimilarityScore: r.SimilarityScore,
		}
	}
	return sources
}
