package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService runs conversations about processed papers.
type ChatService struct {
	papers        driven.PaperStore
	conversations driven.ConversationStore
	index         driving.IndexService
	answers       driving.AnswerService
	defaultTopK   int
}

// NewChatService creates a new chat service. A non-positive defaultTopK
// uses domain.DefaultTopK.
func NewChatService(
	papers driven.PaperStore,
	conversations driven.ConversationStore,
	index driving.IndexService,
	answers driving.AnswerService,
	defaultTopK int,
) *ChatService {
	if defaultTopK <= 0 {
		defaultTopK = domain.DefaultTopK
	}
	return &ChatService{
		papers:        papers,
		conversations: conversations,
		index:         index,
		answers:       answers,
		defaultTopK:   defaultTopK,
	}
}

// StartConversation creates a conversation about a paper.
func (s *ChatService) StartConversation(ctx context.Context, paperID, title string) (*domain.Conversation, error) {
	paper, err := s.papers.Get(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("get paper %s: %w", paperID, err)
	}

	if strings.TrimSpace(title) == "" {
		title = "Questions about " + paperTitle(paper)
	}
	now := time.Now()
	conv := &domain.Conversation{
		ID:        uuid.New().String(),
		PaperID:   paper.ID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	logger.Debug("started conversation %s about paper %s", conv.ID, paper.ID)
	return conv, nil
}

// Ask answers a question within a conversation. Both turns are stored
// once the answer has been generated.
func (s *ChatService) Ask(ctx context.Context, conversationID, question string, topK int) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", conversationID, err)
	}
	paper, err := s.readyPaper(ctx, conv.PaperID)
	if err != nil {
		return nil, err
	}

	messages, err := s.conversations.GetMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	history := make([]domain.ConversationTurn, len(messages))
	for i, m := range messages {
		history[i] = m.Turn()
	}

	retrieved, err := s.index.Search(ctx, paper.CollectionName, question, topK, nil)
	if err != nil {
		return nil, err
	}

	answer, err := s.answers.AnswerQuestion(ctx, question, retrieved, history)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMsg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Role:           domain.RoleUser,
		Content:        question,
		CreatedAt:      now,
	}
	assistantMsg := &domain.Message{
		ID:               uuid.New().String(),
		ConversationID:   conv.ID,
		Role:             domain.RoleAssistant,
		Content:          answer.Answer,
		CitedChunks:      answer.ChunkIDs(),
		ConfidenceScore:  answer.Confidence,
		PromptTokens:     answer.TokensUsed.Prompt,
		CompletionTokens: answer.TokensUsed.Completion,
		CreatedAt:        now,
	}
	// The exchange is stored as a pair; an empty answer is returned but
	// leaves the history untouched.
	if answer.Answer == "" {
		logger.Warn("empty answer in conversation %s, exchange not stored", conv.ID)
		return answer, nil
	}
	pair := []*domain.Message{userMsg, assistantMsg}
	for _, msg := range pair {
		if err := validateRecord(msg); err != nil {
			return nil, err
		}
	}
	for _, msg := range pair {
		if err := s.conversations.AddMessage(ctx, msg); err != nil {
			return nil, fmt.Errorf("store %s message: %w", msg.Role, err)
		}
	}

	logger.Debug("answered in conversation %s with confidence %.2f", conv.ID, answer.Confidence)
	return answer, nil
}

// History returns the messages of a conversation, oldest first.
func (s *ChatService) History(ctx context.Context, conversationID string) ([]domain.Message, error) {
	messages, err := s.conversations.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get history %s: %w", conversationID, err)
	}
	return messages, nil
}

// SuggestQuestions proposes questions from the paper's shortest summary.
func (s *ChatService) SuggestQuestions(ctx context.Context, paperID string) ([]string, error) {
	paper, err := s.papers.Get(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("get paper %s: %w", paperID, err)
	}

	summary := firstNonEmpty(paper.ShortSummary, paper.MediumSummary, paper.LongSummary)
	if summary == "" {
		return DefaultQuestions(), nil
	}
	return s.answers.SuggestQuestions(ctx, summary), nil
}

func (s *ChatService) readyPaper(ctx context.Context, paperID string) (*domain.Paper, error) {
	paper, err := s.papers.Get(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("get paper %s: %w", paperID, err)
	}
	if paper.Status != domain.PaperStatusReady {
		return nil, fmt.Errorf("%w: paper %s is %s", domain.ErrPaperNotReady, paper.ID, paper.Status)
	}
	return paper, nil
}

func paperTitle(p *domain.Paper) string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
