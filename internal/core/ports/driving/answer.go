package driving

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// AnswerService answers questions from retrieved chunks.
type AnswerService interface {
	// AnswerQuestion generates a cited answer.
	AnswerQuestion(ctx context.Context, question string, retrieved []domain.RetrievedResult, history []domain.ConversationTurn) (*domain.Answer, error)

	// SuggestQuestions proposes up to five questions about a paper summary.
	SuggestQuestions(ctx context.Context, summary string) []string
}

// ChatService runs conversations about a processed paper.
type ChatService interface {
	// StartConversation creates a conversation about a paper.
	StartConversation(ctx context.Context, paperID, title string) (*domain.Conversation, error)

	// Ask answers a question within a conversation and stores both turns.
	Ask(ctx context.Context, conversationID, question string, topK int) (*domain.Answer, error)

	// History returns the messages of a conversation, oldest first.
	History(ctx context.Context, conversationID string) ([]domain.Message, error)

	// SuggestQuestions proposes questions about a paper from its summary.
	SuggestQuestions(ctx context.Context, paperID string) ([]string, error)
}
