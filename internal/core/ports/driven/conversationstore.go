package driven

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// ConversationStore persists conversations and their messages.
type ConversationStore interface {
	// CreateConversation stores a new conversation.
	CreateConversation(ctx context.Context, conv *domain.Conversation) error

	// GetConversation retrieves a conversation by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)

	// ListConversations returns the conversations of a paper.
	ListConversations(ctx context.Context, paperID string) ([]domain.Conversation, error)

	// AddMessage appends a message to a conversation.
	AddMessage(ctx context.Context, msg *domain.Message) error

	// GetMessages returns the messages of a conversation, oldest first.
	GetMessages(ctx context.Context, conversationID string) ([]domain.Message, error)

	// DeleteConversations removes every conversation of a paper.
	DeleteConversations(ctx context.Context, paperID string) error
}
