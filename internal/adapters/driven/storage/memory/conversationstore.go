package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of driven.ConversationStore.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]domain.Conversation
	order         []string
	messages      map[string][]domain.Message
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]domain.Conversation),
		messages:      make(map[string][]domain.Message),
	}
}

// CreateConversation stores a new conversation.
func (s *ConversationStore) CreateConversation(_ context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conv.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.conversations[conv.ID] = *conv
	s.order = append(s.order, conv.ID)
	return nil
}

// GetConversation retrieves a conversation by ID.
func (s *ConversationStore) GetConversation(_ context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &conv, nil
}

// ListConversations returns the conversations of a paper in creation order.
func (s *ConversationStore) ListConversations(_ context.Context, paperID string) ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Conversation
	for _, id := range s.order {
		if conv := s.conversations[id]; conv.PaperID == paperID {
			result = append(result, conv)
		}
	}
	return result, nil
}

// AddMessage appends a message and bumps the conversation's UpdatedAt.
func (s *ConversationStore) AddMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[msg.ConversationID]
	if !ok {
		return domain.ErrNotFound
	}
	m := *msg
	m.CitedChunks = append([]string(nil), msg.CitedChunks...)
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], m)
	if msg.CreatedAt.After(conv.UpdatedAt) {
		conv.UpdatedAt = msg.CreatedAt
		s.conversations[conv.ID] = conv
	}
	return nil
}

// GetMessages returns the messages of a conversation, oldest first.
func (s *ConversationStore) GetMessages(_ context.Context, conversationID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return nil, domain.ErrNotFound
	}
	return append([]domain.Message(nil), s.messages[conversationID]...), nil
}

// DeleteConversations removes every conversation of a paper.
func (s *ConversationStore) DeleteConversations(_ context.Context, paperID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.order[:0]
	for _, id := range s.order {
		if s.conversations[id].PaperID == paperID {
			delete(s.conversations, id)
			delete(s.messages, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return nil
}
