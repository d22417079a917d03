package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// CreateConversation stores a new conversation.
func (s *conversationStore) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	now := time.Now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversations (id, paper_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, conv.ID, conv.PaperID, conv.Title, conv.CreatedAt.UTC(), conv.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("creating conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: conversation %s", domain.ErrAlreadyExists, conv.ID)
	}
	return nil
}

// GetConversation retrieves a conversation by ID.
func (s *conversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, paper_id, title, created_at, updated_at
		FROM conversations WHERE id = ?
	`, id).Scan(&c.ID, &c.PaperID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}
	return &c, nil
}

// ListConversations returns the conversations of a paper in creation order.
func (s *conversationStore) ListConversations(ctx context.Context, paperID string) ([]domain.Conversation, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, paper_id, title, created_at, updated_at
		FROM conversations WHERE paper_id = ?
		ORDER BY created_at, rowid
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.PaperID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		convs = append(convs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}
	return convs, nil
}

// AddMessage appends a message and bumps the conversation's UpdatedAt.
func (s *conversationStore) AddMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	createdAt := msg.CreatedAt.UTC()

	cited, err := marshalJSON(msg.CitedChunks)
	if err != nil {
		return fmt.Errorf("marshalling cited chunks: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var updatedAt time.Time
	err = tx.QueryRowContext(ctx, "SELECT updated_at FROM conversations WHERE id = ?", msg.ConversationID).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("getting conversation: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, cited_chunks,
			confidence_score, prompt_tokens, completion_tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.ConversationID, string(msg.Role), msg.Content, cited,
		msg.ConfidenceScore, msg.PromptTokens, msg.CompletionTokens, createdAt)
	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}

	if createdAt.After(updatedAt) {
		if _, err := tx.ExecContext(ctx, "UPDATE conversations SET updated_at = ? WHERE id = ?",
			createdAt, msg.ConversationID); err != nil {
			return fmt.Errorf("updating conversation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetMessages returns the messages of a conversation, oldest first.
func (s *conversationStore) GetMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, cited_chunks,
			confidence_score, prompt_tokens, completion_tokens, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY seq
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.Message
		var role, cited string
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &cited,
			&m.ConfidenceScore, &m.PromptTokens, &m.CompletionTokens, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Role = domain.Role(role)
		if err := unmarshalJSON(cited, &m.CitedChunks); err != nil {
			return nil, fmt.Errorf("unmarshalling cited chunks: %w", err)
		}
		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return msgs, nil
}

// DeleteConversations removes every conversation of a paper.
// Messages cascade.
func (s *conversationStore) DeleteConversations(ctx context.Context, paperID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM conversations WHERE paper_id = ?", paperID); err != nil {
		return fmt.Errorf("deleting conversations: %w", err)
	}
	return nil
}
