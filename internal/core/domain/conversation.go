package domain

import (
	"strings"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// Title returns the role with its first letter capitalised.
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ConversationTurn is a single message in prompt history.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is a chat thread about one paper.
type Conversation struct {
	ID        string    `json:"id"`
	PaperID   string    `json:"paper_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a persisted conversation turn with answer provenance.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id" validate:"required"`
	Role           Role   `json:"role" validate:"required,oneof=user assistant system"`
	Content        string `json:"content" validate:"required"`

	// CitedChunks holds the embedding ids used to answer.
	CitedChunks []string `json:"cited_chunks,omitempty"`

	ConfidenceScore  float64   `json:"confidence_score"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	CreatedAt        time.Time `json:"created_at"`
}

// Turn converts the message to prompt history.
func (m Message) Turn() ConversationTurn {
	return ConversationTurn{Role: m.Role, Content: m.Content}
}
