package mcp

import (
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Papers lists and loads papers.
	Papers driving.PaperService

	// Chat answers questions in conversations.
	Chat driving.ChatService

	// Index searches paper collections. Optional; search_paper is not
	// registered without it.
	Index driving.IndexService

	// Summarization regenerates summaries. Optional; stored summaries are
	// served without it.
	Summarization driving.SummarizationService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Papers == nil {
		return ErrMissingPaperService
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
