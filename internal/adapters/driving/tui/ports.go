// Package tui provides an interactive terminal user interface for paperqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Papers lists, processes and deletes papers.
	Papers driving.PaperService

	// Chat answers questions about a ready paper.
	Chat driving.ChatService
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
