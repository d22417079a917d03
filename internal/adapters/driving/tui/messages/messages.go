// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewPapers lists the papers in the library.
	ViewPapers
	// ViewPaper shows the summaries and insights of one paper.
	ViewPaper
	// ViewAsk is the question and answer view for one paper.
	ViewAsk
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewPapers:
		return "papers"
	case ViewPaper:
		return "paper"
	case ViewAsk:
		return "ask"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// PapersLoaded carries the list of papers from the service.
type PapersLoaded struct {
	Papers []domain.Paper
	Err    error
}

// PaperSelected signals a paper was opened from the list.
type PaperSelected struct {
	Paper domain.Paper
}

// PaperProcessed signals that a processing run finished.
type PaperProcessed struct {
	PaperID string
	Paper   *domain.Paper
	Err     error
}

// PaperDeleted signals a paper was deleted.
type PaperDeleted struct {
	PaperID string
	Err     error
}

// AskRequested opens the ask view for a paper.
type AskRequested struct {
	Paper domain.Paper
}

// AnswerReceived carries an answer back to the ask view.
type AnswerReceived struct {
	ConversationID string
	Question       string
	Answer         *domain.Answer
	Err            error
}
