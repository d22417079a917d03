package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

const (
	defaultWidth = 80
	maxWidth     = 100
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
)

// terminalWidth returns the width used to wrap long text.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return min(w, maxWidth)
}

// wrap wraps text to the terminal width.
func wrap(text string) string {
	return lipgloss.NewStyle().Width(terminalWidth()).Render(text)
}

func statusLabel(status domain.PaperStatus) string {
	switch status {
	case domain.PaperStatusReady:
		return successStyle.Render(string(status))
	case domain.PaperStatusFailed:
		return errorStyle.Render(string(status))
	default:
		return warningStyle.Render(string(status))
	}
}

func pageLabel(page int) string {
	if page <= 0 {
		return "page ?"
	}
	return fmt.Sprintf("page %d", page)
}

// renderAnswer prints an answer followed by its cited sources.
func renderAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(wrap(answer.Answer))
	cmd.Println()
	cmd.Println(mutedStyle.Render(fmt.Sprintf("Confidence: %.2f  Tokens: %d prompt, %d completion",
		answer.Confidence, answer.TokensUsed.Prompt, answer.TokensUsed.Completion)))

	if len(answer.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(headerStyle.Render("Sources"))
	for i, s := range answer.Sources {
		cmd.Printf("  [%d] %s, %s (%.2f)\n", i+1, s.Section, pageLabel(s.Page), s.SimilarityScore)
		cmd.Printf("      %s\n", mutedStyle.Render(oneLine(s.ContentPreview)))
	}
}

// renderResults prints retrieved chunks in rank order.
func renderResults(cmd *cobra.Command, results []domain.RetrievedResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}
	for i, r := range results {
		cmd.Printf("  [%d] %s, %s (%.2f)\n", i+1, r.Metadata.Section, pageLabel(r.Metadata.PageNumber), r.SimilarityScore)
		cmd.Printf("      %s\n", mutedStyle.Render(oneLine(preview(r.Content))))
		cmd.Println()
	}
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= domain.PreviewLength {
		return s
	}
	return string(runes[:domain.PreviewLength]) + "..."
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
