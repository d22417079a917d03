// Package paper provides the paper detail view for the TUI.
package paper

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// reservedLines is the height taken by the title, separator and help.
const reservedLines = 6

// suggestionsLoaded carries suggested questions for the shown paper.
type suggestionsLoaded struct {
	paperID   string
	questions []string
}

// View shows one paper's summaries and insights.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	chat   driving.ChatService

	paper       *domain.Paper
	length      int
	suggestions []string
	offset      int
	width       int
	height      int
	err         error
}

// NewView creates a paper detail view. chat may be nil.
func NewView(s *styles.Styles, chat driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		chat:   chat,
		length: 1,
		width:  80,
		height: 24,
	}
}

// SetPaper replaces the shown paper and returns a command that loads suggestions.
func (v *View) SetPaper(p domain.Paper) tea.Cmd {
	v.paper = &p
	v.offset = 0
	v.suggestions = nil
	v.err = nil

	if v.chat == nil || p.Status != domain.PaperStatusReady {
		return nil
	}
	chat := v.chat
	return func() tea.Msg {
		questions, err := chat.SuggestQuestions(context.Background(), p.ID)
		if err != nil {
			return suggestionsLoaded{paperID: p.ID}
		}
		return suggestionsLoaded{paperID: p.ID, questions: questions}
	}
}

// Paper returns the shown paper.
func (v *View) Paper() *domain.Paper {
	return v.paper
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the paper view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case suggestionsLoaded:
		if v.paper != nil && v.paper.ID == msg.paperID {
			v.suggestions = msg.questions
		}

	case messages.ErrorOccurred:
		v.err = msg.Err

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.offset > 0 {
			v.offset--
		}
	case key.Matches(msg, v.keys.Down):
		if v.offset < v.maxOffset() {
			v.offset++
		}
	case key.Matches(msg, v.keys.Length):
		v.length = (v.length + 1) % len(domain.SummaryLengths())
		v.offset = 0
	case key.Matches(msg, v.keys.AskPaper):
		if v.paper == nil {
			return v, nil
		}
		if v.paper.Status != domain.PaperStatusReady {
			v.err = fmt.Errorf("%w: %s", domain.ErrPaperNotReady, v.paper.Status)
			return v, nil
		}
		p := *v.paper
		return v, func() tea.Msg { return messages.AskRequested{Paper: p} }
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewPapers} }
	}
	return v, nil
}

// SummaryLength returns the name of the shown summary length.
func (v *View) SummaryLength() string {
	return domain.SummaryLengths()[v.length].Name
}

func (v *View) summary() string {
	switch v.SummaryLength() {
	case "short":
		return v.paper.ShortSummary
	case "long":
		return v.paper.LongSummary
	default:
		return v.paper.MediumSummary
	}
}

func (v *View) visibleLines() int {
	return max(v.height-reservedLines, 1)
}

func (v *View) maxOffset() int {
	return max(len(v.content())-v.visibleLines(), 0)
}

// content builds the scrollable body of the view.
func (v *View) content() []string {
	if v.paper == nil {
		return nil
	}
	p := v.paper
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))

	lines := []string{
		field("ID", p.ID),
		field("Title", p.Title),
	}
	if p.ArxivID != "" {
		lines = append(lines, field("arXiv", p.ArxivID))
	}
	if p.Authors != "" {
		lines = append(lines, field("Authors", p.Authors))
	}
	lines = append(lines,
		field("Status", v.styles.StatusStyle(p.Status).Render(string(p.Status))),
		field("Pages", fmt.Sprintf("%d", p.NumPages)),
		field("Chunks", fmt.Sprintf("%d", p.NumChunks)),
	)
	if p.ProcessingError != "" {
		lines = append(lines, field("Error", v.styles.Error.Render(p.ProcessingError)))
	}

	section := func(title, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		lines = append(lines, "", v.styles.Subtitle.Render(title))
		lines = append(lines, strings.Split(wrap.Render(body), "\n")...)
	}

	section(fmt.Sprintf("Summary (%s)", v.SummaryLength()), v.summary())
	if len(p.KeyFindings) > 0 {
		lines = append(lines, "", v.styles.Subtitle.Render("Key findings"))
		for _, f := range p.KeyFindings {
			lines = append(lines, strings.Split(wrap.Render("- "+f), "\n")...)
		}
	}
	section("Methodology", p.Methodology)
	section("Conclusion", p.Conclusion)

	if len(v.suggestions) > 0 {
		lines = append(lines, "", v.styles.Subtitle.Render("Suggested questions"))
		for _, q := range v.suggestions {
			lines = append(lines, "  "+v.styles.Citation.Render(q))
		}
	}
	return lines
}

func field(label, value string) string {
	return fmt.Sprintf("%-10s %s", label+":", value)
}

// View renders the paper view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Paper"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 10), 60)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	lines := v.content()
	if len(lines) == 0 {
		b.WriteString(v.styles.Muted.Render("No paper selected"))
	} else {
		end := min(v.offset+v.visibleLines(), len(lines))
		b.WriteString(strings.Join(lines[v.offset:end], "\n"))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(keymap.HelpLine(v.keys.PaperHelp()...)))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.offset = min(v.offset, v.maxOffset())
}

// Err returns the last error shown by the view.
func (v *View) Err() error {
	return v.err
}

// Suggestions returns the loaded suggested questions.
func (v *View) Suggestions() []string {
	return v.suggestions
}
