// Package papers provides the paper library view for the TUI.
package papers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// errNoService is reported when the view has no paper service.
var errNoService = errors.New("paper service not available")

// View lists papers and runs processing or deletion on the selection.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	service driving.PaperService

	papers     []domain.Paper
	selected   int
	processing map[string]bool
	width      int
	height     int
	loading    bool
	err        error
}

// NewView creates a paper list view.
func NewView(s *styles.Styles, service driving.PaperService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:     s,
		keys:       keymap.DefaultKeyMap(),
		service:    service,
		processing: make(map[string]bool),
		width:      80,
		height:     24,
	}
}

// Init loads the papers.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		if v.service == nil {
			return messages.PapersLoaded{Err: errNoService}
		}
		papers, err := v.service.List(context.Background())
		return messages.PapersLoaded{Papers: papers, Err: err}
	}
}

func (v *View) process(id string) tea.Cmd {
	return func() tea.Msg {
		if v.service == nil {
			return messages.PaperProcessed{PaperID: id, Err: errNoService}
		}
		paper, err := v.service.Process(context.Background(), id)
		return messages.PaperProcessed{PaperID: id, Paper: paper, Err: err}
	}
}

func (v *View) remove(id string) tea.Cmd {
	return func() tea.Msg {
		if v.service == nil {
			return messages.PaperDeleted{PaperID: id, Err: errNoService}
		}
		return messages.PaperDeleted{PaperID: id, Err: v.service.Delete(context.Background(), id)}
	}
}

// Update handles messages for the paper list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.PapersLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.papers = msg.Papers
			if v.selected >= len(v.papers) {
				v.selected = max(len(v.papers)-1, 0)
			}
		}

	case messages.PaperProcessed:
		delete(v.processing, msg.PaperID)
		v.err = msg.Err
		return v, v.load()

	case messages.PaperDeleted:
		v.err = msg.Err
		if msg.Err == nil {
			return v, v.load()
		}
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keys.Down):
		if v.selected < len(v.papers)-1 {
			v.selected++
		}
	case key.Matches(msg, v.keys.Select):
		if paper := v.SelectedPaper(); paper != nil {
			selected := *paper
			return v, func() tea.Msg { return messages.PaperSelected{Paper: selected} }
		}
	case key.Matches(msg, v.keys.Process):
		if paper := v.SelectedPaper(); paper != nil && !v.processing[paper.ID] {
			v.processing[paper.ID] = true
			return v, v.process(paper.ID)
		}
	case key.Matches(msg, v.keys.Delete):
		if paper := v.SelectedPaper(); paper != nil {
			return v, v.remove(paper.ID)
		}
	case key.Matches(msg, v.keys.Reload):
		v.loading = true
		return v, v.load()
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	return v, nil
}

// View renders the paper list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Papers"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading papers..."))
	case len(v.papers) == 0:
		b.WriteString(v.styles.Muted.Render("No papers. Add one with: paperqa add <file.pdf>"))
	default:
		for i := range v.papers {
			b.WriteString(v.renderPaper(i, &v.papers[i]))
			b.WriteString("\n")
		}
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(keymap.HelpLine(v.keys.PapersHelp()...)))
	return b.String()
}

func (v *View) renderPaper(index int, p *domain.Paper) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	title := p.Title
	if title == "" {
		title = "(untitled)"
	}
	if limit := max(v.width-30, 10); len([]rune(title)) > limit {
		title = string([]rune(title)[:limit-3]) + "..."
	}

	status := string(p.Status)
	if v.processing[p.ID] {
		status = "processing..."
	}

	line := indicator + title
	if index == v.selected {
		line = v.styles.Selected.Render(line)
	} else {
		line = v.styles.Normal.Render(line)
	}
	detail := fmt.Sprintf("  [%s] %d pages, %d chunks", status, p.NumPages, p.NumChunks)
	return line + v.styles.StatusStyle(p.Status).Render(detail)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Papers returns the loaded papers.
func (v *View) Papers() []domain.Paper {
	return v.papers
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.selected
}

// SelectedPaper returns the selected paper, or nil if there is none.
func (v *View) SelectedPaper() *domain.Paper {
	if v.selected < 0 || v.selected >= len(v.papers) {
		return nil
	}
	return &v.papers[v.selected]
}

// Err returns the last error shown by the view.
func (v *View) Err() error {
	return v.err
}

// IsProcessing reports whether a processing run is in flight for a paper.
func (v *View) IsProcessing(id string) bool {
	return v.processing[id]
}
