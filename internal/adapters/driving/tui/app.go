package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/views/paper"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/views/papers"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView   *menu.View
	papersView *papers.View
	paperView  *paper.View
	askView    *ask.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		menuView:    menu.NewView(s),
		papersView:  papers.NewView(s, ports.Papers),
		paperView:   paper.NewView(s, ports.Chat),
		askView:     ask.NewView(s, km, ports.Chat),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context used by service calls from the views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("paperqa"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewPapers {
			return a, a.papersView.Init()
		}
		return a, nil

	case messages.PaperSelected:
		a.currentView = messages.ViewPaper
		return a, a.paperView.SetPaper(msg.Paper)

	case messages.AskRequested:
		a.currentView = messages.ViewAsk
		a.askView.SetPaper(msg.Paper)
		return a, a.askView.Init()

	case messages.PapersLoaded, messages.PaperDeleted:
		a.papersView, cmd = a.papersView.Update(msg)
		return a, cmd

	case messages.PaperProcessed:
		if msg.Err == nil && msg.Paper != nil {
			if shown := a.paperView.Paper(); shown != nil && shown.ID == msg.PaperID {
				a.paperView.SetPaper(*msg.Paper)
			}
		}
		a.papersView, cmd = a.papersView.Update(msg)
		return a, cmd

	case messages.AnswerReceived:
		a.err = msg.Err
		a.askView, cmd = a.askView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a.forward(msg)
}

// forward sends a message to the active view.
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewPapers:
		a.papersView, cmd = a.papersView.Update(msg)
	case messages.ViewPaper:
		a.paperView, cmd = a.paperView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewPapers:
		return a.papersView.View()
	case messages.ViewPaper:
		return a.paperView.View()
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Global:
  ctrl+c      Quit

Papers:
  j/k, ↑/↓    Navigate
  enter       Open paper
  p           Process paper
  d           Delete paper
  r           Reload
  esc         Back to menu

Paper:
  a           Ask a question
  s           Cycle summary length
  j/k         Scroll
  esc         Back to papers

Ask:
  enter       Submit question
  n           Follow-up question
  j/k         Browse sources
  esc         Back to paper

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.papersView.SetDimensions(width, height)
	a.paperView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
}
