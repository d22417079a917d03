// Package ask provides the question answering view for the TUI.
package ask

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// ErrNoChatService is reported when the view has no chat service.
var ErrNoChatService = errors.New("chat service not available")

// View asks questions about one paper within a single conversation.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	sources   *list.SourceList
	statusbar *status.Bar

	chat driving.ChatService
	ctx  context.Context

	paper          *domain.Paper
	conversationID string
	question       string
	answer         *domain.Answer
	pending        bool
	focusInput     bool
	width          int
	height         int
	err            error
}

// NewView creates an ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, chat driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s, "Ask:", "What is the main contribution?"),
		sources:    list.NewSourceList(s),
		statusbar:  status.NewBar(s, km),
		chat:       chat,
		ctx:        context.Background(),
		focusInput: true,
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetPaper starts a fresh session about a paper.
func (v *View) SetPaper(p domain.Paper) {
	v.paper = &p
	v.conversationID = ""
	v.question = ""
	v.answer = nil
	v.pending = false
	v.err = nil
	v.sources.SetSources(nil)
	v.statusbar.Clear()
	v.statusbar.SetMessage(p.Title)
	v.newQuestion()
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Back) {
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewPaper} }
	}
	if v.pending {
		return v, nil
	}

	if v.focusInput {
		if key.Matches(msg, v.keymap.Ask) {
			question := strings.TrimSpace(v.input.Value())
			if question == "" {
				return v, nil
			}
			v.question = question
			v.pending = true
			v.err = nil
			v.focusInput = false
			v.input.Blur()
			v.statusbar.SetState(status.StateThinking)
			return v, v.ask(question)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if key.Matches(msg, v.keymap.NewQuestion) {
		v.newQuestion()
		return v, v.input.Focus()
	}
	v.sources, _ = v.sources.Update(msg)
	return v, nil
}

func (v *View) newQuestion() {
	v.focusInput = true
	v.input.Reset()
	v.input.Focus()
}

// ask starts the conversation on first use, then asks the question.
func (v *View) ask(question string) tea.Cmd {
	chat := v.chat
	ctx := v.ctx
	paper := v.paper
	conversationID := v.conversationID

	return func() tea.Msg {
		if chat == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoChatService}
		}
		if paper == nil {
			return messages.AnswerReceived{Question: question, Err: domain.ErrInvalidInput}
		}
		if conversationID == "" {
			conv, err := chat.StartConversation(ctx, paper.ID, question)
			if err != nil {
				return messages.AnswerReceived{Question: question, Err: err}
			}
			conversationID = conv.ID
		}
		answer, err := chat.Ask(ctx, conversationID, question, 0)
		return messages.AnswerReceived{
			ConversationID: conversationID,
			Question:       question,
			Answer:         answer,
			Err:            err,
		}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = false
	if msg.ConversationID != "" {
		v.conversationID = msg.ConversationID
	}
	if msg.Err != nil {
		v.setError(msg.Err)
		v.newQuestion()
		v.input.SetValue(msg.Question)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.sources.SetSources(msg.Answer.Sources)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetConfidence(msg.Answer.Confidence)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the ask view.
func (v *View) View() string {
	title := "Ask"
	if v.paper != nil {
		title = "Ask: " + v.paper.Title
	}
	sections := []string{v.styles.Title.Render(title), ""}

	if v.focusInput {
		sections = append(sections, v.input.View(), "")
	} else if v.question != "" {
		sections = append(sections, v.styles.Subtitle.Render("Q: ")+v.styles.Normal.Render(v.question), "")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil && !v.focusInput {
		wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
		sections = append(sections, wrap.Render(v.answer.Answer), "", v.sources.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.sources.SetDimensions(width, max(height/3, 4))
}

// ConversationID returns the conversation of the current session.
func (v *View) ConversationID() string {
	return v.conversationID
}

// Answer returns the last answer.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// InputFocused reports whether the question input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
