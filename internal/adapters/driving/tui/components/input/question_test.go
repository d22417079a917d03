package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestionInput(t *testing.T) {
	q := NewQuestionInput(nil, "Ask:", "What is the main contribution?")

	require.NotNil(t, q)
	assert.NotNil(t, q.styles)
	assert.True(t, q.Focused())
	assert.Empty(t, q.Value())
	assert.Equal(t, defaultWidth, q.Width())
}

func TestQuestionInput_Init(t *testing.T) {
	q := NewQuestionInput(nil, "", "")

	assert.NotNil(t, q.Init())
}

func TestQuestionInput_TypeRunes(t *testing.T) {
	q := NewQuestionInput(nil, "Ask:", "")

	q, _ = q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("why")})

	assert.Equal(t, "why", q.Value())
}

func TestQuestionInput_SetValueAndReset(t *testing.T) {
	q := NewQuestionInput(nil, "Ask:", "")

	q.SetValue("What dataset is used?")
	assert.Equal(t, "What dataset is used?", q.Value())

	q.Reset()
	assert.Empty(t, q.Value())
}

func TestQuestionInput_FocusBlur(t *testing.T) {
	q := NewQuestionInput(nil, "Ask:", "")

	q.Blur()
	assert.False(t, q.Focused())

	q.Focus()
	assert.True(t, q.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	q := NewQuestionInput(nil, "Ask:", "")

	q.SetWidth(100)
	assert.Equal(t, 100, q.Width())
	assert.Equal(t, 90, q.textinput.Width)

	q.SetWidth(10)
	assert.Equal(t, minWidth, q.textinput.Width)
}

func TestQuestionInput_View(t *testing.T) {
	q := NewQuestionInput(nil, "Ask:", "")
	assert.Contains(t, q.View(), "Ask:")

	unlabelled := NewQuestionInput(nil, "", "")
	assert.NotContains(t, unlabelled.View(), "Ask:")
}
