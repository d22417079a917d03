package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar(t *testing.T) {
	b := NewBar(nil, nil)

	require.NotNil(t, b)
	assert.Equal(t, StateReady, b.State())
	assert.Equal(t, 80, b.Width())
	assert.Nil(t, b.Init())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		expected string
	}{
		{"ready", StateReady, "", "Ready"},
		{"ready with message", StateReady, "3 papers", "3 papers"},
		{"thinking", StateThinking, "", "Thinking..."},
		{"error", StateError, "llm unavailable", "Error: llm unavailable"},
		{"bare error", StateError, "", "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBar(nil, nil)
			b.SetWidth(120)
			b.SetState(tt.state)
			b.SetMessage(tt.message)

			assert.Contains(t, b.View(), tt.expected)
		})
	}
}

func TestBar_View_Answered(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(140)
	b.SetState(StateAnswered)
	b.SetConfidence(0.8123)

	view := b.View()

	assert.Contains(t, view, "confidence 0.81")
	assert.Contains(t, view, "new question")
}

func TestBar_Clear(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetState(StateError)
	b.SetMessage("boom")
	b.SetConfidence(0.5)

	b.Clear()

	assert.Equal(t, StateReady, b.State())
	assert.Empty(t, b.Message())
	assert.Zero(t, b.confidence)
}

func TestBar_Update(t *testing.T) {
	b := NewBar(nil, nil)

	updated, cmd := b.Update(nil)

	assert.Same(t, b, updated)
	assert.Nil(t, cmd)
}
