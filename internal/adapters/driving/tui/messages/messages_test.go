package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewPapers, "papers"},
		{ViewPaper, "paper"},
		{ViewAsk, "ask"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_Values(t *testing.T) {
	assert.Equal(t, ViewType(0), ViewMenu)
	assert.NotEqual(t, ViewPaper, ViewAsk)
}

func TestAnswerReceived(t *testing.T) {
	msg := AnswerReceived{
		ConversationID: "conv-1",
		Question:       "Why?",
		Answer:         &domain.Answer{Answer: "Because.", Confidence: 0.5},
	}

	assert.Equal(t, "conv-1", msg.ConversationID)
	assert.Equal(t, "Because.", msg.Answer.Answer)
	assert.NoError(t, msg.Err)
}

func TestPaperProcessed_WithError(t *testing.T) {
	err := errors.New("extraction failed")
	msg := PaperProcessed{PaperID: "p1", Err: err}

	assert.Nil(t, msg.Paper)
	assert.ErrorIs(t, msg.Err, err)
}
