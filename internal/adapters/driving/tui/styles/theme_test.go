package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	assert.NotEmpty(t, theme.Accent)
	assert.NotEmpty(t, theme.Bad)
	assert.NotEqual(t, theme.Good, theme.Bad)
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)
	require.NotNil(t, s)

	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestDefaultStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Title.Render("paperqa"), "paperqa")
	assert.Contains(t, s.Citation.Render("p. 3"), "p. 3")
}

func TestStyles_StatusStyle(t *testing.T) {
	s := DefaultStyles()

	tests := []struct {
		status   domain.PaperStatus
		expected func() any
	}{
		{domain.PaperStatusReady, func() any { return s.Success.GetForeground() }},
		{domain.PaperStatusFailed, func() any { return s.Error.GetForeground() }},
		{domain.PaperStatusUploading, func() any { return s.Muted.GetForeground() }},
		{domain.PaperStatusEmbedding, func() any { return s.Warning.GetForeground() }},
		{domain.PaperStatusProcessing, func() any { return s.Warning.GetForeground() }},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected(), s.StatusStyle(tt.status).GetForeground())
		})
	}
}
