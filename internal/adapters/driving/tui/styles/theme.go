// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// Theme is the colour palette for the TUI.
type Theme struct {
	Accent     lipgloss.Color
	Highlight  lipgloss.Color
	Text       lipgloss.Color
	Faint      lipgloss.Color
	Good       lipgloss.Color
	Pending    lipgloss.Color
	Bad        lipgloss.Color
	Frame      lipgloss.Color
	BarSurface lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#2563EB"),
		Highlight:  lipgloss.Color("#14B8A6"),
		Text:       lipgloss.Color("#E5E7EB"),
		Faint:      lipgloss.Color("#6B7280"),
		Good:       lipgloss.Color("#4ADE80"),
		Pending:    lipgloss.Color("#FACC15"),
		Bad:        lipgloss.Color("#F87171"),
		Frame:      lipgloss.Color("#374151"),
		BarSurface: lipgloss.Color("#111827"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Citation renders page and section references in answers.
	Citation lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	text := lipgloss.NewStyle().Foreground(theme.Text)
	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Frame)

	return &Styles{
		theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Highlight),
		Normal:   text,
		Muted:    lipgloss.NewStyle().Foreground(theme.Faint),
		Selected: text.Bold(true).Background(theme.Accent),
		Error:    lipgloss.NewStyle().Foreground(theme.Bad),
		Success:  lipgloss.NewStyle().Foreground(theme.Good),
		Warning:  lipgloss.NewStyle().Foreground(theme.Pending),
		Citation: lipgloss.NewStyle().Italic(true).Foreground(theme.Highlight),

		InputField: framed.Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Faint).
			Background(theme.BarSurface).
			Padding(0, 1),
		Help:   lipgloss.NewStyle().Foreground(theme.Faint),
		Border: framed,
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// StatusStyle picks the style used to render a paper status.
func (s *Styles) StatusStyle(status domain.PaperStatus) lipgloss.Style {
	switch status {
	case domain.PaperStatusReady:
		return s.Success
	case domain.PaperStatusFailed:
		return s.Error
	case domain.PaperStatusUploading:
		return s.Muted
	default:
		return s.Warning
	}
}
