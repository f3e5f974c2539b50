package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-folio/internal/tui/theme"
)

// Styles holds all the computed lipgloss styles for the reader.
type Styles struct {
	// Pane border styles
	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style

	Title     lipgloss.Style
	Info      lipgloss.Style
	Help      lipgloss.Style
	StatusBar lipgloss.Style
	Error     lipgloss.Style

	PageHeader  lipgloss.Style
	Placeholder lipgloss.Style
	Highlight   lipgloss.Style

	SummaryLabel    lipgloss.Style
	SummarySelected lipgloss.Style

	ProgressFill  lipgloss.Style
	ProgressEmpty lipgloss.Style

	Prompt lipgloss.Style

	// Glamour is the glamour style name for summary markdown.
	Glamour string
}

// applyStyle applies a theme.Style to a lipgloss.Style builder.
func applyStyle(s lipgloss.Style, ts theme.Style) lipgloss.Style {
	if ts.Fg != "" {
		s = s.Foreground(lipgloss.Color(ts.Fg))
	}
	if ts.Bg != "" {
		s = s.Background(lipgloss.Color(ts.Bg))
	}
	if ts.Bold {
		s = s.Bold(true)
	}
	if ts.Italic {
		s = s.Italic(true)
	}
	if ts.Underline {
		s = s.Underline(true)
	}
	return s
}

// buildStyles creates Styles from a Theme.
func buildStyles(t theme.Theme) Styles {
	return Styles{
		ActiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.GetBorderActive())),

		InactiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.GetBorderInactive())),

		Title: applyStyle(lipgloss.NewStyle(), t.TextPrimary).Bold(true),
		Info:  applyStyle(lipgloss.NewStyle(), t.TextSecondary),
		Help:  applyStyle(lipgloss.NewStyle(), t.TextMuted),

		StatusBar: lipgloss.NewStyle().
			Background(lipgloss.Color(t.GetAccent())).
			Foreground(lipgloss.Color(t.TextPrimary.Fg)).
			Bold(true).
			Padding(0, 1),

		Error: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true),

		PageHeader:  applyStyle(lipgloss.NewStyle(), t.PageHeader),
		Placeholder: applyStyle(lipgloss.NewStyle(), t.Placeholder),
		Highlight:   applyStyle(lipgloss.NewStyle(), t.Highlight),

		SummaryLabel:    applyStyle(lipgloss.NewStyle(), t.SummaryLabel),
		SummarySelected: applyStyle(lipgloss.NewStyle(), t.SummarySelected),

		ProgressFill:  applyStyle(lipgloss.NewStyle(), t.ProgressFill),
		ProgressEmpty: applyStyle(lipgloss.NewStyle(), t.ProgressEmpty),

		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color(t.GetAccent())).Bold(true),

		Glamour: t.GetGlamour(),
	}
}
