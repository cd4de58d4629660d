package tui

import "github.com/charmbracelet/lipgloss"

// Styles format the text the renderer prints around prompts.
type Styles struct {
	Title       lipgloss.Style
	Description lipgloss.Style
	Error       lipgloss.Style
	Notice      lipgloss.Style
}

// DefaultStyles picks colors that read on light and dark terminals.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "33"}),
		Description: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "248"}),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"}),
	}
}

// PlainStyles renders text unchanged, for tests and non-terminal output.
func PlainStyles() Styles {
	return Styles{
		Title:       lipgloss.NewStyle(),
		Description: lipgloss.NewStyle(),
		Error:       lipgloss.NewStyle(),
		Notice:      lipgloss.NewStyle(),
	}
}
