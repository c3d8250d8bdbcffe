// Package ui renders the city autocomplete in the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6B7280")
	warn   = lipgloss.Color("#FFC107")
)

// Styles holds the lipgloss styles used by the widget.
type Styles struct {
	Title    lipgloss.Style
	Item     lipgloss.Style
	Active   lipgloss.Style
	Status   lipgloss.Style
	Warning  lipgloss.Style
	Selected lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Item:     lipgloss.NewStyle(),
		Active:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		Status:   lipgloss.NewStyle().Foreground(muted),
		Warning:  lipgloss.NewStyle().Foreground(warn),
		Selected: lipgloss.NewStyle().Bold(true),
	}
}
