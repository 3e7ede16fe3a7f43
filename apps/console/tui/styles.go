// Package tui draws the back-office wizards and catalog lists in the terminal.
package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title       lipgloss.Style
	Step        lipgloss.Style
	StepActive  lipgloss.Style
	StepDone    lipgloss.Style
	Label       lipgloss.Style
	Required    lipgloss.Style
	Help        lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Muted       lipgloss.Style
	Selected    lipgloss.Style
	Menu        lipgloss.Style
	Facet       lipgloss.Style
	FacetActive lipgloss.Style
	Box         lipgloss.Style
}

func DefaultStyles() Styles {
	teal := lipgloss.Color("#0f766e")
	red := lipgloss.Color("#dc2626")
	grey := lipgloss.Color("#6b7280")

	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(teal).MarginBottom(1),
		Step:        lipgloss.NewStyle().Foreground(grey).Padding(0, 1),
		StepActive:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(teal).Padding(0, 1),
		StepDone:    lipgloss.NewStyle().Foreground(teal).Padding(0, 1),
		Label:       lipgloss.NewStyle().Bold(true),
		Required:    lipgloss.NewStyle().Foreground(red),
		Help:        lipgloss.NewStyle().Foreground(grey).Italic(true),
		Error:       lipgloss.NewStyle().Foreground(red),
		Success:     lipgloss.NewStyle().Foreground(teal).Bold(true),
		Muted:       lipgloss.NewStyle().Foreground(grey),
		Selected:    lipgloss.NewStyle().Foreground(teal).Bold(true),
		Menu:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(teal).Padding(0, 1),
		Facet:       lipgloss.NewStyle().Foreground(grey),
		FacetActive: lipgloss.NewStyle().Foreground(teal).Underline(true),
		Box:         lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(grey).Padding(0, 1),
	}
}
