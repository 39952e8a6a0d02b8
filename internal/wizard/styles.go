package wizard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/schemasmith/schemasmith/internal/snapshot"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).BorderStyle(lipgloss.DoubleBorder()).BorderBottom(true).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	summaryStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	newStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	modifiedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

// Title renders a screen heading.
func Title(s string) string { return titleStyle.Render(s) }

// Dim renders secondary text.
func Dim(s string) string { return dimStyle.Render(s) }

// Warn renders a warning line.
func Warn(s string) string { return warnStyle.Render(s) }

// Status renders a pending table status, padded to width.
func Status(s snapshot.Status, width int) string {
	label := lipgloss.NewStyle().Width(width).Render(string(s))
	switch s {
	case snapshot.StatusNew:
		return newStyle.Render(label)
	case snapshot.StatusModified:
		return modifiedStyle.Render(label)
	}
	return dimStyle.Render(label)
}
