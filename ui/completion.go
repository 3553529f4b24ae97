package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderRunning shows which action is in flight.
func (m *MainModel) RenderRunning() string {
	var sb strings.Builder
	running := lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")).Render("Running: " + m.selected)
	sb.WriteString(running + "\n\n")
	sb.WriteString("Watch the log file for per-item progress. ctrl+c aborts.\n")
	return sb.String()
}

// RenderCompletion shows the outcome of the last action.
func (m *MainModel) RenderCompletion() string {
	var sb strings.Builder

	if m.runErr != nil {
		header := lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Render(m.selected + " failed")
		sb.WriteString(header + "\n\n")
		sb.WriteString(m.runErr.Error() + "\n")
	} else {
		header := lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Render(m.selected + " complete")
		sb.WriteString(header + "\n\n")
		if m.message != "" {
			sb.WriteString(m.message + "\n")
		}
	}

	sb.WriteString("\nPress enter or esc to return to the menu, ctrl+c to quit.\n")
	return sb.String()
}
