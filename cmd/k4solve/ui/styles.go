// Package ui provides the terminal styling for k4solve's summary output.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	Success = lipgloss.Color("#8BC34A")
	Failure = lipgloss.Color("#e53935")
	Info    = lipgloss.Color("#2196F3")
	Muted   = lipgloss.Color("#808080")

	TitleStyle = lipgloss.NewStyle().Bold(true)
	OKStyle    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	FailStyle  = lipgloss.NewStyle().Foreground(Failure).Bold(true)
	InfoStyle  = lipgloss.NewStyle().Foreground(Info)
	MutedStyle = lipgloss.NewStyle().Foreground(Muted)
)

// Verdict renders a pass/fail headline.
func Verdict(ok bool, okText, failText string) string {
	if ok {
		return OKStyle.Render("✓ " + okText)
	}
	return FailStyle.Render("✗ " + failText)
}

// KV renders one aligned key/value line for summary blocks.
func KV(key string, value interface{}) string {
	return fmt.Sprintf("%s %v", MutedStyle.Render(fmt.Sprintf("%-18s", key+":")), value)
}
