package main

import "github.com/charmbracelet/lipgloss"

// Semantic colors for REPL output.
var (
	colorError = lipgloss.Color("#ef4444") // red-500
	colorValue = lipgloss.Color("#10b981") // green-500
	colorDim   = lipgloss.Color("#6b7280") // gray-500
)

// styleSheet holds the lipgloss styles for terminal output.
type styleSheet struct {
	Error  lipgloss.Style
	Value  lipgloss.Style
	Prompt lipgloss.Style
	Dim    lipgloss.Style
}

func defaultStyles() *styleSheet {
	return &styleSheet{
		Error:  lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Value:  lipgloss.NewStyle().Foreground(colorValue),
		Prompt: lipgloss.NewStyle().Foreground(colorDim),
		Dim:    lipgloss.NewStyle().Foreground(colorDim),
	}
}
