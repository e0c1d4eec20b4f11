// ABOUTME: Shared lipgloss styles for consistent CLI appearance
// ABOUTME: Defines colors and text styles used across command output

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - Core palette
	Primary = lipgloss.Color("#7C3AED") // Purple
	Up      = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Down    = lipgloss.Color("#EF4444") // Red
	Muted   = lipgloss.Color("#6B7280") // Gray
	Text    = lipgloss.Color("#F9FAFB") // Light
	Info    = lipgloss.Color("#3B82F6") // Blue

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted)

	// Status indicators
	StatusUp = lipgloss.NewStyle().
			Foreground(Up).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusDown = lipgloss.NewStyle().
			Foreground(Down).
			Bold(true)

	// Table chrome
	TableHeader = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	TableBorder = lipgloss.NewStyle().
			Foreground(Muted)

	// Result markers for batch output
	Created = lipgloss.NewStyle().
		Foreground(Up).
		Bold(true)

	Skipped = lipgloss.NewStyle().
		Foreground(Muted)

	Failed = lipgloss.NewStyle().
		Foreground(Down).
		Bold(true)

	// Help text for the interactive browser
	Help = lipgloss.NewStyle().
		Foreground(Muted)
)
