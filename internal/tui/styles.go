// Package tui renders lookup run output for the terminal.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
const (
	ColorHeader  = lipgloss.Color("12")
	ColorLabel   = lipgloss.Color("245")
	ColorValue   = lipgloss.Color("255")
	ColorOK      = lipgloss.Color("10")
	ColorWarning = lipgloss.Color("11")
	ColorError   = lipgloss.Color("9")
	ColorMuted   = lipgloss.Color("240")
	ColorBorder  = lipgloss.Color("62")
)

// Shared styles.
//
//nolint:gochecknoglobals // Style values are immutable after init.
var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	LabelStyle   = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	OKStyle      = lipgloss.NewStyle().Foreground(ColorOK).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	SubtleStyle  = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	BoxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)
