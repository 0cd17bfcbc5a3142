// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Palette shared by every command's output.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for section headers.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	// SubtitleStyle is for secondary text and placeholders such as "(none)".
	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	// SuccessStyle is for values and confirmations.
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	// ErrorStyle is for failure headers.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	// WarningStyle is for warnings.
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	// KeyStyle is for labels, setting paths and file positions.
	KeyStyle = lipgloss.NewStyle().Foreground(ColorHighlight)
)
