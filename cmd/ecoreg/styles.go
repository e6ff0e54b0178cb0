// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"ecoreg-cli/internal/report"

	"github.com/charmbracelet/lipgloss"
)

// Base styles - reusable lipgloss styles built from the renderer's shared
// color palette, so command chrome and rendered reports present identically.
var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(report.ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(report.ColorMuted)

	// SuccessStyle is for success messages and healthy status indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(report.ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(report.ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(report.ColorWarning)
)
