// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"testing"

	"ecoreg-cli/internal/report"

	"github.com/charmbracelet/lipgloss"
)

func TestStylesShareRendererPalette(t *testing.T) {
	tests := []struct {
		name  string
		style lipgloss.Style
		want  lipgloss.TerminalColor
	}{
		{"title", TitleStyle, report.ColorPrimary},
		{"subtitle", SubtitleStyle, report.ColorMuted},
		{"success", SuccessStyle, report.ColorSuccess},
		{"error", ErrorStyle, report.ColorError},
		{"warning", WarningStyle, report.ColorWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.style.GetForeground(); got != tt.want {
				t.Errorf("%s foreground = %v, want renderer palette color %v", tt.name, got, tt.want)
			}
		})
	}
}
