// SPDX-License-Identifier: MPL-2.0

// Package report renders RegistryState snapshots and DriftReports into the
// supported presentation formats: lossless JSON for machines, styled text
// and markdown for humans.
package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Supported output formats.
const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// maxDiffLen bounds diff and value strings in the human-readable formats.
// JSON output is never truncated.
const maxDiffLen = 80

type (
	// Format selects the output representation.
	Format string

	// Options tunes the human-readable renderings. Verbose adds per-module
	// detail; IncludeErrors appends validation errors and diagnostics.
	Options struct {
		Verbose       bool
		IncludeErrors bool
	}

	// Renderer renders registry and drift models into one of the supported
	// formats.
	Renderer struct {
		opts Options
	}
)

// ParseFormat validates a format string from the CLI.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatText, FormatMarkdown:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported format %q: must be one of json, text, markdown", s)
	}
}

// NewRenderer creates a Renderer with the given options.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Styles for the text format, shared across both renderings so severity and
// status always present the same way.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	successStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// truncate bounds s for the human-readable formats.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
