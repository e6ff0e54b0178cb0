// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"ecoreg-cli/internal/report"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// renderForTerminal passes markdown output through glamour when it is headed
// to an interactive terminal. File output and piped stdout keep the raw
// markdown so it stays machine-consumable.
func renderForTerminal(out string, format report.Format, outPath string) string {
	if format != report.FormatMarkdown || outPath != "" {
		return out
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return out
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return out
	}
	rendered, err := renderer.Render(out)
	if err != nil {
		return out
	}
	return rendered
}
