// SPDX-License-Identifier: MPL-2.0

package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"ecoreg-cli/internal/drift"

	"github.com/charmbracelet/lipgloss"
)

// RenderDrift renders a drift report.
func (r *Renderer) RenderDrift(rep *drift.DriftReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return r.driftJSON(rep)
	case FormatText:
		return r.driftText(rep), nil
	case FormatMarkdown:
		return r.driftMarkdown(rep), nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// driftJSON is the lossless machine-readable rendering.
func (r *Renderer) driftJSON(rep *drift.DriftReport) (string, error) {
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling drift report: %w", err)
	}
	return string(out) + "\n", nil
}

func (r *Renderer) driftText(rep *drift.DriftReport) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Ecosystem Drift Report"))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("scan %s, generated %s",
		rep.ScanID, rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("status: %s\n", statusStyle(rep.Status).Render(string(rep.Status))))
	sum := rep.Summary
	sb.WriteString(fmt.Sprintf("%d drift(s): %s fatal, %s error, %s warning, %s info\n\n",
		sum.Total,
		errorStyle.Render(fmt.Sprintf("%d", sum.Fatal)),
		errorStyle.Render(fmt.Sprintf("%d", sum.Error)),
		warningStyle.Render(fmt.Sprintf("%d", sum.Warning)),
		mutedStyle.Render(fmt.Sprintf("%d", sum.Info))))

	if rep.Baseline != nil {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("baseline: %d module(s), captured %s\n\n",
			rep.Baseline.ModuleCount, rep.Baseline.GeneratedAt.Format("2006-01-02 15:04:05 MST"))))
	}

	for _, d := range rep.Drifts {
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			severityStyle(d.Severity).Render(fmt.Sprintf("[%s]", d.Severity)), d.Type, d.Module))
		if d.Expected != "" || d.Actual != "" {
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("    expected %q, got %q\n",
				truncate(d.Expected, maxDiffLen), truncate(d.Actual, maxDiffLen))))
		}
		if d.Diff != "" {
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("    diff: %s\n", truncate(d.Diff, maxDiffLen))))
		}
		if r.opts.Verbose && d.Hint != "" {
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("    hint: %s\n", d.Hint)))
		}
	}

	if len(rep.Drifts) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(titleStyle.Render("Recommendations"))
	sb.WriteString("\n")
	for _, rec := range rep.Recommendations {
		sb.WriteString(fmt.Sprintf("  • %s\n", rec))
	}

	return sb.String()
}

func (r *Renderer) driftMarkdown(rep *drift.DriftReport) string {
	var sb strings.Builder

	sb.WriteString("# Ecosystem Drift Report\n\n")
	sb.WriteString(fmt.Sprintf("- Scan: `%s`\n", rep.ScanID))
	sb.WriteString(fmt.Sprintf("- Generated: %s\n", rep.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("- Status: **%s**\n", rep.Status))
	if rep.Baseline != nil {
		sb.WriteString(fmt.Sprintf("- Baseline: %d module(s), captured %s\n",
			rep.Baseline.ModuleCount, rep.Baseline.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	}
	sb.WriteString("\n")

	sum := rep.Summary
	sb.WriteString("| Total | Fatal | Error | Warning | Info |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d |\n\n", sum.Total, sum.Fatal, sum.Error, sum.Warning, sum.Info))

	if len(rep.Drifts) > 0 {
		sb.WriteString("## Drifts\n\n")
		sb.WriteString("| Severity | Type | Module | Expected | Actual | Diff |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, d := range rep.Drifts {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				d.Severity, d.Type, d.Module,
				truncate(d.Expected, maxDiffLen), truncate(d.Actual, maxDiffLen), truncate(d.Diff, maxDiffLen)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Recommendations\n\n")
	for _, rec := range rep.Recommendations {
		sb.WriteString(fmt.Sprintf("- %s\n", rec))
	}

	return sb.String()
}

func severityStyle(s drift.Severity) lipgloss.Style {
	switch s {
	case drift.SeverityFatal, drift.SeverityError:
		return errorStyle
	case drift.SeverityWarning:
		return warningStyle
	default:
		return mutedStyle
	}
}

func statusStyle(s drift.Status) lipgloss.Style {
	switch s {
	case drift.StatusHealthy:
		return successStyle
	case drift.StatusWarning:
		return warningStyle
	default:
		return errorStyle
	}
}
