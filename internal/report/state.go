// SPDX-License-Identifier: MPL-2.0

package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"ecoreg-cli/internal/discovery"
	"ecoreg-cli/internal/registry"
)

// stateDocument is the JSON envelope around a rendered RegistryState.
type stateDocument struct {
	*registry.RegistryState
	Diagnostics []diagnosticDocument `json:"diagnostics,omitempty"`
}

// diagnosticDocument is the serializable projection of a discovery
// diagnostic.
type diagnosticDocument struct {
	Severity discovery.Severity `json:"severity"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Path     string             `json:"path,omitempty"`
}

// RenderState renders a registry snapshot plus its discovery diagnostics.
func (r *Renderer) RenderState(state *registry.RegistryState, diags []discovery.Diagnostic, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return r.stateJSON(state, diags)
	case FormatText:
		return r.stateText(state, diags), nil
	case FormatMarkdown:
		return r.stateMarkdown(state, diags), nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// stateJSON is the lossless machine-readable rendering.
func (r *Renderer) stateJSON(state *registry.RegistryState, diags []discovery.Diagnostic) (string, error) {
	doc := stateDocument{RegistryState: state}
	for _, d := range diags {
		doc.Diagnostics = append(doc.Diagnostics, diagnosticDocument{
			Severity: d.Severity,
			Code:     d.Code,
			Message:  d.Message,
			Path:     d.Path,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling registry state: %w", err)
	}
	return string(out) + "\n", nil
}

func (r *Renderer) stateText(state *registry.RegistryState, diags []discovery.Diagnostic) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Module Registry"))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("generated %s", state.GeneratedAt.Format("2006-01-02 15:04:05 MST"))))
	sb.WriteString("\n\n")

	sum := state.Summary
	sb.WriteString(fmt.Sprintf("%d module(s): %s valid, %s invalid, %s incompatible, %s unreachable, %s disabled\n\n",
		sum.Total,
		successStyle.Render(fmt.Sprintf("%d", sum.Valid)),
		errorStyle.Render(fmt.Sprintf("%d", sum.Invalid)),
		errorStyle.Render(fmt.Sprintf("%d", sum.Incompatible)),
		warningStyle.Render(fmt.Sprintf("%d", sum.Unreachable)),
		mutedStyle.Render(fmt.Sprintf("%d", sum.Disabled))))

	for _, mod := range state.Modules {
		sb.WriteString(fmt.Sprintf("%s %s %s (%s)\n",
			statusMarker(mod.Status), mod.Name,
			mutedStyle.Render(moduleVersion(mod)), mod.Status))

		if r.opts.Verbose {
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("    source: %s (%s)\n", mod.Source.Path, mod.Source.Type)))
			if mod.Manifest != nil {
				sb.WriteString(mutedStyle.Render(fmt.Sprintf("    entrypoint: %s %s\n",
					mod.Manifest.Entrypoint.Command,
					truncate(strings.Join(mod.Manifest.Entrypoint.Args, " "), maxDiffLen))))
				if len(mod.Manifest.Capabilities) > 0 {
					sb.WriteString(mutedStyle.Render(fmt.Sprintf("    capabilities: %s\n",
						strings.Join(mod.Manifest.Capabilities, ", "))))
				}
			}
		}

		if r.opts.IncludeErrors {
			for _, e := range mod.Validation.Errors {
				sb.WriteString(errorStyle.Render(fmt.Sprintf("    error: %s\n", truncate(e, maxDiffLen))))
			}
		}
	}

	if r.opts.IncludeErrors && len(diags) > 0 {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render("Diagnostics"))
		sb.WriteString("\n")
		for _, d := range diags {
			style := warningStyle
			if d.Severity == discovery.SeverityError {
				style = errorStyle
			}
			sb.WriteString(style.Render(fmt.Sprintf("  [%s] %s\n", d.Code, truncate(d.Message, maxDiffLen))))
		}
	}

	return sb.String()
}

func (r *Renderer) stateMarkdown(state *registry.RegistryState, diags []discovery.Diagnostic) string {
	var sb strings.Builder

	sb.WriteString("# Module Registry\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", state.GeneratedAt.Format("2006-01-02 15:04:05 MST")))

	sum := state.Summary
	sb.WriteString("| Total | Valid | Invalid | Incompatible | Unreachable | Disabled |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d | %d |\n\n",
		sum.Total, sum.Valid, sum.Invalid, sum.Incompatible, sum.Unreachable, sum.Disabled))

	sb.WriteString("## Modules\n\n")
	sb.WriteString("| Module | Version | Status | Source |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, mod := range state.Modules {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			mod.Name, moduleVersion(mod), mod.Status, mod.Source.Type))
	}
	sb.WriteString("\n")

	if r.opts.IncludeErrors {
		var lines []string
		for _, mod := range state.Modules {
			for _, e := range mod.Validation.Errors {
				lines = append(lines, fmt.Sprintf("- **%s**: %s", mod.Name, truncate(e, maxDiffLen)))
			}
		}
		for _, d := range diags {
			lines = append(lines, fmt.Sprintf("- `%s`: %s", d.Code, truncate(d.Message, maxDiffLen)))
		}
		if len(lines) > 0 {
			sb.WriteString("## Errors and Diagnostics\n\n")
			sb.WriteString(strings.Join(lines, "\n"))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func statusMarker(status discovery.ModuleStatus) string {
	switch status {
	case discovery.StatusValid:
		return successStyle.Render("✓")
	case discovery.StatusDisabled:
		return mutedStyle.Render("-")
	case discovery.StatusUnreachable:
		return warningStyle.Render("✗")
	default:
		return errorStyle.Render("✗")
	}
}

func moduleVersion(mod *discovery.DiscoveredModule) string {
	if mod.Manifest == nil || mod.Manifest.Version == "" {
		return "unknown"
	}
	return mod.Manifest.Version
}
