// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"ecoreg-cli/internal/discovery"
	"ecoreg-cli/internal/issue"
	"ecoreg-cli/internal/registry"
	"ecoreg-cli/internal/report"

	"github.com/spf13/cobra"
)

var (
	reportFormat        string
	reportOut           string
	reportIncludeErrors bool

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Discover modules and render the registry snapshot",
		Long: `Scan the configured search roots for module manifests, validate each
one, and render the resulting registry snapshot.

The json format is lossless and machine-readable; text and markdown are
human-readable and may truncate long values.`,
		RunE: runReport,
	}
)

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "text", "output format: json, text, or markdown")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write the report to a file instead of stdout")
	reportCmd.Flags().BoolVar(&reportIncludeErrors, "include-errors", false, "include per-module validation errors and discovery diagnostics")
}

func runReport(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(reportFormat)
	if err != nil {
		return err
	}

	loader, err := discovery.NewLoader(cfg, newLogger())
	if err != nil {
		return err
	}
	result := loader.DiscoverAll()
	state := registry.BuildState(result.Modules)

	// An empty registry is a valid snapshot, but almost always a setup
	// problem; point at the likeliest cause on stderr.
	if len(result.Modules) == 0 {
		id := issue.NoModulesFoundId
		for _, d := range result.Diagnostics {
			if d.Code == discovery.CodeManifestParseSkipped {
				id = issue.ManifestParseErrorId
				break
			}
		}
		renderIssue(os.Stderr, id)
	}

	renderer := report.NewRenderer(report.Options{
		Verbose:       verbose,
		IncludeErrors: reportIncludeErrors,
	})
	out, err := renderer.RenderState(state, result.Diagnostics, format)
	if err != nil {
		return err
	}

	return writeOutput(renderForTerminal(out, format, reportOut), reportOut)
}
