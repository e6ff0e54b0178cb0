// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"ecoreg-cli/internal/discovery"
	"ecoreg-cli/internal/drift"
	"ecoreg-cli/internal/registry"
	"ecoreg-cli/internal/report"

	"github.com/spf13/cobra"
)

// defaultBaselinePath is used when --save-baseline is given without an
// explicit --baseline path.
const defaultBaselinePath = "ecoreg-baseline.json"

var (
	verifyBaseline string
	verifySave     bool
	verifyFormat   string
	verifyOut      string

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Detect drift between the registry and a baseline",
		Long: `Rebuild the registry snapshot and diff it against a previously captured
baseline. Without a baseline (or when the baseline file does not exist)
every discovered module is reported as unexpected.

Exit codes reflect the report status: 0 healthy, 1 warning, 2 critical.`,
		RunE: runVerify,
	}
)

func init() {
	verifyCmd.Flags().StringVarP(&verifyBaseline, "baseline", "b", "", "baseline file to diff against")
	verifyCmd.Flags().BoolVar(&verifySave, "save-baseline", false, "persist the current snapshot as the new baseline")
	verifyCmd.Flags().StringVarP(&verifyFormat, "format", "f", "text", "output format: json, text, or markdown")
	verifyCmd.Flags().StringVarP(&verifyOut, "out", "o", "", "write the report to a file instead of stdout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(verifyFormat)
	if err != nil {
		return err
	}

	logger := newLogger()
	loader, err := discovery.NewLoader(cfg, logger)
	if err != nil {
		return err
	}
	state := registry.BuildState(loader.DiscoverAll().Modules)

	// A missing baseline file is not an error: detection degrades to the
	// everything-is-unexpected default.
	var baseline *registry.RegistryState
	if verifyBaseline != "" {
		baseline, err = registry.LoadBaseline(verifyBaseline)
		if err != nil {
			if id, ok := issueForError(err); ok {
				renderIssue(os.Stderr, id)
			}
			return err
		}
	}

	detector := drift.NewDetector(cfg, logger)
	rep := detector.BuildReport(state, baseline, verifyBaseline)

	out, err := report.NewRenderer(report.Options{Verbose: verbose}).RenderDrift(rep, format)
	if err != nil {
		return err
	}
	if err := writeOutput(renderForTerminal(out, format, verifyOut), verifyOut); err != nil {
		return err
	}

	if verifySave {
		path := verifyBaseline
		if path == "" {
			path = defaultBaselinePath
		}
		if err := registry.SaveBaseline(path, state); err != nil {
			return err
		}
		fmt.Println(SubtitleStyle.Render("saved baseline " + path))
	}

	if code := rep.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
