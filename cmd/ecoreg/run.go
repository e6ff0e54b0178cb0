// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"time"

	"ecoreg-cli/internal/invoke"
	"ecoreg-cli/internal/preflight"

	"github.com/spf13/cobra"
)

var (
	runInput     string
	runTimeout   time.Duration
	runKillDelay time.Duration

	runCmd = &cobra.Command{
		Use:   "run <module>",
		Short: "Invoke a module after preflight",
		Long: `Re-discover the named module, run the preflight checks, and invoke its
entrypoint as a subprocess. The input payload is passed via an injected
--input flag and the module writes its artifact to the injected --out path.

Captured output has configured secret values redacted. The command exits
with the module's own exit code.`,
		Args: cobra.ExactArgs(1),
		RunE: runModule,
	}
)

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "file with the JSON input payload for the module")
	runCmd.Flags().DurationVarP(&runTimeout, "timeout", "t", 0, "invocation timeout (0 disables)")
	runCmd.Flags().DurationVar(&runKillDelay, "kill-delay", 0, "force-kill the module this long after a timeout interrupt (0 keeps termination cooperative)")
}

func runModule(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	resolver, err := preflight.NewResolver(cfg, logger)
	if err != nil {
		return err
	}
	runner, err := resolver.Resolve(args[0])
	if err != nil {
		if id, ok := issueForError(err); ok {
			renderIssue(os.Stderr, id)
		}
		return err
	}

	var input []byte
	if runInput != "" {
		input, err = os.ReadFile(runInput)
		if err != nil {
			return fmt.Errorf("reading input payload: %w", err)
		}
	}

	invoker := invoke.NewInvoker(cfg, logger)
	result := invoker.Invoke(cmd.Context(), runner, invoke.Options{
		Input:     input,
		Timeout:   runTimeout,
		KillDelay: runKillDelay,
	})

	if result.Stdout != "" {
		fmt.Print(result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(os.Stderr, result.Stderr)
	}
	if result.Error != nil {
		return result.Error
	}

	if result.TimedOut {
		fmt.Fprintln(os.Stderr, WarningStyle.Render(
			fmt.Sprintf("module %q interrupted after %s timeout", result.Module, runTimeout)))
	}
	fmt.Fprintln(os.Stderr, SubtitleStyle.Render(
		fmt.Sprintf("artifact: %s (exit %d, %s)", result.ArtifactPath, result.ExitCode, result.Duration.Round(time.Millisecond))))

	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}
