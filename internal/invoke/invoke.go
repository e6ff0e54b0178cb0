// SPDX-License-Identifier: MPL-2.0

// Package invoke executes preflight-passed modules as subprocesses. Each
// invocation owns a uniquely named artifact directory with its input and
// output files, captures both streams with secrets redacted, and returns the
// exit code and the artifact path as independent signals: a zero exit does
// not imply the produced artifact is contract-valid.
package invoke

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"ecoreg-cli/internal/config"
	"ecoreg-cli/internal/issue"
	"ecoreg-cli/internal/preflight"
	"ecoreg-cli/pkg/manifest"

	"github.com/charmbracelet/log"
)

// Flags injected into the entrypoint argument vector when the manifest does
// not already carry them. Explicit manifest args always win.
const (
	InputFlag  = "--input"
	OutFlag    = "--out"
	FormatFlag = "--format"
)

type (
	// Options tunes one invocation. A zero Timeout means no deadline. A zero
	// KillDelay keeps termination cooperative: the child receives an
	// interrupt on timeout and is never force-killed. Setting KillDelay
	// escalates to a kill after the delay elapses.
	Options struct {
		Input     []byte
		Timeout   time.Duration
		KillDelay time.Duration
	}

	// Result is the raw outcome of one module invocation. Stdout and Stderr
	// are preserved, redacted, even when the process failed.
	Result struct {
		Module       string        `json:"module"`
		ExitCode     int           `json:"exitCode"`
		Duration     time.Duration `json:"duration"`
		Stdout       string        `json:"stdout"`
		Stderr       string        `json:"stderr"`
		ArtifactPath string        `json:"artifactPath"`
		TimedOut     bool          `json:"timedOut"`
		Error        error         `json:"-"`
	}

	// Invoker spawns module subprocesses.
	Invoker struct {
		cfg    *config.Config
		logger *log.Logger
	}
)

// NewInvoker creates an Invoker for the given configuration. A nil logger
// falls back to the default logger.
func NewInvoker(cfg *config.Config, logger *log.Logger) *Invoker {
	if logger == nil {
		logger = log.Default()
	}
	return &Invoker{cfg: cfg, logger: logger}
}

// Invoke runs one executable module and captures its outcome. The input
// payload is serialized into the invocation's artifact directory and the
// output artifact path is injected via --out; the directory is left in place
// for the caller to inspect.
func (i *Invoker) Invoke(ctx context.Context, runner *preflight.ExecutableRunner, opts Options) *Result {
	m := runner.Module.Manifest
	name := runner.Module.Name
	result := &Result{Module: name, ExitCode: -1}

	dir, err := os.MkdirTemp("", "ecoreg-"+name+"-*")
	if err != nil {
		result.Error = issue.InvocationFailed(name, err)
		return result
	}

	inputPath := filepath.Join(dir, "input.json")
	input := opts.Input
	if len(input) == 0 {
		input = []byte("{}")
	}
	if err := os.WriteFile(inputPath, input, 0o600); err != nil {
		result.Error = issue.InvocationFailed(name, err)
		return result
	}
	result.ArtifactPath = filepath.Join(dir, "report.json")

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	args := injectFlags(m.Entrypoint, inputPath, result.ArtifactPath)
	cmd := exec.CommandContext(ctx, m.Entrypoint.Command, args...)

	// Cooperative termination: an interrupt instead of the default kill.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	if opts.KillDelay > 0 {
		cmd.WaitDelay = opts.KillDelay
	}

	if wd := m.Entrypoint.WorkingDir; wd != "" {
		if !filepath.IsAbs(wd) {
			wd = filepath.Join(i.cfg.RegistryRoot, wd)
		}
		cmd.Dir = wd
	}
	cmd.Env = os.Environ()
	for k, v := range m.Entrypoint.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	i.logger.Debug("invoking module", "module", name, "command", m.Entrypoint.Command)

	start := time.Now()
	runErr := cmd.Run()
	result.Duration = time.Since(start)

	secrets := i.secretValues(m)
	result.Stdout = Redact(stdout.String(), secrets)
	result.Stderr = Redact(stderr.String(), secrets)
	result.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)

	switch {
	case runErr == nil:
		result.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Error = issue.InvocationFailed(name, runErr)
		}
	}

	return result
}

// InvokeAll runs the given modules sequentially; one completion gates the
// next. Results preserve input order.
func (i *Invoker) InvokeAll(ctx context.Context, runners []*preflight.ExecutableRunner, opts Options) []*Result {
	results := make([]*Result, 0, len(runners))
	for _, runner := range runners {
		results = append(results, i.Invoke(ctx, runner, opts))
	}
	return results
}

// injectFlags appends the --input/--out/--format flags the module contract
// expects, unless the manifest already carries them.
func injectFlags(ep manifest.Entrypoint, inputPath, outPath string) []string {
	args := append([]string{}, ep.Args...)
	if !ep.HasFlag(InputFlag) {
		args = append(args, InputFlag, inputPath)
	}
	if !ep.HasFlag(OutFlag) {
		args = append(args, OutFlag, outPath)
	}
	if !ep.HasFlag(FormatFlag) {
		args = append(args, FormatFlag, "json")
	}
	return args
}

// secretValues collects the values to redact from captured output: every
// declared requiredEnv variable's current value plus the configured extras.
func (i *Invoker) secretValues(m *manifest.Manifest) []string {
	var secrets []string
	for _, name := range m.RequiredEnv {
		if v := os.Getenv(name); v != "" {
			secrets = append(secrets, v)
		}
	}
	secrets = append(secrets, i.cfg.Redact...)
	return secrets
}
