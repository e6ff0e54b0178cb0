// SPDX-License-Identifier: MPL-2.0

// Package preflight gates module executability. A discovered module passes
// preflight only when all five independent checks succeed; failing modules
// stay addressable but are excluded from the executable set.
package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"ecoreg-cli/internal/config"
	"ecoreg-cli/internal/discovery"
	"ecoreg-cli/pkg/manifest"

	"github.com/charmbracelet/log"
)

const (
	// CheckManifestSchema re-asserts the schema validation outcome.
	CheckManifestSchema = "manifest-schema"
	// CheckEntrypointExists verifies the entrypoint script on disk.
	CheckEntrypointExists = "entrypoint-exists"
	// CheckCommandAvailable verifies the entrypoint command resolves on PATH.
	CheckCommandAvailable = "command-available"
	// CheckRequiredEnv verifies every declared requiredEnv variable is set.
	CheckRequiredEnv = "required-env"
	// CheckRunnerArg verifies the --runner argument matches the module name.
	CheckRunnerArg = "runner-arg"
)

type (
	// Check is the outcome of a single preflight check. Message is only set
	// when the check failed.
	Check struct {
		Name    string `json:"name"`
		Passed  bool   `json:"passed"`
		Message string `json:"message,omitempty"`
	}

	// Checker runs the preflight checks against discovered modules.
	Checker struct {
		cfg    *config.Config
		logger *log.Logger
	}
)

// NewChecker creates a Checker for the given configuration. A nil logger
// falls back to the default logger.
func NewChecker(cfg *config.Config, logger *log.Logger) *Checker {
	if logger == nil {
		logger = log.Default()
	}
	return &Checker{cfg: cfg, logger: logger}
}

// RunChecks evaluates all five checks for one module, in fixed order. Every
// check always runs, so a failing module reports every gap at once.
func (c *Checker) RunChecks(mod *discovery.DiscoveredModule) []Check {
	return []Check{
		c.checkManifestSchema(mod),
		c.checkEntrypointExists(mod),
		c.checkCommandAvailable(mod),
		c.checkRequiredEnv(mod),
		c.checkRunnerArg(mod),
	}
}

func (c *Checker) checkManifestSchema(mod *discovery.DiscoveredModule) Check {
	check := Check{Name: CheckManifestSchema, Passed: mod.Validation.SchemaValid}
	if !check.Passed {
		msg := "manifest failed schema validation"
		if len(mod.Validation.Errors) > 0 {
			msg = fmt.Sprintf("%s: %s", msg, strings.Join(mod.Validation.Errors, ", "))
		}
		check.Message = msg
	}
	return check
}

func (c *Checker) checkEntrypointExists(mod *discovery.DiscoveredModule) Check {
	check := Check{Name: CheckEntrypointExists}
	if mod.Manifest == nil {
		check.Message = "no manifest available to locate an entrypoint"
		return check
	}
	if discovery.EntrypointExists(mod.Manifest, c.cfg.RegistryRoot) {
		check.Passed = true
		return check
	}
	script, _ := mod.Manifest.Entrypoint.ScriptPath()
	check.Message = fmt.Sprintf("entrypoint script %q not found under %s", script, c.cfg.RegistryRoot)
	return check
}

func (c *Checker) checkCommandAvailable(mod *discovery.DiscoveredModule) Check {
	check := Check{Name: CheckCommandAvailable}
	if mod.Manifest == nil || mod.Manifest.Entrypoint.Command == "" {
		check.Message = "entrypoint command is empty"
		return check
	}
	if _, err := exec.LookPath(mod.Manifest.Entrypoint.Command); err != nil {
		check.Message = fmt.Sprintf("command %q not found on PATH", mod.Manifest.Entrypoint.Command)
		return check
	}
	check.Passed = true
	return check
}

func (c *Checker) checkRequiredEnv(mod *discovery.DiscoveredModule) Check {
	check := Check{Name: CheckRequiredEnv}
	missing := discovery.MissingRequiredEnv(mod.Manifest)
	if len(missing) > 0 {
		check.Message = fmt.Sprintf("required environment variables not set: %s", strings.Join(missing, ", "))
		return check
	}
	check.Passed = true
	return check
}

// checkRunnerArg guards against argument drift: when the entrypoint carries
// the --runner flag its value must equal the manifest's own name. Entrypoints
// without the flag pass, there is nothing to drift.
func (c *Checker) checkRunnerArg(mod *discovery.DiscoveredModule) Check {
	check := Check{Name: CheckRunnerArg}
	if mod.Manifest == nil {
		check.Message = "no manifest available to verify the runner argument"
		return check
	}
	ep := mod.Manifest.Entrypoint
	if !ep.HasFlag(manifest.RunnerFlag) {
		check.Passed = true
		return check
	}
	runner, ok := ep.RunnerArg()
	if !ok {
		check.Message = fmt.Sprintf("%s flag is present but carries no value", manifest.RunnerFlag)
		return check
	}
	if runner != mod.Manifest.Name.String() {
		check.Message = fmt.Sprintf("%s argument %q does not match module name %q",
			manifest.RunnerFlag, runner, mod.Manifest.Name)
		return check
	}
	check.Passed = true
	return check
}

// failingMessages collects the messages of every failed check, in check order.
func failingMessages(checks []Check) []string {
	var msgs []string
	for _, check := range checks {
		if !check.Passed {
			msgs = append(msgs, check.Message)
		}
	}
	return msgs
}
