// SPDX-License-Identifier: MPL-2.0

package preflight

import (
	"strings"

	"ecoreg-cli/internal/discovery"
)

type (
	// ExecutableRunner is a module that passed every preflight check and may
	// be dispatched as a subprocess.
	ExecutableRunner struct {
		Module     *discovery.DiscoveredModule `json:"module"`
		Checks     []Check                     `json:"checks"`
		Executable bool                        `json:"executable"`
	}

	// FailedRunner is a module rejected by preflight. Reason is the
	// semicolon-joined list of failing check messages.
	FailedRunner struct {
		Module     *discovery.DiscoveredModule `json:"module"`
		Checks     []Check                     `json:"checks"`
		Executable bool                        `json:"executable"`
		Reason     string                      `json:"reason"`
	}
)

// Evaluate runs preflight for one module. Exactly one of the two return
// values is non-nil.
func (c *Checker) Evaluate(mod *discovery.DiscoveredModule) (*ExecutableRunner, *FailedRunner) {
	checks := c.RunChecks(mod)

	failing := failingMessages(checks)
	if len(failing) > 0 {
		c.logger.Debug("module failed preflight", "module", mod.Name, "failures", len(failing))
		return nil, &FailedRunner{
			Module: mod,
			Checks: checks,
			Reason: strings.Join(failing, "; "),
		}
	}

	return &ExecutableRunner{Module: mod, Checks: checks, Executable: true}, nil
}

// EvaluateAll partitions modules into executable and failed runners,
// preserving the input ordering within each partition.
func (c *Checker) EvaluateAll(mods []*discovery.DiscoveredModule) ([]*ExecutableRunner, []*FailedRunner) {
	var executable []*ExecutableRunner
	var failed []*FailedRunner

	for _, mod := range mods {
		ok, bad := c.Evaluate(mod)
		if ok != nil {
			executable = append(executable, ok)
			continue
		}
		failed = append(failed, bad)
	}

	return executable, failed
}
