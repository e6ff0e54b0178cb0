// SPDX-License-Identifier: MPL-2.0

package preflight

import (
	"ecoreg-cli/internal/config"
	"ecoreg-cli/internal/discovery"
	"ecoreg-cli/internal/issue"

	"github.com/charmbracelet/log"
)

// Resolver resolves a module name to an ExecutableRunner through a fresh
// discovery pass plus preflight evaluation.
type Resolver struct {
	loader  *discovery.Loader
	checker *Checker
}

// NewResolver creates a Resolver for the given configuration.
func NewResolver(cfg *config.Config, logger *log.Logger) (*Resolver, error) {
	loader, err := discovery.NewLoader(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Resolver{loader: loader, checker: NewChecker(cfg, logger)}, nil
}

// Resolve re-discovers the named module and runs preflight against it. A
// missing module yields a module-not-found error; a module failing preflight
// yields a not-executable error listing every failing check message.
func (r *Resolver) Resolve(name string) (*ExecutableRunner, error) {
	mod := r.loader.FindModule(name)
	if mod == nil {
		return nil, issue.ModuleNotFound(name)
	}

	runner, failed := r.checker.Evaluate(mod)
	if failed != nil {
		return nil, issue.ModuleNotExecutable(name, failingMessages(failed.Checks))
	}

	return runner, nil
}
