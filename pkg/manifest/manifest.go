// SPDX-License-Identifier: MPL-2.0

// Package manifest defines the module manifest model: the declarative
// descriptor of a module's identity, version, entrypoint, and contract
// compatibility, together with parsing and validation.
package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ManifestFileName is the fixed manifest filename looked up in each module
// directory during discovery.
const ManifestFileName = "module.json"

// RunnerFlag is the entrypoint argument flag whose value must match the
// manifest's own module name. See Entrypoint.RunnerArg.
const RunnerFlag = "--runner"

var (
	// ErrInvalidModuleName is the sentinel error wrapped by InvalidModuleNameError.
	ErrInvalidModuleName = errors.New("invalid module name")

	// moduleNameRegex is the slug pattern module names must match.
	moduleNameRegex = regexp.MustCompile(`^[a-z0-9-]+$`)
)

type (
	// ModuleName is a module's unique slug identifier ([a-z0-9-]+).
	ModuleName string

	// InvalidModuleNameError is returned when a ModuleName does not match the
	// slug pattern. It wraps ErrInvalidModuleName for errors.Is() compatibility.
	InvalidModuleNameError struct {
		Value ModuleName
	}

	// Entrypoint is the command and argument vector used to invoke a module's
	// process, plus optional environment and working directory overrides.
	Entrypoint struct {
		Command    string            `json:"command"`
		Args       []string          `json:"args"`
		Env        map[string]string `json:"env,omitempty"`
		WorkingDir string            `json:"workingDir,omitempty"`
	}

	// Manifest is the parsed module manifest.
	Manifest struct {
		Name        ModuleName `json:"name"`
		Version     string     `json:"version"`
		Description string     `json:"description"`
		Entrypoint  Entrypoint `json:"entrypoint"`

		// ContractVersion is the schema contract version the module declares
		// compatibility with. Optional; empty means "unspecified".
		ContractVersion string `json:"contractVersion,omitempty"`

		Capabilities []string `json:"capabilities,omitempty"`
		RequiredEnv  []string `json:"requiredEnv,omitempty"`
		Outputs      []string `json:"outputs,omitempty"`
	}
)

// Validate checks that the module name matches the slug pattern.
func (n ModuleName) Validate() error {
	if !moduleNameRegex.MatchString(string(n)) {
		return &InvalidModuleNameError{Value: n}
	}
	return nil
}

// String returns the module name as a plain string.
func (n ModuleName) String() string {
	return string(n)
}

// Error implements the error interface.
func (e *InvalidModuleNameError) Error() string {
	return fmt.Sprintf("invalid module name %q: must match [a-z0-9-]+", string(e.Value))
}

// Unwrap returns the sentinel for errors.Is() checks.
func (e *InvalidModuleNameError) Unwrap() error {
	return ErrInvalidModuleName
}

// ScriptPath returns the path argument conventionally referenced by the
// entrypoint's argument vector: the first argument that is not a flag and not
// a flag value. Returns false when the args carry no path argument.
func (ep *Entrypoint) ScriptPath() (string, bool) {
	skipNext := false
	for _, arg := range ep.Args {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			// Flags of the form --flag=value carry their value inline;
			// otherwise the next argument is the flag's value.
			if !strings.Contains(arg, "=") {
				skipNext = true
			}
			continue
		}
		return arg, true
	}
	return "", false
}

// RunnerArg returns the value following the --runner flag in the argument
// vector. Returns false when the flag is absent or has no value.
func (ep *Entrypoint) RunnerArg() (string, bool) {
	for i, arg := range ep.Args {
		if arg == RunnerFlag {
			if i+1 < len(ep.Args) {
				return ep.Args[i+1], true
			}
			return "", false
		}
		if v, ok := strings.CutPrefix(arg, RunnerFlag+"="); ok {
			return v, true
		}
	}
	return "", false
}

// HasFlag reports whether the argument vector already carries the given flag,
// either as a standalone token or in --flag=value form.
func (ep *Entrypoint) HasFlag(flag string) bool {
	for _, arg := range ep.Args {
		if arg == flag || strings.HasPrefix(arg, flag+"=") {
			return true
		}
	}
	return false
}
