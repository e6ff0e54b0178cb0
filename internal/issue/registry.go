// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"fmt"
	"strings"
)

// Machine-readable codes carried by RegistryError. CLI consumers switch on
// these rather than parsing messages.
const (
	CodeModuleNotFound      Code = "module_not_found"
	CodeModuleNotExecutable Code = "module_not_executable"
	CodeManifestParseError  Code = "manifest_parse_error"
	CodeBaselineLoadFailed  Code = "baseline_load_failed"
	CodeConfigLoadFailed    Code = "config_load_failed"
	CodeInvocationFailed    Code = "invocation_failed"
)

type (
	// Code is a stable machine-readable error identifier.
	Code string

	// RegistryError is the three-part error contract raised by registry
	// operations: a machine-readable code, a human message, and a remediation
	// hint. Reasons optionally carries per-check failure details (e.g. the
	// individual preflight messages behind a module_not_executable).
	RegistryError struct {
		Code        Code
		Message     string
		Remediation string
		Reasons     []string
		Cause       error
	}
)

// Error implements the error interface.
func (e *RegistryError) Error() string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "%s: %s", e.Code, e.Message)
	if len(e.Reasons) > 0 {
		fmt.Fprintf(&msg, " (%s)", strings.Join(e.Reasons, "; "))
	}
	return msg.String()
}

// Unwrap returns the underlying cause, if any.
func (e *RegistryError) Unwrap() error {
	return e.Cause
}

// Is matches RegistryErrors by code, so callers can compare against a
// prototype without constructing identical messages.
func (e *RegistryError) Is(target error) bool {
	other, ok := target.(*RegistryError)
	return ok && other.Code == e.Code
}

// ModuleNotFound builds the typed error for a named module absent from the
// current discovery result.
func ModuleNotFound(name string) *RegistryError {
	return &RegistryError{
		Code:        CodeModuleNotFound,
		Message:     fmt.Sprintf("module %q was not found in any search root", name),
		Remediation: "Run 'ecoreg report' to list discovered modules and check the configured search roots",
	}
}

// ModuleNotExecutable builds the typed error for a module that exists but
// failed one or more preflight checks. reasons lists the failing check
// messages.
func ModuleNotExecutable(name string, reasons []string) *RegistryError {
	return &RegistryError{
		Code:        CodeModuleNotExecutable,
		Message:     fmt.Sprintf("module %q is not executable", name),
		Remediation: "Fix the failing preflight checks and re-run 'ecoreg report --include-errors'",
		Reasons:     reasons,
	}
}

// InvocationFailed builds the typed error for a module process that could
// not be spawned or was interrupted before producing an exit code.
func InvocationFailed(name string, cause error) *RegistryError {
	return &RegistryError{
		Code:        CodeInvocationFailed,
		Message:     fmt.Sprintf("module %q could not be invoked", name),
		Remediation: "Check that the entrypoint command is installed and executable on this host",
		Cause:       cause,
	}
}

// BaselineLoadFailed builds the typed error for an unreadable or corrupt
// baseline file. A missing baseline file is NOT an error; callers degrade to
// the no-baseline drift semantics instead.
func BaselineLoadFailed(path string, cause error) *RegistryError {
	return &RegistryError{
		Code:        CodeBaselineLoadFailed,
		Message:     fmt.Sprintf("baseline at %s could not be loaded", path),
		Remediation: "Re-capture the baseline with 'ecoreg verify --save-baseline' or fix the file by hand",
		Cause:       cause,
	}
}
