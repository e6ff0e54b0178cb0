// SPDX-License-Identifier: MPL-2.0

package discovery

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"
)

// Diagnostic codes emitted during discovery.
const (
	// CodeManifestParseSkipped marks a malformed manifest skipped in lenient
	// mode.
	CodeManifestParseSkipped = "manifest_parse_skipped"
	// CodeModuleShadowed marks a module name already claimed by a higher
	// priority root. Resolution stays first-root-wins; the shadowed entry is
	// dropped but surfaced here so operators can spot the collision.
	CodeModuleShadowed = "module_shadowed"
	// CodeRootUnreadable marks a search root that could not be listed.
	CodeRootUnreadable = "root_unreadable"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic represents a structured discovery diagnostic that is
	// returned to callers (rather than written to stderr) for consistent
	// rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "module_shadowed").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)
