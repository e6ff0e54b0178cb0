// SPDX-License-Identifier: MPL-2.0

// Package issue provides the error vocabulary of the registry: structured
// errors carrying a machine-readable code, a human message, and remediation
// hints, plus a rendered catalog of known failure modes. CLI consumers render
// diagnostics straight from these values without re-deriving context.
package issue
