// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"time"

	"ecoreg-cli/internal/config"
	"ecoreg-cli/pkg/manifest"
)

const (
	// StatusValid marks a module whose manifest passed every check.
	StatusValid ModuleStatus = "valid"
	// StatusInvalid marks a module with schema or parse errors.
	StatusInvalid ModuleStatus = "invalid"
	// StatusIncompatible marks a module whose contract version is below the
	// configured minimum.
	StatusIncompatible ModuleStatus = "incompatible"
	// StatusUnreachable marks a module whose entrypoint script is missing
	// on disk.
	StatusUnreachable ModuleStatus = "unreachable"
	// StatusDisabled marks a module excluded by configuration.
	StatusDisabled ModuleStatus = "disabled"
)

type (
	// ModuleStatus classifies a discovered module. It is a pure function of
	// the validation fields plus the disabled list; see DeriveStatus.
	ModuleStatus string

	// Source records where a module was discovered.
	Source struct {
		Path         string          `json:"path"`
		Type         config.RootType `json:"type"`
		DiscoveredAt time.Time       `json:"discoveredAt"`
	}

	// Validation holds the per-check outcomes for one module.
	Validation struct {
		SchemaValid        bool     `json:"schemaValid"`
		VersionCompatible  bool     `json:"versionCompatible"`
		EntrypointExists   bool     `json:"entrypointExists"`
		RequiredEnvPresent bool     `json:"requiredEnvPresent"`
		Errors             []string `json:"errors,omitempty"`
	}

	// DiscoveredModule is one module found during discovery. Name is always
	// set: the manifest name when one was recovered, otherwise the module's
	// directory name, so invalid modules remain addressable.
	DiscoveredModule struct {
		Name       string             `json:"name"`
		Manifest   *manifest.Manifest `json:"manifest,omitempty"`
		Source     Source             `json:"source"`
		Status     ModuleStatus       `json:"status"`
		Validation Validation         `json:"validation"`
	}
)

// DeriveStatus computes the module status from its validation outcome.
// Precedence: schema errors dominate, then contract incompatibility, then a
// missing entrypoint, then the configured disabled list. A module with only
// missing required env vars stays valid; that gap surfaces in preflight.
func DeriveStatus(v Validation, disabled bool) ModuleStatus {
	switch {
	case !v.SchemaValid:
		return StatusInvalid
	case !v.VersionCompatible:
		return StatusIncompatible
	case !v.EntrypointExists:
		return StatusUnreachable
	case disabled:
		return StatusDisabled
	default:
		return StatusValid
	}
}
