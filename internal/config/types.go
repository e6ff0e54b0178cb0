// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// RootPrimary is the registry's own module tree, highest priority.
	RootPrimary RootType = "primary"
	// RootCache holds modules materialized from remote sources.
	RootCache RootType = "cache"
	// RootSibling holds co-located modules from sibling projects.
	RootSibling RootType = "sibling"
	// RootCustom is an operator-supplied extra root.
	RootCustom RootType = "custom"
)

var (
	// ErrInvalidRootType is the sentinel error wrapped by InvalidRootTypeError.
	ErrInvalidRootType = errors.New("invalid search root type")
	// ErrInvalidThreshold is returned when a drift threshold is not positive.
	ErrInvalidThreshold = errors.New("invalid drift threshold")
)

type (
	// RootType classifies a search root's provenance. Priority is positional
	// (order in the search_roots list), not derived from the type.
	RootType string

	// InvalidRootTypeError is returned when a RootType value is not recognized.
	// It wraps ErrInvalidRootType for errors.Is() compatibility.
	InvalidRootTypeError struct {
		Value RootType
	}

	// SearchRoot is one prioritized directory scanned for module manifests.
	SearchRoot struct {
		Path string   `mapstructure:"path"`
		Type RootType `mapstructure:"type"`
	}

	// DetectConfig toggles individual drift detection axes. All default on.
	DetectConfig struct {
		Missing           bool `mapstructure:"missing"`
		Unexpected        bool `mapstructure:"unexpected"`
		VersionMismatch   bool `mapstructure:"version_mismatch"`
		ManifestInvalid   bool `mapstructure:"manifest_invalid"`
		CapabilityChanges bool `mapstructure:"capability_changes"`
		EntrypointChanges bool `mapstructure:"entrypoint_changes"`
		ContractMismatch  bool `mapstructure:"contract_mismatch"`
	}

	// DriftConfig holds the drift classifier thresholds and axis toggles.
	DriftConfig struct {
		CriticalThreshold int          `mapstructure:"critical_threshold"`
		WarningThreshold  int          `mapstructure:"warning_threshold"`
		Detect            DetectConfig `mapstructure:"detect"`
	}

	// UIConfig holds presentation preferences.
	UIConfig struct {
		Verbose bool `mapstructure:"verbose"`
	}

	// Config is the resolved ecoreg configuration.
	Config struct {
		// RegistryRoot anchors relative entrypoint script paths.
		RegistryRoot string `mapstructure:"registry_root"`

		// SearchRoots are scanned in order; the first root yielding a module
		// name wins.
		SearchRoots []SearchRoot `mapstructure:"search_roots"`

		// StrictManifests records malformed manifests as invalid modules
		// instead of silently skipping them.
		StrictManifests bool `mapstructure:"strict_manifests"`

		// MinContractVersion gates contract compatibility. Empty disables
		// the check.
		MinContractVersion string `mapstructure:"min_contract_version"`

		// Disabled lists module names excluded from the executable set.
		Disabled []string `mapstructure:"disabled"`

		Drift DriftConfig `mapstructure:"drift"`

		// CacheTTLSeconds bounds how long a cached RegistryState stays fresh.
		CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`

		// Redact lists extra secret values masked in captured module output,
		// on top of the values of each module's requiredEnv variables.
		Redact []string `mapstructure:"redact"`

		UI UIConfig `mapstructure:"ui"`
	}
)

// Validate checks that the root type is one of the known values.
func (t RootType) Validate() error {
	switch t {
	case RootPrimary, RootCache, RootSibling, RootCustom:
		return nil
	default:
		return &InvalidRootTypeError{Value: t}
	}
}

// Error implements the error interface.
func (e *InvalidRootTypeError) Error() string {
	return fmt.Sprintf("invalid search root type %q: must be one of primary, cache, sibling, custom", string(e.Value))
}

// Unwrap returns the sentinel for errors.Is() checks.
func (e *InvalidRootTypeError) Unwrap() error {
	return ErrInvalidRootType
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// IsDisabled reports whether the named module is configured as disabled.
func (c *Config) IsDisabled(name string) bool {
	for _, d := range c.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// Validate checks constraints the CUE schema cannot express on the resolved
// configuration.
func (c *Config) Validate() error {
	for i, root := range c.SearchRoots {
		if root.Path == "" {
			return fmt.Errorf("search_roots[%d]: path must not be empty", i)
		}
		if err := root.Type.Validate(); err != nil {
			return fmt.Errorf("search_roots[%d]: %w", i, err)
		}
	}

	if c.Drift.CriticalThreshold <= 0 {
		return fmt.Errorf("%w: drift.critical_threshold must be positive", ErrInvalidThreshold)
	}
	if c.Drift.WarningThreshold <= 0 {
		return fmt.Errorf("%w: drift.warning_threshold must be positive", ErrInvalidThreshold)
	}

	return nil
}

// DefaultConfig returns the built-in defaults used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		RegistryRoot: ".",
		SearchRoots: []SearchRoot{
			{Path: "modules", Type: RootPrimary},
		},
		Drift: DriftConfig{
			CriticalThreshold: 3,
			WarningThreshold:  5,
			Detect: DetectConfig{
				Missing:           true,
				Unexpected:        true,
				VersionMismatch:   true,
				ManifestInvalid:   true,
				CapabilityChanges: true,
				EntrypointChanges: true,
				ContractMismatch:  true,
			},
		},
		CacheTTLSeconds: 30,
	}
}
