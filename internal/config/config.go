// SPDX-License-Identifier: MPL-2.0

// Package config loads the ecoreg configuration: search roots, manifest
// strictness, drift thresholds, and cache policy. Config files are CUE,
// validated against an embedded schema and merged into Viper so environment
// variables can override individual values.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"ecoreg-cli/internal/issue"
	"ecoreg-cli/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "ecoreg"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// envPrefix namespaces environment variable overrides (ECOREG_*).
	envPrefix = "ECOREG"
)

//go:embed config_schema.cue
var configSchema string

// configFilePathOverride allows the --config flag to bypass path resolution.
var configFilePathOverride string

// SetConfigFilePathOverride sets an explicit config file path, used by the
// --config CLI flag. An empty value restores default resolution.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// ConfigDir returns the ecoreg configuration directory using platform
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application
// Support, and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load resolves and loads the configuration. Resolution order: explicit
// override path (from --config), then <config-dir>/config.cue, then
// ./config.cue; when no file exists the defaults are returned without error.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("registry_root", defaults.RegistryRoot)
	v.SetDefault("strict_manifests", defaults.StrictManifests)
	v.SetDefault("min_contract_version", defaults.MinContractVersion)
	v.SetDefault("drift.critical_threshold", defaults.Drift.CriticalThreshold)
	v.SetDefault("drift.warning_threshold", defaults.Drift.WarningThreshold)
	v.SetDefault("drift.detect.missing", defaults.Drift.Detect.Missing)
	v.SetDefault("drift.detect.unexpected", defaults.Drift.Detect.Unexpected)
	v.SetDefault("drift.detect.version_mismatch", defaults.Drift.Detect.VersionMismatch)
	v.SetDefault("drift.detect.manifest_invalid", defaults.Drift.Detect.ManifestInvalid)
	v.SetDefault("drift.detect.capability_changes", defaults.Drift.Detect.CapabilityChanges)
	v.SetDefault("drift.detect.entrypoint_changes", defaults.Drift.Detect.EntrypointChanges)
	v.SetDefault("drift.detect.contract_mismatch", defaults.Drift.Detect.ContractMismatch)
	v.SetDefault("cache_ttl_seconds", defaults.CacheTTLSeconds)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, err := resolveConfigPath(); err != nil {
		return nil, err
	} else if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the expected schema").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(cfg.SearchRoots) == 0 {
		cfg.SearchRoots = defaults.SearchRoots
	}

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Search root types must be primary, cache, sibling, or custom").
			WithSuggestion("Drift thresholds must be positive").
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

// resolveConfigPath returns the config file to load, or "" when none exists.
func resolveConfigPath() (string, error) {
	if configFilePathOverride != "" {
		if !fileExists(configFilePathOverride) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(configFilePathOverride).
				WithSuggestion("Verify the file path is correct").
				Wrap(fmt.Errorf("config file not found: %s", configFilePathOverride)).
				BuildError()
		}
		return configFilePathOverride, nil
	}

	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(cuePath) {
		return cuePath, nil
	}

	localPath := ConfigFileName + "." + ConfigFileExt
	if fileExists(localPath) {
		return localPath, nil
	}

	return "", nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config
// schema, and merges its contents into Viper.
//
// This bypasses cueutil.Decode because the config decodes to map[string]any
// for Viper merging (not a struct) and uses Concrete(false) since all fields
// are optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
