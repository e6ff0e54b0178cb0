// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ecoreg-cli/internal/config"
	"ecoreg-cli/pkg/manifest"

	"github.com/charmbracelet/log"
)

type (
	// Loader finds and validates module manifests across the configured
	// search roots.
	Loader struct {
		cfg       *config.Config
		validator *manifest.Validator
		logger    *log.Logger
	}

	// Result bundles the discovered modules with diagnostics produced during
	// discovery. Diagnostics include parse skips, shadowed names, and
	// unreadable roots.
	Result struct {
		Modules     []*DiscoveredModule
		Diagnostics []Diagnostic
	}
)

// NewLoader creates a Loader for the given configuration. A nil logger falls
// back to the default logger.
func NewLoader(cfg *config.Config, logger *log.Logger) (*Loader, error) {
	validator, err := manifest.NewValidator(cfg.MinContractVersion, cfg.StrictManifests)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{cfg: cfg, validator: validator, logger: logger}, nil
}

// DiscoverAll scans every search root in priority order. Per root, immediate
// subdirectories are visited in lexical order and checked for the fixed
// manifest filename. The first root yielding a module name wins; later
// occurrences are dropped with a module_shadowed diagnostic.
func (l *Loader) DiscoverAll() *Result {
	result := &Result{}
	seen := make(map[string]string) // module name -> winning root path

	for _, root := range l.cfg.SearchRoots {
		mods, diags := l.discoverRoot(root)
		result.Diagnostics = append(result.Diagnostics, diags...)

		// Deterministic ordering within the root: lexical module name. The
		// directory listing is already sorted, but a manifest name may differ
		// from its directory name.
		sort.Slice(mods, func(i, j int) bool {
			return mods[i].Name < mods[j].Name
		})

		for _, mod := range mods {
			if winner, exists := seen[mod.Name]; exists {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Severity: SeverityWarning,
					Code:     CodeModuleShadowed,
					Message: fmt.Sprintf("module %q in root %s is shadowed by root %s",
						mod.Name, root.Path, winner),
					Path: mod.Source.Path,
				})
				continue
			}
			seen[mod.Name] = root.Path
			result.Modules = append(result.Modules, mod)
		}
	}

	return result
}

// FindModule returns the named module from a fresh discovery pass, or nil
// when it is not present in any root.
func (l *Loader) FindModule(name string) *DiscoveredModule {
	for _, mod := range l.DiscoverAll().Modules {
		if mod.Name == name {
			return mod
		}
	}
	return nil
}

// discoverRoot scans one search root's immediate subdirectories.
func (l *Loader) discoverRoot(root config.SearchRoot) ([]*DiscoveredModule, []Diagnostic) {
	var mods []*DiscoveredModule
	var diags []Diagnostic

	l.logger.Debug("scanning search root", "path", root.Path, "type", root.Type)

	entries, err := os.ReadDir(root.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeRootUnreadable,
				Message:  fmt.Sprintf("search root %s could not be read", root.Path),
				Path:     root.Path,
				Cause:    err,
			})
		}
		return mods, diags
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		manifestPath := filepath.Join(root.Path, entry.Name(), manifest.ManifestFileName)
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			// Directories without a manifest are not modules
			continue
		}

		mod, diag := l.buildModule(entry.Name(), manifestPath, data, root)
		if diag != nil {
			diags = append(diags, *diag)
		}
		if mod != nil {
			mods = append(mods, mod)
		}
	}

	return mods, diags
}

// buildModule validates one manifest and assembles the DiscoveredModule.
// In lenient mode an unrecoverable manifest yields (nil, diagnostic); in
// strict mode it yields an invalid module carrying the parse error.
func (l *Loader) buildModule(dirName, manifestPath string, data []byte, root config.SearchRoot) (*DiscoveredModule, *Diagnostic) {
	res := l.validator.Validate(data, manifestPath)

	if res.Manifest == nil && !res.Valid {
		if !l.cfg.StrictManifests {
			l.logger.Debug("skipping malformed manifest", "path", manifestPath)
			return nil, &Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeManifestParseSkipped,
				Message:  fmt.Sprintf("malformed manifest skipped: %s", manifestPath),
				Path:     manifestPath,
			}
		}

		// Strict mode records the failure as an invalid module keyed by its
		// directory name.
		v := Validation{Errors: res.Errors}
		return &DiscoveredModule{
			Name:       dirName,
			Source:     l.newSource(manifestPath, root),
			Status:     DeriveStatus(v, false),
			Validation: v,
		}, nil
	}

	name := dirName
	if res.Manifest != nil && res.Manifest.Name != "" {
		name = res.Manifest.Name.String()
	}

	v := Validation{
		SchemaValid:        res.Valid,
		VersionCompatible:  res.VersionCompatible,
		EntrypointExists:   EntrypointExists(res.Manifest, l.cfg.RegistryRoot),
		RequiredEnvPresent: len(MissingRequiredEnv(res.Manifest)) == 0,
		Errors:             res.Errors,
	}

	return &DiscoveredModule{
		Name:       name,
		Manifest:   res.Manifest,
		Source:     l.newSource(manifestPath, root),
		Status:     DeriveStatus(v, l.cfg.IsDisabled(name)),
		Validation: v,
	}, nil
}

func (l *Loader) newSource(manifestPath string, root config.SearchRoot) Source {
	return Source{
		Path:         manifestPath,
		Type:         root.Type,
		DiscoveredAt: time.Now().UTC(),
	}
}

// EntrypointExists checks the script path referenced by the entrypoint args
// against the registry root. Entrypoints without a script path pass: there is
// nothing on disk to verify.
func EntrypointExists(m *manifest.Manifest, registryRoot string) bool {
	if m == nil {
		return false
	}

	script, ok := m.Entrypoint.ScriptPath()
	if !ok {
		return true
	}

	if !filepath.IsAbs(script) {
		script = filepath.Join(registryRoot, script)
	}

	_, err := os.Stat(script)
	return err == nil
}

// MissingRequiredEnv returns the declared requiredEnv variables that are
// unset or empty in the current process environment.
func MissingRequiredEnv(m *manifest.Manifest) []string {
	if m == nil {
		return nil
	}
	var missing []string
	for _, name := range m.RequiredEnv {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
