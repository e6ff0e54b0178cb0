// SPDX-License-Identifier: MPL-2.0

package drift

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"ecoreg-cli/internal/config"
	"ecoreg-cli/internal/discovery"
	"ecoreg-cli/internal/registry"
	"ecoreg-cli/pkg/semver"

	"github.com/charmbracelet/log"
)

// Detector computes drifts between a current RegistryState and a baseline,
// honoring the configured detection axis toggles and severity thresholds.
type Detector struct {
	cfg    *config.Config
	logger *log.Logger

	now func() time.Time
}

// NewDetector creates a Detector for the given configuration. A nil logger
// falls back to the default logger.
func NewDetector(cfg *config.Config, logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.Default()
	}
	return &Detector{cfg: cfg, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// BuildReport runs drift detection and assembles the full report: status
// classification, per-severity summary, baseline provenance, and
// priority-ordered recommendations.
func (d *Detector) BuildReport(current, baseline *registry.RegistryState, baselinePath string) *DriftReport {
	drifts := d.DetectDrifts(current, baseline)
	summary := Summarize(drifts)
	status := d.classify(summary)

	d.logger.Debug("drift scan complete",
		"drifts", summary.Total, "errors", summary.Error, "status", status)

	report := &DriftReport{
		ScanID:          newScanID(),
		GeneratedAt:     d.now(),
		Status:          status,
		Drifts:          drifts,
		Summary:         summary,
		Recommendations: buildRecommendations(drifts),
	}
	if baseline != nil {
		report.Baseline = &BaselineInfo{
			Path:        baselinePath,
			GeneratedAt: baseline.GeneratedAt,
			ModuleCount: baseline.Summary.Total,
		}
	}
	return report
}

// DetectDrifts diffs current against baseline. With no baseline every current
// module is an UNEXPECTED_MODULE warning and no other axis applies. Output
// ordering is deterministic: baseline-only names first, then current modules
// in snapshot order with their per-module findings.
func (d *Detector) DetectDrifts(current, baseline *registry.RegistryState) []Drift {
	detect := d.cfg.Drift.Detect
	var drifts []Drift

	if baseline == nil {
		if !detect.Unexpected {
			return nil
		}
		for _, mod := range current.Modules {
			drifts = append(drifts, unexpectedModule(mod.Name))
		}
		return drifts
	}

	currentByName := current.ByName()
	baselineByName := baseline.ByName()

	if detect.Missing {
		for _, mod := range baseline.Modules {
			if _, ok := currentByName[mod.Name]; ok {
				continue
			}
			drifts = append(drifts, Drift{
				Type:     TypeMissingModule,
				Severity: SeverityError,
				Module:   mod.Name,
				Expected: moduleVersion(mod),
				Hint:     "reinstall the module or remove it from the baseline",
			})
		}
	}

	for _, mod := range current.Modules {
		base, inBaseline := baselineByName[mod.Name]

		if !inBaseline {
			if detect.Unexpected {
				drifts = append(drifts, unexpectedModule(mod.Name))
			}
		} else {
			drifts = append(drifts, d.diffModule(base, mod)...)
		}

		// Validity axes look only at the current module's own status,
		// independent of baseline membership.
		if detect.ManifestInvalid {
			drifts = append(drifts, validityDrifts(mod)...)
		}
	}

	return drifts
}

// diffModule computes the paired-module axes for a name present in both
// snapshots.
func (d *Detector) diffModule(base, cur *discovery.DiscoveredModule) []Drift {
	detect := d.cfg.Drift.Detect
	var drifts []Drift

	baseVersion, curVersion := moduleVersion(base), moduleVersion(cur)
	if detect.VersionMismatch && baseVersion != curVersion {
		drifts = append(drifts, Drift{
			Type:     TypeVersionMismatch,
			Severity: versionMismatchSeverity(baseVersion, curVersion),
			Module:   cur.Name,
			Expected: baseVersion,
			Actual:   curVersion,
			Hint:     "review the version change and refresh the baseline if it is intentional",
		})
	}

	if detect.CapabilityChanges {
		removed, added := capabilityDiff(moduleCapabilities(base), moduleCapabilities(cur))
		if len(removed) > 0 {
			drifts = append(drifts, Drift{
				Type:     TypeRemovedCapability,
				Severity: SeverityWarning,
				Module:   cur.Name,
				Diff:     strings.Join(removed, ", "),
				Hint:     "confirm the capability removal and update any consumers relying on it",
			})
		}
		if len(added) > 0 {
			drifts = append(drifts, Drift{
				Type:     TypeAddedCapability,
				Severity: SeverityInfo,
				Module:   cur.Name,
				Diff:     strings.Join(added, ", "),
				Hint:     "refresh the baseline to start tracking the new capability",
			})
		}
	}

	if detect.EntrypointChanges {
		baseEp, curEp := entrypointString(base), entrypointString(cur)
		if baseEp != curEp {
			drifts = append(drifts, Drift{
				Type:     TypeEntrypointChanged,
				Severity: SeverityWarning,
				Module:   cur.Name,
				Expected: baseEp,
				Actual:   curEp,
				Hint:     "verify the new entrypoint is trusted, then refresh the baseline",
			})
		}
	}

	if detect.ContractMismatch {
		baseContract, curContract := moduleContract(base), moduleContract(cur)
		if contractsDiffer(baseContract, curContract) {
			drifts = append(drifts, Drift{
				Type:     TypeContractMismatch,
				Severity: SeverityWarning,
				Module:   cur.Name,
				Expected: baseContract,
				Actual:   curContract,
				Hint:     "align the declared contract version with the baseline or refresh the baseline",
			})
		}
	}

	return drifts
}

// validityDrifts derives drifts from the current module's own status.
func validityDrifts(mod *discovery.DiscoveredModule) []Drift {
	switch mod.Status {
	case discovery.StatusInvalid:
		return []Drift{{
			Type:     TypeManifestInvalid,
			Severity: SeverityError,
			Module:   mod.Name,
			Expected: string(discovery.StatusValid),
			Actual:   string(mod.Status),
			Diff:     strings.Join(mod.Validation.Errors, ", "),
			Hint:     "fix the manifest errors listed by 'ecoreg report --include-errors'",
		}}
	case discovery.StatusIncompatible:
		return []Drift{{
			Type:     TypeSchemaMismatch,
			Severity: SeverityError,
			Module:   mod.Name,
			Expected: string(discovery.StatusValid),
			Actual:   string(mod.Status),
			Hint:     "update the module to a contract version at or above the configured minimum",
		}}
	default:
		return nil
	}
}

func unexpectedModule(name string) Drift {
	return Drift{
		Type:        TypeUnexpectedModule,
		Severity:    SeverityWarning,
		Module:      name,
		Hint:        "run 'ecoreg verify --save-baseline' to adopt the module into the baseline",
		AutoFixable: true,
	}
}

// versionMismatchSeverity grades a version change: a changed major component
// or a downgrade is an error, everything else a warning. Strings that do not
// parse as semver stay at warning, the schema axis already flags them.
func versionMismatchSeverity(baseVersion, curVersion string) Severity {
	base, baseErr := semver.Parse(baseVersion)
	cur, curErr := semver.Parse(curVersion)
	if baseErr != nil || curErr != nil {
		return SeverityWarning
	}
	if cur.Major != base.Major || cur.CompareRelease(base) < 0 {
		return SeverityError
	}
	return SeverityWarning
}

// contractsDiffer compares declared contract versions, ignoring pre-release
// and build metadata when both parse as semver.
func contractsDiffer(base, cur string) bool {
	if base == cur {
		return false
	}
	bv, baseErr := semver.Parse(base)
	cv, curErr := semver.Parse(cur)
	if baseErr == nil && curErr == nil {
		return bv.CompareRelease(cv) != 0
	}
	return true
}

// capabilityDiff returns the sorted set differences between the baseline and
// current capability lists.
func capabilityDiff(base, cur []string) (removed, added []string) {
	baseSet := make(map[string]struct{}, len(base))
	for _, c := range base {
		baseSet[c] = struct{}{}
	}
	curSet := make(map[string]struct{}, len(cur))
	for _, c := range cur {
		curSet[c] = struct{}{}
	}

	for c := range baseSet {
		if _, ok := curSet[c]; !ok {
			removed = append(removed, c)
		}
	}
	for c := range curSet {
		if _, ok := baseSet[c]; !ok {
			added = append(added, c)
		}
	}
	sort.Strings(removed)
	sort.Strings(added)
	return removed, added
}

// classify derives the report status from the summary counts: critical when
// any fatal drift exists or errors reach the critical threshold, warning when
// any error exists or total drifts reach the warning threshold.
func (d *Detector) classify(sum Summary) Status {
	switch {
	case sum.Fatal > 0 || sum.Error >= d.cfg.Drift.CriticalThreshold:
		return StatusCritical
	case sum.Error > 0 || sum.Total >= d.cfg.Drift.WarningThreshold:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

// buildRecommendations emits remediation guidance in priority order: fatal
// drifts first, then missing modules, version mismatches, and finally
// baseline-update guidance for unexpected modules.
func buildRecommendations(drifts []Drift) []string {
	if len(drifts) == 0 {
		return []string{"system healthy: no drift detected"}
	}

	var fatal, missing, mismatched []string
	unexpected := 0
	for _, d := range drifts {
		switch {
		case d.Severity == SeverityFatal:
			fatal = append(fatal, d.Module)
		case d.Type == TypeMissingModule:
			missing = append(missing, d.Module)
		case d.Type == TypeVersionMismatch:
			mismatched = append(mismatched, d.Module)
		case d.Type == TypeUnexpectedModule:
			unexpected++
		}
	}

	var recs []string
	if len(fatal) > 0 {
		recs = append(recs, fmt.Sprintf("address fatal drift immediately: %s", strings.Join(fatal, ", ")))
	}
	if len(missing) > 0 {
		recs = append(recs, fmt.Sprintf("reinstall missing modules or prune them from the baseline: %s", strings.Join(missing, ", ")))
	}
	if len(mismatched) > 0 {
		recs = append(recs, fmt.Sprintf("review version changes before refreshing the baseline: %s", strings.Join(mismatched, ", ")))
	}
	if unexpected > 0 {
		recs = append(recs, fmt.Sprintf("run 'ecoreg verify --save-baseline' to adopt %d unexpected module(s)", unexpected))
	}
	if len(recs) == 0 {
		recs = append(recs, "review the reported drifts and refresh the baseline once resolved")
	}
	return recs
}

func moduleVersion(mod *discovery.DiscoveredModule) string {
	if mod.Manifest == nil {
		return ""
	}
	return mod.Manifest.Version
}

func moduleCapabilities(mod *discovery.DiscoveredModule) []string {
	if mod.Manifest == nil {
		return nil
	}
	return mod.Manifest.Capabilities
}

func moduleContract(mod *discovery.DiscoveredModule) string {
	if mod.Manifest == nil {
		return ""
	}
	return mod.Manifest.ContractVersion
}

func entrypointString(mod *discovery.DiscoveredModule) string {
	if mod.Manifest == nil {
		return ""
	}
	ep := mod.Manifest.Entrypoint
	return strings.TrimSpace(ep.Command + " " + strings.Join(ep.Args, " "))
}

// newScanID returns a random 16-hex-character scan identifier.
func newScanID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform source is broken; fall
		// back to a timestamp so a scan still gets a usable id.
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
