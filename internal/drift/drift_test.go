// SPDX-License-Identifier: MPL-2.0

package drift

import (
	"path/filepath"
	"strings"
	"testing"

	"ecoreg-cli/internal/config"
	"ecoreg-cli/internal/discovery"
	"ecoreg-cli/internal/registry"
	"ecoreg-cli/pkg/manifest"
)

func testModule(name, version string, caps ...string) *discovery.DiscoveredModule {
	return &discovery.DiscoveredModule{
		Name: name,
		Manifest: &manifest.Manifest{
			Name:            manifest.ModuleName(name),
			Version:         version,
			Description:     "test module",
			Entrypoint:      manifest.Entrypoint{Command: "sh", Args: []string{"run.sh"}},
			ContractVersion: "2.0.0",
			Capabilities:    caps,
		},
		Status: discovery.StatusValid,
		Validation: discovery.Validation{
			SchemaValid:        true,
			VersionCompatible:  true,
			EntrypointExists:   true,
			RequiredEnvPresent: true,
		},
	}
}

func testDetector() *Detector {
	return NewDetector(config.DefaultConfig(), nil)
}

func driftsOfType(drifts []Drift, typ Type) []Drift {
	var out []Drift
	for _, d := range drifts {
		if d.Type == typ {
			out = append(out, d)
		}
	}
	return out
}

func TestDetectDriftsNoBaseline(t *testing.T) {
	current := registry.BuildState([]*discovery.DiscoveredModule{
		testModule("alpha", "1.0.0"),
		testModule("beta", "2.0.0"),
		testModule("gamma", "3.0.0"),
	})

	drifts := testDetector().DetectDrifts(current, nil)
	if len(drifts) != 3 {
		t.Fatalf("len(drifts) = %d, want 3", len(drifts))
	}
	for _, d := range drifts {
		if d.Type != TypeUnexpectedModule {
			t.Errorf("drift type = %s, want %s", d.Type, TypeUnexpectedModule)
		}
		if d.Severity != SeverityWarning {
			t.Errorf("severity = %s, want %s", d.Severity, SeverityWarning)
		}
		if !d.AutoFixable {
			t.Error("AutoFixable = false, want true")
		}
	}
}

func TestDetectDriftsIdenticalStates(t *testing.T) {
	mods := []*discovery.DiscoveredModule{
		testModule("alpha", "1.0.0", "render"),
		testModule("beta", "2.0.0"),
	}
	current := registry.BuildState(mods)
	baseline := registry.BuildState(mods)

	det := testDetector()
	report := det.BuildReport(current, baseline, "")
	if len(report.Drifts) != 0 {
		t.Fatalf("len(Drifts) = %d, want 0: %+v", len(report.Drifts), report.Drifts)
	}
	if report.Status != StatusHealthy {
		t.Errorf("Status = %s, want %s", report.Status, StatusHealthy)
	}
	if len(report.Recommendations) != 1 || !strings.Contains(report.Recommendations[0], "healthy") {
		t.Errorf("Recommendations = %v, want single healthy recommendation", report.Recommendations)
	}
}

func TestDetectDriftsMissingModule(t *testing.T) {
	baseline := registry.BuildState([]*discovery.DiscoveredModule{
		testModule("alpha", "1.0.0"),
		testModule("beta", "2.0.0"),
	})
	current := registry.BuildState([]*discovery.DiscoveredModule{
		testModule("alpha", "1.0.0"),
	})

	drifts := testDetector().DetectDrifts(current, baseline)
	if len(drifts) != 1 {
		t.Fatalf("len(drifts) = %d, want 1: %+v", len(drifts), drifts)
	}
	if drifts[0].Type != TypeMissingModule || drifts[0].Severity != SeverityError {
		t.Errorf("drift = %s/%s, want %s/%s", drifts[0].Type, drifts[0].Severity, TypeMissingModule, SeverityError)
	}
	if drifts[0].Module != "beta" {
		t.Errorf("Module = %q, want %q", drifts[0].Module, "beta")
	}
}

func TestVersionMismatchSeverity(t *testing.T) {
	tests := []struct {
		name     string
		baseline string
		current  string
		want     Severity
	}{
		{"major upgrade", "1.2.3", "2.0.0", SeverityError},
		{"minor upgrade", "1.2.3", "1.3.0", SeverityWarning},
		{"patch upgrade", "1.2.3", "1.2.4", SeverityWarning},
		{"patch downgrade", "1.2.3", "1.2.2", SeverityError},
		{"major downgrade", "2.0.0", "1.9.9", SeverityError},
		{"unparseable current", "1.2.3", "latest", SeverityWarning},
	}

	det := testDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseline := registry.BuildState([]*discovery.DiscoveredModule{testModule("alpha", tt.baseline)})
			current := registry.BuildState([]*discovery.DiscoveredModule{testModule("alpha", tt.current)})

			drifts := driftsOfType(det.DetectDrifts(current, baseline), TypeVersionMismatch)
			if len(drifts) != 1 {
				t.Fatalf("len(version drifts) = %d, want 1", len(drifts))
			}
			if drifts[0].Severity != tt.want {
				t.Errorf("severity = %s, want %s", drifts[0].Severity, tt.want)
			}
			if drifts[0].Expected != tt.baseline || drifts[0].Actual != tt.current {
				t.Errorf("expected/actual = %s/%s, want %s/%s",
					drifts[0].Expected, drifts[0].Actual, tt.baseline, tt.current)
			}
		})
	}
}

func TestCapabilityDrifts(t *testing.T) {
	baseline := registry.BuildState([]*discovery.DiscoveredModule{
		testModule("alpha", "1.0.0", "render", "export", "sign"),
	})
	current := registry.BuildState([]*discovery.DiscoveredModule{
		testModule("alpha", "1.0.0", "render", "archive"),
	})

	drifts := testDetector().DetectDrifts(current, baseline)

	removed := driftsOfType(drifts, TypeRemovedCapability)
	if len(removed) != 1 {
		t.Fatalf("len(removed) = %d, want 1", len(removed))
	}
	if removed[0].Severity != SeverityWarning || removed[0].Diff != "export, sign" {
		t.Errorf("removed = %s %q, want %s %q", removed[0].Severity, removed[0].Diff, SeverityWarning, "export, sign")
	}

	added := driftsOfType(drifts, TypeAddedCapability)
	if len(added) != 1 {
		t.Fatalf("len(added) = %d, want 1", len(added))
	}
	if added[0].Severity != SeverityInfo || added[0].Diff != "archive" {
		t.Errorf("added = %s %q, want %s %q", added[0].Severity, added[0].Diff, SeverityInfo, "archive")
	}
}

func TestEntrypointChanged(t *testing.T) {
	base := testModule("alpha", "1.0.0")
	cur := testModule("alpha", "1.0.0")
	cur.Manifest.Entrypoint.Args = []string{"run.sh", "--fast"}

	drifts := testDetector().DetectDrifts(
		registry.BuildState([]*discovery.DiscoveredModule{cur}),
		registry.BuildState([]*discovery.DiscoveredModule{base}),
	)

	changed := driftsOfType(drifts, TypeEntrypointChanged)
	if len(changed) != 1 {
		t.Fatalf("len(entrypoint drifts) = %d, want 1: %+v", len(changed), drifts)
	}
	if changed[0].Severity != SeverityWarning {
		t.Errorf("severity = %s, want %s", changed[0].Severity, SeverityWarning)
	}
}

func TestContractMismatchIgnoresPrerelease(t *testing.T) {
	base := testModule("alpha", "1.0.0")
	base.Manifest.ContractVersion = "2.0.0"

	t.Run("prerelease-only difference is not drift", func(t *testing.T) {
		cur := testModule("alpha", "1.0.0")
		cur.Manifest.ContractVersion = "2.0.0-rc.1"

		drifts := testDetector().DetectDrifts(
			registry.BuildState([]*discovery.DiscoveredModule{cur}),
			registry.BuildState([]*discovery.DiscoveredModule{base}),
		)
		if got := driftsOfType(drifts, TypeContractMismatch); len(got) != 0 {
			t.Errorf("len(contract drifts) = %d, want 0", len(got))
		}
	})

	t.Run("release difference is drift", func(t *testing.T) {
		cur := testModule("alpha", "1.0.0")
		cur.Manifest.ContractVersion = "3.0.0"

		drifts := testDetector().DetectDrifts(
			registry.BuildState([]*discovery.DiscoveredModule{cur}),
			registry.BuildState([]*discovery.DiscoveredModule{base}),
		)
		got := driftsOfType(drifts, TypeContractMismatch)
		if len(got) != 1 {
			t.Fatalf("len(contract drifts) = %d, want 1", len(got))
		}
		if got[0].Severity != SeverityWarning {
			t.Errorf("severity = %s, want %s", got[0].Severity, SeverityWarning)
		}
	})
}

func TestValidityDrifts(t *testing.T) {
	invalid := testModule("broken", "1.0.0")
	invalid.Status = discovery.StatusInvalid
	invalid.Validation.SchemaValid = false
	invalid.Validation.Errors = []string{"name: missing"}

	incompatible := testModule("stale", "1.0.0")
	incompatible.Status = discovery.StatusIncompatible
	incompatible.Validation.VersionCompatible = false

	mods := []*discovery.DiscoveredModule{invalid, incompatible}
	drifts := testDetector().DetectDrifts(
		registry.BuildState(mods),
		registry.BuildState(mods),
	)

	if got := driftsOfType(drifts, TypeManifestInvalid); len(got) != 1 || got[0].Severity != SeverityError {
		t.Errorf("manifest-invalid drifts = %+v, want one at error", got)
	}
	if got := driftsOfType(drifts, TypeSchemaMismatch); len(got) != 1 || got[0].Severity != SeverityError {
		t.Errorf("schema-mismatch drifts = %+v, want one at error", got)
	}
}

func TestDisabledAxesEmitNothing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Drift.Detect = config.DetectConfig{} // every axis off
	det := NewDetector(cfg, nil)

	baseline := registry.BuildState([]*discovery.DiscoveredModule{
		testModule("alpha", "1.0.0", "render"),
		testModule("gone", "1.0.0"),
	})
	cur := testModule("alpha", "9.9.9")
	cur.Status = discovery.StatusInvalid
	current := registry.BuildState([]*discovery.DiscoveredModule{
		cur,
		testModule("fresh", "1.0.0"),
	})

	if drifts := det.DetectDrifts(current, baseline); len(drifts) != 0 {
		t.Errorf("len(drifts) = %d, want 0 with all axes disabled: %+v", len(drifts), drifts)
	}
	if drifts := det.DetectDrifts(current, nil); len(drifts) != 0 {
		t.Errorf("len(no-baseline drifts) = %d, want 0 with unexpected axis disabled", len(drifts))
	}
}

func TestStatusClassification(t *testing.T) {
	cfg := config.DefaultConfig() // critical 3, warning 5
	det := NewDetector(cfg, nil)

	tests := []struct {
		name string
		sum  Summary
		want Status
	}{
		{"empty", Summary{}, StatusHealthy},
		{"fatal forces critical", Summary{Total: 1, Fatal: 1}, StatusCritical},
		{"errors at threshold", Summary{Total: 3, Error: 3}, StatusCritical},
		{"single error", Summary{Total: 1, Error: 1}, StatusWarning},
		{"warnings at total threshold", Summary{Total: 5, Warning: 5}, StatusWarning},
		{"few warnings stay healthy", Summary{Total: 4, Warning: 4}, StatusHealthy},
		{"info only stays healthy", Summary{Total: 2, Info: 2}, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := det.classify(tt.sum); got != tt.want {
				t.Errorf("classify(%+v) = %s, want %s", tt.sum, got, tt.want)
			}
		})
	}
}

func TestStatusExitCode(t *testing.T) {
	tests := []struct {
		status Status
		want   int
	}{
		{StatusHealthy, 0},
		{StatusWarning, 1},
		{StatusCritical, 2},
	}
	for _, tt := range tests {
		if got := tt.status.ExitCode(); got != tt.want {
			t.Errorf("%s.ExitCode() = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	order := []Severity{SeverityInfo, SeverityWarning, SeverityError, SeverityFatal}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("Rank(%s) = %d not below Rank(%s) = %d",
				order[i-1], order[i-1].Rank(), order[i], order[i].Rank())
		}
	}
}

func TestRecommendationPriorityOrder(t *testing.T) {
	drifts := []Drift{
		unexpectedModule("fresh"),
		{Type: TypeVersionMismatch, Severity: SeverityWarning, Module: "alpha"},
		{Type: TypeMissingModule, Severity: SeverityError, Module: "gone"},
	}

	recs := buildRecommendations(drifts)
	if len(recs) != 3 {
		t.Fatalf("len(recs) = %d, want 3: %v", len(recs), recs)
	}
	if !strings.Contains(recs[0], "gone") {
		t.Errorf("recs[0] = %q, want missing-module guidance first", recs[0])
	}
	if !strings.Contains(recs[1], "alpha") {
		t.Errorf("recs[1] = %q, want version-mismatch guidance second", recs[1])
	}
	if !strings.Contains(recs[2], "--save-baseline") {
		t.Errorf("recs[2] = %q, want baseline-update guidance last", recs[2])
	}
}

func TestBaselineRoundTripYieldsNoDrift(t *testing.T) {
	state := registry.BuildState([]*discovery.DiscoveredModule{
		testModule("alpha", "1.0.0", "render"),
		testModule("beta", "2.1.0"),
	})

	path := filepath.Join(t.TempDir(), "baseline.json")
	if err := registry.SaveBaseline(path, state); err != nil {
		t.Fatal(err)
	}
	baseline, err := registry.LoadBaseline(path)
	if err != nil {
		t.Fatal(err)
	}

	report := testDetector().BuildReport(state, baseline, path)
	if len(report.Drifts) != 0 {
		t.Fatalf("len(Drifts) = %d, want 0 after round-trip: %+v", len(report.Drifts), report.Drifts)
	}
	if report.Status != StatusHealthy {
		t.Errorf("Status = %s, want %s", report.Status, StatusHealthy)
	}
	if report.Baseline == nil || report.Baseline.ModuleCount != 2 {
		t.Errorf("Baseline = %+v, want module count 2", report.Baseline)
	}
	if report.ScanID == "" {
		t.Error("ScanID is empty")
	}
}
