// SPDX-License-Identifier: MPL-2.0

// Package drift diffs the current registry state against a baseline snapshot,
// classifies every divergence, and rolls the findings up into a DriftReport
// with an overall status and remediation guidance.
package drift

import (
	"time"
)

// Drift types, one per detection axis outcome.
const (
	TypeMissingModule     Type = "MISSING_MODULE"
	TypeUnexpectedModule  Type = "UNEXPECTED_MODULE"
	TypeVersionMismatch   Type = "VERSION_MISMATCH"
	TypeManifestInvalid   Type = "MANIFEST_INVALID"
	TypeSchemaMismatch    Type = "SCHEMA_MISMATCH"
	TypeRemovedCapability Type = "REMOVED_CAPABILITY"
	TypeAddedCapability   Type = "ADDED_CAPABILITY"
	TypeEntrypointChanged Type = "ENTRYPOINT_CHANGED"
	TypeContractMismatch  Type = "CONTRACT_MISMATCH"
)

// Severities in ascending order of urgency; Rank gives the canonical
// ordering shared by the detector and every renderer.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityFatal   Severity = "fatal"
)

// Report statuses derived from the drift summary counts.
const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

type (
	// Type names one kind of detected divergence.
	Type string

	// Severity grades how urgent a drift is.
	Severity string

	// Status is the overall report classification.
	Status string

	// Drift is one detected divergence between baseline and current state.
	Drift struct {
		Type        Type     `json:"type"`
		Severity    Severity `json:"severity"`
		Module      string   `json:"module"`
		Expected    string   `json:"expected,omitempty"`
		Actual      string   `json:"actual,omitempty"`
		Diff        string   `json:"diff,omitempty"`
		Hint        string   `json:"hint"`
		AutoFixable bool     `json:"autoFixable"`
	}

	// Summary holds per-severity drift counts.
	Summary struct {
		Total   int `json:"total"`
		Info    int `json:"info"`
		Warning int `json:"warning"`
		Error   int `json:"error"`
		Fatal   int `json:"fatal"`
	}

	// BaselineInfo describes the baseline a report was computed against.
	BaselineInfo struct {
		Path        string    `json:"path,omitempty"`
		GeneratedAt time.Time `json:"generatedAt"`
		ModuleCount int       `json:"moduleCount"`
	}

	// DriftReport is the ephemeral output of one drift scan. It is rendered,
	// never persisted as state.
	DriftReport struct {
		ScanID          string        `json:"scanId"`
		GeneratedAt     time.Time     `json:"generatedAt"`
		Status          Status        `json:"status"`
		Drifts          []Drift       `json:"drifts"`
		Summary         Summary       `json:"summary"`
		Baseline        *BaselineInfo `json:"baseline,omitempty"`
		Recommendations []string      `json:"recommendations"`
	}
)

// Rank maps the severity onto its canonical ordering: info < warning <
// error < fatal. Unknown severities rank below info.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	case SeverityFatal:
		return 4
	default:
		return 0
	}
}

// ExitCode maps the report status onto the process exit code contract:
// healthy 0, warning 1, critical 2.
func (s Status) ExitCode() int {
	switch s {
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	default:
		return 0
	}
}

// Summarize counts drifts per severity.
func Summarize(drifts []Drift) Summary {
	sum := Summary{Total: len(drifts)}
	for _, d := range drifts {
		switch d.Severity {
		case SeverityInfo:
			sum.Info++
		case SeverityWarning:
			sum.Warning++
		case SeverityError:
			sum.Error++
		case SeverityFatal:
			sum.Fatal++
		}
	}
	return sum
}
