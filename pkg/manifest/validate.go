// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"

	"ecoreg-cli/pkg/semver"
)

type (
	// Validator performs structural and version-compatibility validation of
	// raw manifest content.
	Validator struct {
		// MinContractVersion is the minimum schema contract version modules
		// must declare. Nil disables the compatibility check.
		MinContractVersion *semver.Version

		// Strict rejects invalid manifests outright instead of returning a
		// best-effort manifest alongside the error list.
		Strict bool
	}

	// Result is the outcome of validating one manifest.
	Result struct {
		// Manifest is the parsed manifest. In strict mode it is nil unless
		// Valid; in lenient mode it carries a best-effort decode even when
		// validation failed.
		Manifest *Manifest

		// Valid reports whether the manifest passed all structural checks.
		Valid bool

		// VersionCompatible reports whether the declared contract version
		// satisfies the configured minimum. True when no minimum is set or
		// the manifest declares no contract version.
		VersionCompatible bool

		// Errors lists every validation failure, in check order.
		Errors []string
	}
)

// NewValidator creates a Validator with the given minimum contract version
// string. An empty minimum disables the compatibility check.
func NewValidator(minContractVersion string, strict bool) (*Validator, error) {
	v := &Validator{Strict: strict}
	if minContractVersion != "" {
		minimum, err := semver.Parse(minContractVersion)
		if err != nil {
			return nil, fmt.Errorf("invalid minimum contract version: %w", err)
		}
		v.MinContractVersion = minimum
	}
	return v, nil
}

// Validate parses and validates raw manifest bytes. The path is used only in
// error messages. Validation failures are recorded in Result.Errors, never
// returned as an error.
func (v *Validator) Validate(raw []byte, path string) Result {
	res := Result{VersionCompatible: true}

	m, err := ParseBytes(raw, path)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		if !v.Strict {
			// Best effort: recover whatever plain JSON decoding yields
			if lenient, lerr := ParseBytesLenient(raw); lerr == nil {
				res.Manifest = lenient
				res.Errors = append(res.Errors, v.semanticErrors(lenient)...)
				res.VersionCompatible = v.CompatibleWith(lenient)
			}
		}
		return res
	}

	res.Manifest = m
	res.Errors = append(res.Errors, v.semanticErrors(m)...)
	res.Valid = len(res.Errors) == 0

	res.VersionCompatible = v.CompatibleWith(m)
	if v.Strict && !res.Valid {
		res.Manifest = nil
	}

	return res
}

// semanticErrors runs the checks the structural schema cannot express:
// semver validity of version fields and the runner-name slug pattern on
// leniently decoded manifests.
func (v *Validator) semanticErrors(m *Manifest) []string {
	var errs []string

	if err := m.Name.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if m.Version == "" {
		errs = append(errs, "version is required")
	} else if !semver.IsValid(m.Version) {
		errs = append(errs, fmt.Sprintf("version %q is not valid semver", m.Version))
	}
	if m.Description == "" {
		errs = append(errs, "description is required")
	}
	if m.Entrypoint.Command == "" {
		errs = append(errs, "entrypoint.command must be non-empty")
	}
	if m.ContractVersion != "" && !semver.IsValid(m.ContractVersion) {
		errs = append(errs, fmt.Sprintf("contractVersion %q is not valid semver", m.ContractVersion))
	}

	return errs
}

// CompatibleWith reports whether the manifest's declared contract version
// satisfies the configured minimum. The comparison is component-wise (major,
// then minor, then patch) with missing components treated as 0. Pre-release
// and build metadata are not compared; this is a documented limitation.
// Manifests that declare no contract version are considered compatible.
func (v *Validator) CompatibleWith(m *Manifest) bool {
	if v.MinContractVersion == nil || m.ContractVersion == "" {
		return true
	}

	declared, err := semver.Parse(m.ContractVersion)
	if err != nil {
		return false
	}

	return declared.AtLeast(v.MinContractVersion)
}
