// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"ecoreg-cli/internal/issue"
)

// LoadBaseline reads a previously serialized RegistryState from path.
//
// A missing file is not an error: it returns (nil, nil) so callers degrade to
// the no-baseline drift semantics. An unreadable or corrupt file returns a
// typed baseline_load_failed error.
func LoadBaseline(path string) (*RegistryState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, issue.BaselineLoadFailed(path, err)
	}

	var state RegistryState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, issue.BaselineLoadFailed(path, err)
	}

	return &state, nil
}

// SaveBaseline serializes the state to path as indented JSON, the same
// lossless format the JSON report renderer emits.
func SaveBaseline(path string, state *RegistryState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize registry state: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write baseline to %s: %w", path, err)
	}

	return nil
}
