// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"ecoreg-cli/pkg/cueutil"
)

//go:embed manifest_schema.cue
var manifestSchema string

// Parse reads and parses a module.json manifest from the given path,
// validating it against the embedded schema.
func Parse(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes parses manifest content from bytes. Uses cueutil.DecodeString
// for the schema-unify-decode flow: compile schema, compile manifest JSON,
// validate and decode.
func ParseBytes(data []byte, path string) (*Manifest, error) {
	result, err := cueutil.DecodeString[Manifest](
		manifestSchema,
		data,
		"#Manifest",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	return result.Value, nil
}

// ParseBytesLenient decodes manifest content without schema enforcement,
// returning whatever fields plain JSON decoding can recover. Used by lenient
// discovery to carry a best-effort manifest on invalid modules. The returned
// manifest may violate every invariant Parse guarantees.
func ParseBytesLenient(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
