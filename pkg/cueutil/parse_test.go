// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Descriptor: {
	name:    string
	count:   int
	enabled: bool
	note?:   string
}
`

type descriptor struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Enabled bool   `json:"enabled"`
	Note    string `json:"note,omitempty"`
}

func TestDecode(t *testing.T) {
	t.Run("valid JSON input decodes", func(t *testing.T) {
		data := []byte(`{"name": "probe", "count": 3, "enabled": true}`)

		result, err := DecodeString[descriptor](testSchema, data, "#Descriptor")
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if result.Value.Name != "probe" {
			t.Errorf("name = %q, want %q", result.Value.Name, "probe")
		}
		if result.Value.Count != 3 {
			t.Errorf("count = %d, want 3", result.Value.Count)
		}
		if !result.Value.Enabled {
			t.Error("enabled = false, want true")
		}
	})

	t.Run("optional field can be omitted", func(t *testing.T) {
		data := []byte(`{"name": "probe", "count": 0, "enabled": false}`)

		result, err := DecodeString[descriptor](testSchema, data, "#Descriptor")
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if result.Value.Note != "" {
			t.Errorf("note = %q, want empty", result.Value.Note)
		}
	})

	t.Run("wrong type is rejected", func(t *testing.T) {
		data := []byte(`{"name": "probe", "count": "three", "enabled": true}`)

		_, err := DecodeString[descriptor](testSchema, data, "#Descriptor")
		if err == nil {
			t.Fatal("expected error for string count")
		}
	})

	t.Run("error carries filename", func(t *testing.T) {
		data := []byte(`{"name": 42, "count": 1, "enabled": true}`)

		_, err := DecodeString[descriptor](testSchema, data, "#Descriptor", WithFilename("m/module.json"))
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "m/module.json") {
			t.Errorf("error %q does not mention filename", err.Error())
		}
	})

	t.Run("oversized input is rejected", func(t *testing.T) {
		data := []byte(`{"name": "probe", "count": 1, "enabled": true}`)

		_, err := DecodeString[descriptor](testSchema, data, "#Descriptor", WithMaxFileSize(4))
		if err == nil {
			t.Fatal("expected size error")
		}
	})
}

func TestCheckFileSize(t *testing.T) {
	if err := CheckFileSize([]byte("abc"), 3, "f"); err != nil {
		t.Errorf("unexpected error at limit: %v", err)
	}
	if err := CheckFileSize([]byte("abcd"), 3, "f"); err == nil {
		t.Error("expected error over limit")
	}
}
