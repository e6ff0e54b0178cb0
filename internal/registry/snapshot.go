// SPDX-License-Identifier: MPL-2.0

// Package registry aggregates discovered modules into immutable RegistryState
// snapshots, persists and loads baselines, and caches snapshots per key with
// a TTL.
package registry

import (
	"time"

	"ecoreg-cli/internal/discovery"
)

// StateVersion identifies the RegistryState serialization format.
const StateVersion = "1"

type (
	// Summary holds per-status module counts.
	Summary struct {
		Total        int `json:"total"`
		Valid        int `json:"valid"`
		Invalid      int `json:"invalid"`
		Incompatible int `json:"incompatible"`
		Unreachable  int `json:"unreachable"`
		Disabled     int `json:"disabled"`
	}

	// RegistryState is an immutable snapshot of the module population at one
	// point in time. Module ordering is the discovery ordering: root
	// priority, then lexical name.
	RegistryState struct {
		Version     string                        `json:"version"`
		GeneratedAt time.Time                     `json:"generatedAt"`
		Modules     []*discovery.DiscoveredModule `json:"modules"`
		Summary     Summary                       `json:"summary"`
	}
)

// BuildState aggregates modules into a RegistryState. Pure aggregation: no
// I/O, no side effects, discovery order preserved.
func BuildState(modules []*discovery.DiscoveredModule) *RegistryState {
	state := &RegistryState{
		Version:     StateVersion,
		GeneratedAt: time.Now().UTC(),
		Modules:     modules,
		Summary:     Summary{Total: len(modules)},
	}

	for _, mod := range modules {
		switch mod.Status {
		case discovery.StatusValid:
			state.Summary.Valid++
		case discovery.StatusInvalid:
			state.Summary.Invalid++
		case discovery.StatusIncompatible:
			state.Summary.Incompatible++
		case discovery.StatusUnreachable:
			state.Summary.Unreachable++
		case discovery.StatusDisabled:
			state.Summary.Disabled++
		}
	}

	return state
}

// ByName returns a name-indexed view of the snapshot's modules.
func (s *RegistryState) ByName() map[string]*discovery.DiscoveredModule {
	index := make(map[string]*discovery.DiscoveredModule, len(s.Modules))
	for _, mod := range s.Modules {
		index[mod.Name] = mod
	}
	return index
}

// Module returns the named module, or nil when absent from the snapshot.
func (s *RegistryState) Module(name string) *discovery.DiscoveredModule {
	for _, mod := range s.Modules {
		if mod.Name == name {
			return mod
		}
	}
	return nil
}
