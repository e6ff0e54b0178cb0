// SPDX-License-Identifier: MPL-2.0

// Package discovery finds module manifests across prioritized search roots,
// validates them, and derives each module's status. Discovery is synchronous
// and side-effect-free beyond file reads: repeated calls on an unchanged
// filesystem yield identical sequences.
package discovery
