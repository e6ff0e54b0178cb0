// SPDX-License-Identifier: MPL-2.0

package invoke

import "strings"

// Mask replaces every secret occurrence in captured output.
const Mask = "[REDACTED]"

// Redact replaces every exact occurrence of each secret value in s with the
// mask. Empty secrets are skipped.
func Redact(s string, secrets []string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, Mask)
	}
	return s
}
