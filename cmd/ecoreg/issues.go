// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"ecoreg-cli/internal/issue"
)

// issueForError maps a typed registry error to its catalog entry. Errors
// without a catalog page return ok=false and are displayed plainly.
func issueForError(err error) (issue.Id, bool) {
	var regErr *issue.RegistryError
	if !errors.As(err, &regErr) {
		return 0, false
	}

	switch regErr.Code {
	case issue.CodeModuleNotFound:
		return issue.ModuleNotFoundId, true
	case issue.CodeModuleNotExecutable:
		return issue.ModuleNotExecutableId, true
	case issue.CodeBaselineLoadFailed:
		return issue.BaselineCorruptId, true
	case issue.CodeConfigLoadFailed:
		return issue.ConfigLoadFailedId, true
	default:
		return 0, false
	}
}

// renderIssue writes the rendered catalog entry for id to w. The help text is
// advisory; render failures only log and the caller still returns the
// underlying error.
func renderIssue(w io.Writer, id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}

	rendered, err := entry.Render("dark")
	if err != nil {
		newLogger().Warn("failed to render issue help", "issue", int(id), "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}
