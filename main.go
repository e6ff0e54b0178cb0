// SPDX-License-Identifier: MPL-2.0

package main

import cmd "ecoreg-cli/cmd/ecoreg"

func main() {
	cmd.Execute()
}
