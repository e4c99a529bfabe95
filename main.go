// SPDX-License-Identifier: MPL-2.0

// Command importmap resolves module specifiers through an import map.
package main

import cmd "github.com/invowk/importmap/cmd/importmap"

func main() {
	cmd.Execute()
}
