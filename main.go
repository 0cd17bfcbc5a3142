// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/pkgsettings/pkgsettings/cmd/pkgsettings"

func main() {
	cmd.Execute()
}
