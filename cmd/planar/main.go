// SPDX-License-Identifier: MIT

// Command planar estimates planar homographies from correspondence and
// calibration-target job files.
package main

import (
	"os"

	"github.com/katalvlaran/planar/cmd/planar/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
