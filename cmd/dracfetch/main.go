// main.go: dracfetch entry point
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	// Bundled static plugins register themselves on import.
	_ "github.com/draclabs/dracplug/plugins/markdownformat"
	_ "github.com/draclabs/dracplug/plugins/weather"
	_ "github.com/draclabs/dracplug/plugins/yamlformat"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := NewRootCommand(version, commit, date).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
