// root.go: dracfetch root command
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the dracfetch command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dracfetch",
		Short: "dracfetch - extensible system information tool",
		Long: `dracfetch collects system information through a plugin system and
renders it with pluggable output formats.

Info-provider plugins supply data (weather, media, hardware details);
output-format plugins render the combined result (markdown, yaml).
Plugins are either compiled in or loaded as shared modules discovered
from the configured search paths.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().String("config", "", "path to the configuration file")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newPluginsCommand())

	return rootCmd
}
