// plugins.go: dracfetch plugins subcommands
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/draclabs/dracplug"
)

func newPluginsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect the plugin system",
	}

	cmd.AddCommand(newPluginsListCommand())
	cmd.AddCommand(newPluginsDiscoverCommand())

	return cmd
}

func newPluginsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loaded plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, cfg, err := newManager(cmd)
			if err != nil {
				return err
			}
			defer manager.Shutdown()

			if err := manager.Initialize(cfg); err != nil {
				return fmt.Errorf("failed to initialize plugin system: %w", err)
			}

			loaded := manager.ListLoadedPlugins()
			if len(loaded) == 0 {
				fmt.Println("No plugins loaded.")
				return nil
			}

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "NAME\tVERSION\tTYPE\tDESCRIPTION")
			for _, meta := range loaded {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
					meta.Name, meta.Version, meta.Type, meta.Description)
			}
			return writer.Flush()
		},
	}
}

func newPluginsDiscoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Scan the search paths and list discoverable plugin modules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, cfg, err := newManager(cmd)
			if err != nil {
				return err
			}
			defer manager.Shutdown()

			for _, path := range cfg.SearchPaths {
				manager.AddSearchPath(path)
			}
			for _, path := range dracplug.DefaultSearchPaths() {
				manager.AddSearchPath(path)
			}
			if err := manager.ScanForPlugins(); err != nil {
				return err
			}

			statics := dracplug.DefaultStaticRegistry().Names()
			discovered := manager.ListDiscoveredPlugins()

			if len(statics) > 0 {
				fmt.Println("Compiled-in plugins:")
				for _, name := range statics {
					fmt.Printf("  %s\n", name)
				}
			}

			if len(discovered) == 0 {
				fmt.Println("No dynamic plugin modules found on the search paths.")
				return nil
			}

			fmt.Println("Dynamic plugin modules:")
			for _, name := range discovered {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}
}
