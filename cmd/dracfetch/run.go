// run.go: dracfetch run command
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/draclabs/dracplug"
)

func newRunCommand() *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect system information and render it",
		Long: `Run loads the configured plugins, collects data from every ready
info provider, and renders the result with the requested output format.

Example:
  dracfetch run
  dracfetch run --format yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, formatName)
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "markdown", "output format to render with")

	return cmd
}

func runFetch(cmd *cobra.Command, formatName string) error {
	manager, cfg, err := newManager(cmd)
	if err != nil {
		return err
	}
	defer manager.Shutdown()

	if err := manager.Initialize(cfg); err != nil {
		return fmt.Errorf("failed to initialize plugin system: %w", err)
	}

	format, ok := manager.OutputFormatByName(formatName)
	if !ok {
		return fmt.Errorf("no loaded plugin provides format %q", formatName)
	}

	data := map[string]string{
		"date": time.Now().Format("Monday, January 2, 2006"),
	}

	pluginData := make(map[string]map[string]string)
	for _, provider := range manager.InfoProviders() {
		if !provider.Enabled() {
			continue
		}
		name := provider.Metadata().Name
		if err := provider.CollectData(manager.Cache()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", name, err)
			continue
		}
		if fields := provider.Fields(); len(fields) > 0 {
			pluginData[name] = fields
		}
	}

	rendered, err := format.FormatOutput(formatName, data, pluginData)
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}

	fmt.Print(rendered)
	return nil
}

// newManager loads the configuration and builds a manager around the
// default static registry and platform loader. A missing configuration
// file means the compiled-in plugins run with defaults.
func newManager(cmd *cobra.Command) (*dracplug.Manager, dracplug.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		defaultPath, err := dracplug.DefaultConfigPath()
		if err != nil {
			return nil, dracplug.Config{}, err
		}
		configPath = defaultPath
	}

	var cfg dracplug.Config
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = dracplug.LoadConfig(configPath)
		if err != nil {
			return nil, dracplug.Config{}, err
		}
	} else {
		cfg = dracplug.Config{
			Enabled:  true,
			AutoLoad: dracplug.DefaultStaticRegistry().Names(),
		}
	}

	manager := dracplug.NewManager(dracplug.ManagerOptions{})
	return manager, cfg, nil
}
