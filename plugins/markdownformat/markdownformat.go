// markdownformat.go: Markdown output format plugin
//
// Renders collected system information as a Markdown document with the
// familiar fetch sections (General, System, Hardware, Software,
// Environment, Media) plus a section per info-provider plugin.
//
// The plugin registers itself with the default static registry on
// import; link it into a binary with a blank import.
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package markdownformat

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/draclabs/dracplug"
)

// PluginName is the registry name used for static registration.
const PluginName = "markdown_format"

func init() {
	dracplug.RegisterStaticPlugin(PluginName, dracplug.StaticPluginEntry{
		Create:  func() dracplug.Plugin { return New() },
		Destroy: func(dracplug.Plugin) {},
	})
}

// MarkdownFormat renders system information as Markdown.
type MarkdownFormat struct {
	metadata dracplug.PluginMetadata
	ready    bool
}

// New creates an uninitialized markdown format plugin.
func New() *MarkdownFormat {
	return &MarkdownFormat{
		metadata: dracplug.PluginMetadata{
			Name:        "Markdown Format",
			Version:     "1.0.0",
			Author:      "DracLabs",
			Description: "Provides markdown output formatting for system information",
			Type:        dracplug.TypeOutputFormat,
		},
	}
}

func (m *MarkdownFormat) Metadata() dracplug.PluginMetadata { return m.metadata }

func (m *MarkdownFormat) Initialize(_ dracplug.PluginCache) error {
	m.ready = true
	return nil
}

func (m *MarkdownFormat) Shutdown() { m.ready = false }

func (m *MarkdownFormat) Ready() bool { return m.ready }

// FormatNames reports the formats this plugin can render.
func (m *MarkdownFormat) FormatNames() []string { return []string{"markdown"} }

// FileExtension returns the file extension for rendered output.
func (m *MarkdownFormat) FileExtension(string) string { return "md" }

// FormatOutput renders data and pluginData as a Markdown document.
// Sections with no populated fields are omitted entirely.
func (m *MarkdownFormat) FormatOutput(_ string, data map[string]string, pluginData map[string]map[string]string) (string, error) {
	if !m.ready {
		return "", dracplug.NewPluginNotReadyError(m.metadata.Name)
	}

	var out strings.Builder
	out.Grow(2048)

	out.WriteString("# System Information\n\n")

	var general strings.Builder
	if date := data["date"]; date != "" {
		fmt.Fprintf(&general, "- **Date**: %s\n", date)
	}
	if weather := weatherSummary(data); weather != "" {
		fmt.Fprintf(&general, "- **Weather**: %s\n", weather)
	}
	if general.Len() > 0 {
		out.WriteString("## General\n\n")
		out.WriteString(general.String())
		out.WriteString("\n")
	}

	writeSection(&out, "System", data, []fieldSpec{
		{"host", "Host"},
		{"os", "OS"},
		{"kernel", "Kernel"},
	})

	writeSection(&out, "Hardware", data, []fieldSpec{
		{"ram", "RAM"},
		{"disk", "Disk"},
		{"cpu", "CPU"},
		{"gpu", "GPU"},
		{"uptime", "Uptime"},
	})

	var software strings.Builder
	if shell := data["shell"]; shell != "" {
		fmt.Fprintf(&software, "- **Shell**: %s\n", shell)
	}
	if packages := data["packages"]; packages != "" {
		if count, err := strconv.ParseUint(packages, 10, 64); err == nil && count > 0 {
			fmt.Fprintf(&software, "- **Packages**: %d\n", count)
		}
	}
	if software.Len() > 0 {
		out.WriteString("## Software\n\n")
		out.WriteString(software.String())
		out.WriteString("\n")
	}

	writeSection(&out, "Environment", data, []fieldSpec{
		{"de", "Desktop Environment"},
		{"wm", "Window Manager"},
	})

	if artist, hasArtist := data["playing_artist"]; hasArtist {
		if title, hasTitle := data["playing_title"]; hasTitle {
			if artist == "" {
				artist = "Unknown Artist"
			}
			if title == "" {
				title = "Unknown Title"
			}
			out.WriteString("## Media\n\n")
			fmt.Fprintf(&out, "- **Now Playing**: %s - %s\n\n", artist, title)
		}
	}

	if len(pluginData) > 0 {
		out.WriteString("## Plugin Data\n\n")
		for _, pluginID := range sortedKeys(pluginData) {
			fmt.Fprintf(&out, "### %s\n\n", pluginID)
			fields := pluginData[pluginID]
			for _, fieldName := range sortedKeys(fields) {
				fmt.Fprintf(&out, "- **%s**: %s\n", fieldName, fields[fieldName])
			}
			out.WriteString("\n")
		}
	}

	return out.String(), nil
}

type fieldSpec struct {
	key   string
	label string
}

func writeSection(out *strings.Builder, title string, data map[string]string, fields []fieldSpec) {
	var section strings.Builder
	for _, field := range fields {
		if value := data[field.key]; value != "" {
			fmt.Fprintf(&section, "- **%s**: %s\n", field.label, value)
		}
	}
	if section.Len() == 0 {
		return
	}
	fmt.Fprintf(out, "## %s\n\n", title)
	out.WriteString(section.String())
	out.WriteString("\n")
}

// weatherSummary builds the one-line weather value shown under General,
// preferring "N° in Town" over "N°, description" over a bare "N°".
func weatherSummary(data map[string]string) string {
	raw := data["weather_temperature"]
	if raw == "" {
		return ""
	}

	temperature, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		temperature = 0
	}
	degrees := int64(math.Round(temperature))

	if town := data["weather_town"]; town != "" {
		return fmt.Sprintf("%d° in %s", degrees, town)
	}
	if description, ok := data["weather_description"]; ok {
		return fmt.Sprintf("%d°, %s", degrees, description)
	}
	return fmt.Sprintf("%d°", degrees)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
