// yamlformat.go: YAML output format plugin
//
// Renders collected system information as a structured YAML document
// grouped into general, weather, system, hardware, software,
// environment, media, and per-plugin sections. Empty sections are
// omitted from the output.
//
// The plugin registers itself with the default static registry on
// import; link it into a binary with a blank import.
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package yamlformat

import (
	"gopkg.in/yaml.v3"

	"github.com/draclabs/dracplug"
)

// PluginName is the registry name used for static registration.
const PluginName = "yaml_format"

func init() {
	dracplug.RegisterStaticPlugin(PluginName, dracplug.StaticPluginEntry{
		Create:  func() dracplug.Plugin { return New() },
		Destroy: func(dracplug.Plugin) {},
	})
}

// YAMLFormat renders system information as YAML.
type YAMLFormat struct {
	metadata dracplug.PluginMetadata
	ready    bool
}

// New creates an uninitialized YAML format plugin.
func New() *YAMLFormat {
	return &YAMLFormat{
		metadata: dracplug.PluginMetadata{
			Name:        "YAML Format",
			Version:     "1.0.0",
			Author:      "DracLabs",
			Description: "Provides YAML output formatting for system information",
			Type:        dracplug.TypeOutputFormat,
		},
	}
}

func (y *YAMLFormat) Metadata() dracplug.PluginMetadata { return y.metadata }

func (y *YAMLFormat) Initialize(_ dracplug.PluginCache) error {
	y.ready = true
	return nil
}

func (y *YAMLFormat) Shutdown() { y.ready = false }

func (y *YAMLFormat) Ready() bool { return y.ready }

// FormatNames reports the formats this plugin can render.
func (y *YAMLFormat) FormatNames() []string { return []string{"yaml"} }

// FileExtension returns the file extension for rendered output.
func (y *YAMLFormat) FileExtension(string) string { return "yaml" }

// Document section types. Pointer fields with omitempty keep absent
// sections out of the emitted YAML.

type generalSection struct {
	Date string `yaml:"date,omitempty"`
}

type weatherSection struct {
	Temperature string `yaml:"temperature,omitempty"`
	Town        string `yaml:"town,omitempty"`
	Description string `yaml:"description,omitempty"`
}

type systemSection struct {
	Host            string `yaml:"host,omitempty"`
	OperatingSystem string `yaml:"operating_system,omitempty"`
	OSName          string `yaml:"os_name,omitempty"`
	OSVersion       string `yaml:"os_version,omitempty"`
	OSID            string `yaml:"os_id,omitempty"`
	Kernel          string `yaml:"kernel,omitempty"`
}

type memorySection struct {
	Info       string `yaml:"info,omitempty"`
	UsedBytes  string `yaml:"used_bytes,omitempty"`
	TotalBytes string `yaml:"total_bytes,omitempty"`
}

type diskSection struct {
	Info       string `yaml:"info,omitempty"`
	UsedBytes  string `yaml:"used_bytes,omitempty"`
	TotalBytes string `yaml:"total_bytes,omitempty"`
}

type cpuSection struct {
	Model         string `yaml:"model,omitempty"`
	CoresPhysical string `yaml:"cores_physical,omitempty"`
	CoresLogical  string `yaml:"cores_logical,omitempty"`
}

type uptimeSection struct {
	Formatted string `yaml:"formatted,omitempty"`
	Seconds   string `yaml:"seconds,omitempty"`
}

type hardwareSection struct {
	Memory *memorySection `yaml:"memory,omitempty"`
	Disk   *diskSection   `yaml:"disk,omitempty"`
	CPU    *cpuSection    `yaml:"cpu,omitempty"`
	GPU    string         `yaml:"gpu,omitempty"`
	Uptime *uptimeSection `yaml:"uptime,omitempty"`
}

type softwareSection struct {
	Shell        string `yaml:"shell,omitempty"`
	PackageCount string `yaml:"package_count,omitempty"`
}

type environmentSection struct {
	DesktopEnvironment string `yaml:"desktop_environment,omitempty"`
	WindowManager      string `yaml:"window_manager,omitempty"`
}

type nowPlayingSection struct {
	Artist string `yaml:"artist"`
	Title  string `yaml:"title"`
}

type mediaSection struct {
	NowPlaying nowPlayingSection `yaml:"now_playing"`
}

type document struct {
	General     *generalSection              `yaml:"general,omitempty"`
	Weather     *weatherSection              `yaml:"weather,omitempty"`
	System      *systemSection               `yaml:"system,omitempty"`
	Hardware    *hardwareSection             `yaml:"hardware,omitempty"`
	Software    *softwareSection             `yaml:"software,omitempty"`
	Environment *environmentSection          `yaml:"environment,omitempty"`
	Media       *mediaSection                `yaml:"media,omitempty"`
	Plugins     map[string]map[string]string `yaml:"plugins,omitempty"`
}

// FormatOutput renders data and pluginData as a YAML document starting
// with a document marker.
func (y *YAMLFormat) FormatOutput(_ string, data map[string]string, pluginData map[string]map[string]string) (string, error) {
	if !y.ready {
		return "", dracplug.NewPluginNotReadyError(y.metadata.Name)
	}

	doc := buildDocument(data, pluginData)

	encoded, err := yaml.Marshal(doc)
	if err != nil {
		return "", dracplug.NewPluginFailureError(y.metadata.Name, "failed to encode YAML output", err)
	}
	return "---\n" + string(encoded), nil
}

func buildDocument(data map[string]string, pluginData map[string]map[string]string) document {
	var doc document

	if data["date"] != "" {
		doc.General = &generalSection{Date: data["date"]}
	}

	if data["weather_temperature"] != "" {
		doc.Weather = &weatherSection{
			Temperature: data["weather_temperature"],
			Town:        data["weather_town"],
			Description: data["weather_description"],
		}
	}

	if data["host"] != "" || data["os"] != "" || data["kernel"] != "" {
		doc.System = &systemSection{
			Host:            data["host"],
			OperatingSystem: data["os"],
			OSName:          data["os_name"],
			OSVersion:       data["os_version"],
			OSID:            data["os_id"],
			Kernel:          data["kernel"],
		}
	}

	if data["ram"] != "" || data["disk"] != "" || data["cpu"] != "" ||
		data["gpu"] != "" || data["uptime"] != "" {
		hardware := &hardwareSection{GPU: data["gpu"]}
		if data["ram"] != "" {
			hardware.Memory = &memorySection{
				Info:       data["ram"],
				UsedBytes:  data["memory_used_bytes"],
				TotalBytes: data["memory_total_bytes"],
			}
		}
		if data["disk"] != "" {
			hardware.Disk = &diskSection{
				Info:       data["disk"],
				UsedBytes:  data["disk_used_bytes"],
				TotalBytes: data["disk_total_bytes"],
			}
		}
		if data["cpu"] != "" {
			hardware.CPU = &cpuSection{
				Model:         data["cpu"],
				CoresPhysical: data["cpu_cores_physical"],
				CoresLogical:  data["cpu_cores_logical"],
			}
		}
		if data["uptime"] != "" {
			hardware.Uptime = &uptimeSection{
				Formatted: data["uptime"],
				Seconds:   data["uptime_seconds"],
			}
		}
		doc.Hardware = hardware
	}

	if data["shell"] != "" || data["packages"] != "" {
		doc.Software = &softwareSection{
			Shell:        data["shell"],
			PackageCount: data["packages"],
		}
	}

	if data["de"] != "" || data["wm"] != "" {
		doc.Environment = &environmentSection{
			DesktopEnvironment: data["de"],
			WindowManager:      data["wm"],
		}
	}

	if data["playing"] != "" || data["playing_artist"] != "" || data["playing_title"] != "" {
		artist := data["playing_artist"]
		if artist == "" {
			artist = "Unknown Artist"
		}
		title := data["playing_title"]
		if title == "" {
			title = "Unknown Title"
		}
		doc.Media = &mediaSection{NowPlaying: nowPlayingSection{Artist: artist, Title: title}}
	}

	if len(pluginData) > 0 {
		doc.Plugins = pluginData
	}

	return doc
}
