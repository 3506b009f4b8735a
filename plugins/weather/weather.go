// weather.go: Weather information provider plugin
//
// Fetches current weather from one of three providers:
//   - Open-Meteo (no API key, coordinates only)
//   - Met.no (no API key, coordinates only)
//   - OpenWeatherMap (API key required, supports city names)
//
// Results are cached through the manager's cache facade for ten
// minutes so repeated fetch runs do not hammer the APIs.
//
// Configuration is read from plugins/weather.yaml next to the main
// configuration file; see DefaultConfig for the documented template.
//
// The plugin registers itself with the default static registry on
// import; link it into a binary with a blank import.
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package weather

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/draclabs/dracplug"
)

// PluginName is the registry name used for static registration.
const PluginName = "weather"

// cacheKey is where collected weather data lives in the plugin cache.
const cacheKey = "weather_data"

// cacheTTLSeconds is how long cached weather data stays fresh.
const cacheTTLSeconds = 600

func init() {
	dracplug.RegisterStaticPlugin(PluginName, dracplug.StaticPluginEntry{
		Create:  func() dracplug.Plugin { return New() },
		Destroy: func(dracplug.Plugin) {},
	})
}

// Coords is a geographic location.
type Coords struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// Config is the weather plugin configuration.
type Config struct {
	Enabled  bool    `yaml:"enabled"`
	Provider string  `yaml:"provider"`
	Units    string  `yaml:"units"`
	Coords   *Coords `yaml:"coords"`
	City     string  `yaml:"city"`
	APIKey   string  `yaml:"api_key"`
}

// DefaultConfig returns the disabled default written out when no
// configuration file exists yet.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Provider: ProviderOpenMeteo,
		Units:    UnitsMetric,
	}
}

// Data is a collected weather report. Temperature is nil until a fetch
// has succeeded.
type Data struct {
	Temperature *float64 `json:"temperature,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Units       string   `json:"units"`
}

// Weather provides current weather conditions as an info provider.
type Weather struct {
	metadata   dracplug.PluginMetadata
	config     Config
	configPath string
	client     *http.Client
	provider   Provider
	data       Data
	lastError  string
	ready      bool
}

// New creates a weather plugin that reads its configuration from the
// default location during Initialize.
func New() *Weather {
	return &Weather{
		metadata: dracplug.PluginMetadata{
			Name:        "Weather",
			Version:     "1.0.0",
			Author:      "DracLabs",
			Description: "Provides weather information from Open-Meteo, Met.no, or OpenWeatherMap",
			Type:        dracplug.TypeInfoProvider,
			Dependencies: dracplug.PluginDependencies{
				RequiresNetwork: true,
				RequiresCaching: true,
			},
		},
		configPath: defaultConfigPath(),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NewWithConfig creates a weather plugin with a fixed configuration and
// HTTP client, bypassing the configuration file. A nil client falls
// back to a ten second timeout default.
func NewWithConfig(cfg Config, client *http.Client) *Weather {
	w := New()
	w.config = cfg
	w.configPath = ""
	if client != nil {
		w.client = client
	}
	return w
}

func defaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "dracfetch", "plugins", "weather.yaml")
}

func (w *Weather) Metadata() dracplug.PluginMetadata { return w.metadata }

// Initialize loads configuration and selects a provider. Configuration
// problems disable the plugin rather than failing initialization, so a
// broken weather.yaml never takes the whole plugin system down.
func (w *Weather) Initialize(_ dracplug.PluginCache) error {
	if w.configPath != "" {
		cfg, err := loadConfig(w.configPath)
		if err != nil {
			w.lastError = err.Error()
			w.config.Enabled = false
		} else {
			w.config = cfg
		}
	}

	if w.config.Enabled {
		provider, err := newProvider(w.config, w.client)
		if err != nil {
			w.lastError = err.Error()
			w.config.Enabled = false
		} else {
			w.provider = provider
		}
	}

	w.ready = true
	return nil
}

func (w *Weather) Shutdown() {
	w.provider = nil
	w.ready = false
}

func (w *Weather) Ready() bool { return w.ready }

func (w *Weather) Enabled() bool { return w.config.Enabled }

// LastError reports the most recent configuration or fetch problem.
func (w *Weather) LastError() (string, bool) {
	return w.lastError, w.lastError != ""
}

// CollectData fetches current conditions, consulting the cache first.
func (w *Weather) CollectData(cache dracplug.PluginCache) error {
	if !w.ready {
		return dracplug.NewPluginNotReadyError(w.metadata.Name)
	}

	if !w.config.Enabled {
		w.lastError = "weather plugin is disabled in configuration"
		return nil
	}

	if w.provider == nil {
		w.lastError = "no weather provider configured"
		return dracplug.NewPluginFailureError(w.metadata.Name, "collect", nil)
	}

	w.lastError = ""

	if cache != nil {
		if cached, ok := cache.Get(cacheKey); ok {
			var data Data
			if err := json.Unmarshal([]byte(cached), &data); err == nil {
				w.data = data
				return nil
			}
		}
	}

	data, err := w.provider.Fetch()
	if err != nil {
		w.lastError = err.Error()
		return err
	}
	w.data = data

	if cache != nil {
		if encoded, err := json.Marshal(data); err == nil {
			cache.Set(cacheKey, string(encoded), cacheTTLSeconds)
		}
	}
	return nil
}

// Fields exposes collected values for output formatters.
func (w *Weather) Fields() map[string]string {
	fields := make(map[string]string)

	if w.data.Temperature != nil {
		temp := fmt.Sprintf("%.1f°%s", *w.data.Temperature, w.unitSymbol())
		fields["temp"] = temp
		fields["temperature"] = temp
	}
	if w.data.Description != "" {
		fields["desc"] = w.data.Description
	}
	if w.data.Location != "" {
		fields["location"] = w.data.Location
	}
	if w.data.Temperature != nil && w.data.Description != "" {
		fields["summary"] = fmt.Sprintf("%.1f°%s, %s", *w.data.Temperature, w.unitSymbol(), w.data.Description)
	}

	return fields
}

// DisplayValue formats the report for the main fetch output line.
func (w *Weather) DisplayValue() (string, error) {
	if w.data.Temperature == nil {
		return "", dracplug.NewNoDisplayValueError(w.metadata.Name)
	}

	value := fmt.Sprintf("%.0f°%s", *w.data.Temperature, w.unitSymbol())
	if w.data.Description != "" {
		value += ", " + w.data.Description
	}
	return value, nil
}

// DisplayIcon returns the Nerd Font weather glyph.
func (w *Weather) DisplayIcon() string { return "   " }

func (w *Weather) DisplayLabel() string { return "Weather" }

func (w *Weather) unitSymbol() string {
	if w.data.Units == UnitsImperial {
		return "F"
	}
	return "C"
}

// loadConfig reads the weather configuration file, writing a disabled
// default template when none exists.
func loadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeDefaultConfig(path)
			return DefaultConfig(), nil
		}
		return Config{}, dracplug.NewConfigReadError(path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, dracplug.NewConfigParseError(path, err)
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenMeteo
	}
	if cfg.Units == "" {
		cfg.Units = UnitsMetric
	}
	return cfg, nil
}

func writeDefaultConfig(path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}

	template := `# Weather plugin configuration.
# Enable or disable the weather plugin.
enabled: false

# Weather provider: "openmeteo", "metno", or "openweathermap".
# - openmeteo: free, no API key required, coordinates only
# - metno: free, no API key required, coordinates only
# - openweathermap: requires an API key, supports city names
provider: openmeteo

# Temperature units: "metric" (Celsius) or "imperial" (Fahrenheit).
units: metric

# Location as coordinates (required for openmeteo and metno):
# coords:
#   lat: 40.7128
#   lon: -74.0060

# Location as a city name (openweathermap only):
# city: "New York, NY"

# API key (required for openweathermap).
# Get a free key at https://openweathermap.org/api
# api_key: "your_api_key_here"
`
	_ = os.WriteFile(path, []byte(template), 0o644)
}
