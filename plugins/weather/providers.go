// providers.go: Weather provider backends
//
// Each provider speaks one public weather API and normalizes the
// response into a Data report. Base URLs are fields so tests can point
// providers at a local server.
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package weather

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/draclabs/dracplug"
)

// Provider name constants accepted in the configuration file.
const (
	ProviderOpenMeteo      = "openmeteo"
	ProviderMetNo          = "metno"
	ProviderOpenWeatherMap = "openweathermap"
)

// Unit system constants accepted in the configuration file.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

const userAgent = "dracfetch-weather-plugin/1.0"

// Provider fetches a current weather report.
type Provider interface {
	Fetch() (Data, error)
}

// newProvider builds the provider named by cfg, validating that the
// configuration carries what that provider needs.
func newProvider(cfg Config, client *http.Client) (Provider, error) {
	switch cfg.Provider {
	case ProviderOpenMeteo:
		if cfg.Coords == nil {
			return nil, fmt.Errorf("openmeteo requires coordinates: set coords.lat and coords.lon in weather.yaml")
		}
		return &openMeteoProvider{
			baseURL: "https://api.open-meteo.com",
			coords:  *cfg.Coords,
			units:   cfg.Units,
			client:  client,
		}, nil

	case ProviderMetNo:
		if cfg.Coords == nil {
			return nil, fmt.Errorf("met.no requires coordinates: set coords.lat and coords.lon in weather.yaml")
		}
		return &metNoProvider{
			baseURL: "https://api.met.no",
			coords:  *cfg.Coords,
			units:   cfg.Units,
			client:  client,
		}, nil

	case ProviderOpenWeatherMap:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openweathermap requires an API key: set api_key in weather.yaml")
		}
		if cfg.Coords == nil && cfg.City == "" {
			return nil, fmt.Errorf("openweathermap requires a location: set coords or city in weather.yaml")
		}
		return &openWeatherMapProvider{
			baseURL: "https://api.openweathermap.org",
			coords:  cfg.Coords,
			city:    cfg.City,
			apiKey:  cfg.APIKey,
			units:   cfg.Units,
			client:  client,
		}, nil

	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}
}

// fetchJSON performs a GET request and decodes the JSON body into out.
func fetchJSON(client *http.Client, requestURL string, out any) error {
	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return dracplug.NewApiUnavailableError(PluginName, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return dracplug.NewApiUnavailableError(PluginName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return dracplug.NewApiUnavailableError(PluginName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return dracplug.NewApiUnavailableError(PluginName,
			fmt.Errorf("unexpected status %d from %s", resp.StatusCode, requestURL))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return dracplug.NewApiUnavailableError(PluginName,
			fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}

// --- Open-Meteo ---

type openMeteoProvider struct {
	baseURL string
	coords  Coords
	units   string
	client  *http.Client
}

type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

func (p *openMeteoProvider) Fetch() (Data, error) {
	tempUnit := "celsius"
	if p.units == UnitsImperial {
		tempUnit = "fahrenheit"
	}

	requestURL := fmt.Sprintf(
		"%s/v1/forecast?latitude=%.4f&longitude=%.4f&current_weather=true&temperature_unit=%s",
		p.baseURL, p.coords.Lat, p.coords.Lon, tempUnit)

	var resp openMeteoResponse
	if err := fetchJSON(p.client, requestURL, &resp); err != nil {
		return Data{}, err
	}

	temperature := resp.CurrentWeather.Temperature
	return Data{
		Temperature: &temperature,
		Description: openMeteoDescription(resp.CurrentWeather.WeatherCode),
		Units:       p.units,
	}, nil
}

// openMeteoDescription maps WMO weather interpretation codes to text.
func openMeteoDescription(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code == 1:
		return "mainly clear"
	case code == 2:
		return "partly cloudy"
	case code == 3:
		return "overcast"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 55:
		return "drizzle"
	case code == 56 || code == 57:
		return "freezing drizzle"
	case code >= 61 && code <= 65:
		return "rain"
	case code == 66 || code == 67:
		return "freezing rain"
	case code >= 71 && code <= 75:
		return "snow fall"
	case code == 77:
		return "snow grains"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code == 95:
		return "thunderstorm"
	case code >= 96 && code <= 99:
		return "thunderstorm with hail"
	default:
		return "unknown"
	}
}

// --- Met.no ---

type metNoProvider struct {
	baseURL string
	coords  Coords
	units   string
	client  *http.Client
}

type metNoResponse struct {
	Properties struct {
		Timeseries []struct {
			Data struct {
				Instant struct {
					Details struct {
						AirTemperature float64 `json:"air_temperature"`
					} `json:"details"`
				} `json:"instant"`
				Next1Hours *struct {
					Summary struct {
						SymbolCode string `json:"symbol_code"`
					} `json:"summary"`
				} `json:"next_1_hours"`
			} `json:"data"`
		} `json:"timeseries"`
	} `json:"properties"`
}

func (p *metNoProvider) Fetch() (Data, error) {
	requestURL := fmt.Sprintf(
		"%s/weatherapi/locationforecast/2.0/compact?lat=%.4f&lon=%.4f",
		p.baseURL, p.coords.Lat, p.coords.Lon)

	var resp metNoResponse
	if err := fetchJSON(p.client, requestURL, &resp); err != nil {
		return Data{}, err
	}

	if len(resp.Properties.Timeseries) == 0 {
		return Data{}, dracplug.NewApiUnavailableError(PluginName,
			fmt.Errorf("no timeseries data in met.no response"))
	}

	entry := resp.Properties.Timeseries[0]
	temperature := entry.Data.Instant.Details.AirTemperature
	if p.units == UnitsImperial {
		temperature = temperature*9.0/5.0 + 32.0
	}

	var description string
	if entry.Data.Next1Hours != nil {
		description = metNoDescription(entry.Data.Next1Hours.Summary.SymbolCode)
	}

	return Data{
		Temperature: &temperature,
		Description: description,
		Units:       p.units,
	}, nil
}

var metNoSymbolDescriptions = map[string]string{
	"clearsky":             "clear sky",
	"fair":                 "fair",
	"partlycloudy":         "partly cloudy",
	"cloudy":               "cloudy",
	"fog":                  "fog",
	"lightrain":            "light rain",
	"lightrainshowers":     "light rain showers",
	"lightrainandthunder":  "light rain and thunder",
	"rain":                 "rain",
	"rainshowers":          "rain showers",
	"rainandthunder":       "rain and thunder",
	"heavyrain":            "heavy rain",
	"heavyrainshowers":     "heavy rain showers",
	"heavyrainandthunder":  "heavy rain and thunder",
	"lightsleet":           "light sleet",
	"lightsleetshowers":    "light sleet showers",
	"lightsleetandthunder": "light sleet and thunder",
	"sleet":                "sleet",
	"sleetshowers":         "sleet showers",
	"sleetandthunder":      "sleet and thunder",
	"heavysleet":           "heavy sleet",
	"heavysleetshowers":    "heavy sleet showers",
	"heavysleetandthunder": "heavy sleet and thunder",
	"lightsnow":            "light snow",
	"lightsnowshowers":     "light snow showers",
	"lightsnowandthunder":  "light snow and thunder",
	"snow":                 "snow",
	"snowshowers":          "snow showers",
	"snowandthunder":       "snow and thunder",
	"heavysnow":            "heavy snow",
	"heavysnowshowers":     "heavy snow showers",
	"heavysnowandthunder":  "heavy snow and thunder",
}

// metNoDescription converts a met.no symbol code to human-readable
// text, stripping any time-of-day suffix first.
func metNoDescription(symbol string) string {
	for _, suffix := range []string{"_day", "_night", "_polartwilight"} {
		if stripped, ok := strings.CutSuffix(symbol, suffix); ok {
			symbol = stripped
			break
		}
	}
	if description, ok := metNoSymbolDescriptions[symbol]; ok {
		return description
	}
	return symbol
}

// --- OpenWeatherMap ---

type openWeatherMapProvider struct {
	baseURL string
	coords  *Coords
	city    string
	apiKey  string
	units   string
	client  *http.Client
}

type openWeatherMapResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Name    string          `json:"name"`
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
}

func (p *openWeatherMapProvider) Fetch() (Data, error) {
	unitsParam := UnitsMetric
	if p.units == UnitsImperial {
		unitsParam = UnitsImperial
	}

	query := url.Values{}
	query.Set("appid", p.apiKey)
	query.Set("units", unitsParam)
	if p.city != "" {
		query.Set("q", p.city)
	} else {
		query.Set("lat", fmt.Sprintf("%.3f", p.coords.Lat))
		query.Set("lon", fmt.Sprintf("%.3f", p.coords.Lon))
	}

	requestURL := p.baseURL + "/data/2.5/weather?" + query.Encode()

	var resp openWeatherMapResponse
	if err := fetchJSON(p.client, requestURL, &resp); err != nil {
		return Data{}, err
	}

	// The API reports errors in-band; cod is a number on success and a
	// string on failure.
	if cod := strings.Trim(string(resp.Cod), `"`); cod != "" && cod != "200" {
		message := resp.Message
		if message == "" {
			message = "OpenWeatherMap API error"
		}
		return Data{}, dracplug.NewApiUnavailableError(PluginName,
			fmt.Errorf("%s (code %s)", message, cod))
	}

	var description string
	if len(resp.Weather) > 0 {
		description = resp.Weather[0].Description
	}

	temperature := resp.Main.Temp
	return Data{
		Temperature: &temperature,
		Description: description,
		Location:    resp.Name,
		Units:       p.units,
	}, nil
}
