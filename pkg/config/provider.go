// Package config provides configuration loading for the dashboard
// service from YAML files or SQLite databases.
package config

import "os"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetStations() ([]StationData, error)
	GetHTTPConfig() (*HTTPData, error)
	GetOpenWeatherConfig() (*OpenWeatherData, error)
	GetStorageConfig() (*StorageData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Stations    []StationData   `json:"stations"`
	HTTP        HTTPData        `json:"http,omitempty"`
	OpenWeather OpenWeatherData `json:"openweather,omitempty"`
	Storage     StorageData     `json:"storage,omitempty"`
	Stream      StreamData      `json:"stream,omitempty"`
}

// StationData describes one monitoring station and its historical
// data file.
type StationData struct {
	Name       string   `json:"name"`
	File       string   `json:"file"`
	Pollutants []string `json:"pollutants,omitempty"`
}

// HTTPData holds the REST server listener configuration
type HTTPData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty"`
}

// OpenWeatherData holds credentials and endpoint for the OpenWeatherMap
// Air Pollution API. An empty APIKey puts the adapter in demo mode.
type OpenWeatherData struct {
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`
}

// StorageData holds the configuration for the optional response cache
type StorageData struct {
	Postgres *PostgresData `json:"postgres,omitempty"`
}

// PostgresData holds the Postgres connection configuration
type PostgresData struct {
	ConnectionString string `json:"connection_string"`
}

// StreamData holds tunables for the SSE streaming endpoints
type StreamData struct {
	IntervalSeconds          int `json:"interval_seconds,omitempty"`
	WorldwideIntervalSeconds int `json:"worldwide_interval_seconds,omitempty"`
	BufferSize               int `json:"buffer_size,omitempty"`
}

// ResolveAPIKey returns the configured API key, falling back to the
// OPENWEATHER_API_KEY environment variable.
func (o OpenWeatherData) ResolveAPIKey() string {
	if o.APIKey != "" {
		return o.APIKey
	}
	return os.Getenv("OPENWEATHER_API_KEY")
}
