package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Stations []struct {
			Name       string   `yaml:"name"`
			File       string   `yaml:"file"`
			Pollutants []string `yaml:"pollutants"`
		} `yaml:"stations"`
		HTTP struct {
			ListenAddr string `yaml:"listen_addr"`
			Port       int    `yaml:"port"`
		} `yaml:"http,omitempty"`
		OpenWeather struct {
			APIKey      string `yaml:"api_key"`
			APIEndpoint string `yaml:"api_endpoint"`
		} `yaml:"openweather,omitempty"`
		Storage struct {
			Postgres *struct {
				ConnectionString string `yaml:"connection_string"`
			} `yaml:"postgres"`
		} `yaml:"storage,omitempty"`
		Stream struct {
			IntervalSeconds          int `yaml:"interval_seconds"`
			WorldwideIntervalSeconds int `yaml:"worldwide_interval_seconds"`
			BufferSize               int `yaml:"buffer_size"`
		} `yaml:"stream,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Stations: make([]StationData, len(yamlConfig.Stations)),
		HTTP: HTTPData{
			ListenAddr: yamlConfig.HTTP.ListenAddr,
			Port:       yamlConfig.HTTP.Port,
		},
		OpenWeather: OpenWeatherData{
			APIKey:      yamlConfig.OpenWeather.APIKey,
			APIEndpoint: yamlConfig.OpenWeather.APIEndpoint,
		},
		Stream: StreamData{
			IntervalSeconds:          yamlConfig.Stream.IntervalSeconds,
			WorldwideIntervalSeconds: yamlConfig.Stream.WorldwideIntervalSeconds,
			BufferSize:               yamlConfig.Stream.BufferSize,
		},
	}

	for i, station := range yamlConfig.Stations {
		config.Stations[i] = StationData{
			Name:       station.Name,
			File:       station.File,
			Pollutants: station.Pollutants,
		}
	}

	if yamlConfig.Storage.Postgres != nil {
		config.Storage.Postgres = &PostgresData{
			ConnectionString: yamlConfig.Storage.Postgres.ConnectionString,
		}
	}

	y.config = config
	return config, nil
}

// GetStations returns the configured monitoring stations
func (y *YAMLProvider) GetStations() ([]StationData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Stations, nil
}

// GetHTTPConfig returns the REST server configuration
func (y *YAMLProvider) GetHTTPConfig() (*HTTPData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.HTTP, nil
}

// GetOpenWeatherConfig returns the OpenWeatherMap adapter configuration
func (y *YAMLProvider) GetOpenWeatherConfig() (*OpenWeatherData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.OpenWeather, nil
}

// GetStorageConfig returns the optional response cache configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// IsReadOnly returns true since YAML files are not modified at runtime
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
