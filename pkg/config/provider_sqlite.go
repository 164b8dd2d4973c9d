package config

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database
// configuration. The database carries a stations table and a flat
// settings table of dotted keys.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	stations, err := s.GetStations()
	if err != nil {
		return nil, err
	}

	settings, err := s.loadSettings()
	if err != nil {
		return nil, err
	}

	config := &ConfigData{
		Stations: stations,
		HTTP: HTTPData{
			ListenAddr: settings["http.listen_addr"],
			Port:       settingInt(settings, "http.port"),
		},
		OpenWeather: OpenWeatherData{
			APIKey:      settings["openweather.api_key"],
			APIEndpoint: settings["openweather.api_endpoint"],
		},
		Stream: StreamData{
			IntervalSeconds:          settingInt(settings, "stream.interval_seconds"),
			WorldwideIntervalSeconds: settingInt(settings, "stream.worldwide_interval_seconds"),
			BufferSize:               settingInt(settings, "stream.buffer_size"),
		},
	}

	if cs := settings["storage.postgres.connection_string"]; cs != "" {
		config.Storage.Postgres = &PostgresData{ConnectionString: cs}
	}

	return config, nil
}

// GetStations returns the configured monitoring stations
func (s *SQLiteProvider) GetStations() ([]StationData, error) {
	rows, err := s.db.Query(`SELECT name, file, pollutants FROM stations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []StationData
	for rows.Next() {
		var station StationData
		var pollutants sql.NullString
		if err := rows.Scan(&station.Name, &station.File, &pollutants); err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		if pollutants.Valid && pollutants.String != "" {
			for _, p := range strings.Split(pollutants.String, ",") {
				station.Pollutants = append(station.Pollutants, strings.TrimSpace(p))
			}
		}
		stations = append(stations, station)
	}

	return stations, rows.Err()
}

// GetHTTPConfig returns the REST server configuration
func (s *SQLiteProvider) GetHTTPConfig() (*HTTPData, error) {
	cfg, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &cfg.HTTP, nil
}

// GetOpenWeatherConfig returns the OpenWeatherMap adapter configuration
func (s *SQLiteProvider) GetOpenWeatherConfig() (*OpenWeatherData, error) {
	cfg, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &cfg.OpenWeather, nil
}

// GetStorageConfig returns the optional response cache configuration
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	cfg, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &cfg.Storage, nil
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

func (s *SQLiteProvider) loadSettings() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan settings row: %w", err)
		}
		settings[key] = value
	}

	return settings, rows.Err()
}

func settingInt(settings map[string]string, key string) int {
	v, err := strconv.Atoi(settings[key])
	if err != nil {
		return 0
	}
	return v
}
