package restserver

import (
	"github.com/cmelendez/airdash/internal/controllers/openweather"
	"github.com/cmelendez/airdash/internal/types"
)

// Error kinds returned in the "error" field of failed responses.
const (
	errKindBadRequest   = "bad_request"
	errKindCityNotFound = "city_not_found"
	errKindUpstream     = "upstream_error"
)

// StatsResponse holds descriptive statistics for one station. PM10 is
// omitted for stations that do not report it.
type StatsResponse struct {
	City string                `json:"city"`
	PM25 types.AggregateStats  `json:"pm25"`
	PM10 *types.AggregateStats `json:"pm10,omitempty"`
}

// TimeSeriesResponse holds sampled readings for plotting.
type TimeSeriesResponse struct {
	City      string                  `json:"city"`
	Pollutant string                  `json:"pollutant"`
	Points    []types.TimeSeriesPoint `json:"points"`
}

// DailyResponse holds per-day mean concentrations.
type DailyResponse struct {
	City      string                  `json:"city"`
	Pollutant string                  `json:"pollutant"`
	Points    []types.TimeSeriesPoint `json:"points"`
}

// HourlyResponse holds the mean concentration per hour of day.
type HourlyResponse struct {
	City      string             `json:"city"`
	Pollutant string             `json:"pollutant"`
	Pattern   []types.HourlyMean `json:"pattern"`
}

// MonthlyResponse holds the mean concentration per calendar month.
type MonthlyResponse struct {
	City      string              `json:"city"`
	Pollutant string              `json:"pollutant"`
	Pattern   []types.MonthlyMean `json:"pattern"`
}

// ComparisonResponse aligns two stations on their common timestamps.
type ComparisonResponse struct {
	First  string `json:"first"`
	Second string `json:"second"`
	types.ComparisonResult
}

// SummaryEntry is one station's dashboard summary card.
type SummaryEntry struct {
	Station    string                 `json:"station"`
	PM25       types.AggregateStats   `json:"pm25"`
	PM10       *types.AggregateStats  `json:"pm10,omitempty"`
	Compliance types.ComplianceReport `json:"compliance"`
}

// SummaryResponse is the whole-dashboard summary across all stations.
type SummaryResponse struct {
	Stations []SummaryEntry `json:"stations"`
}

// CoordinatesResponse is the current air quality at a point.
type CoordinatesResponse struct {
	Lat        float64                `json:"lat"`
	Lon        float64                `json:"lon"`
	AirQuality openweather.AirQuality `json:"air_quality"`
}

// ForecastResponse holds the reshaped forecast for a geocoded city.
type ForecastResponse struct {
	Location openweather.Location        `json:"location"`
	Forecast []openweather.ForecastEntry `json:"forecast"`
}

// PopularCityEntry is one popular city with its current air quality,
// or an error note when lookup failed.
type PopularCityEntry struct {
	City       string                  `json:"city"`
	Country    string                  `json:"country"`
	AirQuality *openweather.AirQuality `json:"air_quality,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// PopularCitiesResponse lists the fixed worldwide display set.
type PopularCitiesResponse struct {
	Cities []PopularCityEntry `json:"cities"`
	Demo   bool               `json:"demo"`
}
