package openweather

import (
	"errors"

	"github.com/cmelendez/airdash/pkg/aqi"
)

// Sentinel errors surfaced at the adapter boundary. Callers check
// these with errors.Is; raw transport errors never cross the boundary.
var (
	ErrCityNotFound = errors.New("city not found")
	ErrUpstream     = errors.New("upstream provider error")
)

// Location is a geocoded city position.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
}

// AirQuality is the reshaped current air quality for one location.
// Concentrations are μg/m³.
type AirQuality struct {
	AQI              int          `json:"aqi"`
	AQILevel         aqi.OWMLevel `json:"aqi_level"`
	PM25             float64      `json:"pm2_5"`
	PM10             float64      `json:"pm10"`
	NO2              float64      `json:"no2"`
	SO2              float64      `json:"so2"`
	CO               float64      `json:"co"`
	O3               float64      `json:"o3"`
	NH3              float64      `json:"nh3"`
	WHOPM25Compliant bool         `json:"who_pm25_compliant"`
	WHOPM10Compliant bool         `json:"who_pm10_compliant"`
	Timestamp        string       `json:"timestamp"`
}

// ForecastEntry is one reshaped forecast period.
type ForecastEntry struct {
	Timestamp string       `json:"timestamp"`
	AQI       int          `json:"aqi"`
	AQILevel  aqi.OWMLevel `json:"aqi_level"`
	PM25      float64      `json:"pm2_5"`
	PM10      float64      `json:"pm10"`
	NO2       float64      `json:"no2"`
	SO2       float64      `json:"so2"`
}

// CityAirQuality bundles a geocoded location with its current air
// quality.
type CityAirQuality struct {
	Location   Location   `json:"location"`
	AirQuality AirQuality `json:"air_quality"`
	Timestamp  string     `json:"timestamp"`
}

// PopularCity names one of the fixed set of cities shown on the
// worldwide dashboard.
type PopularCity struct {
	Name    string
	Country string
}

// PopularCities is the fixed display set, in display order.
var PopularCities = []PopularCity{
	{"London", "GB"},
	{"Paris", "FR"},
	{"Tokyo", "JP"},
	{"New York", "US"},
	{"Beijing", "CN"},
	{"Delhi", "IN"},
	{"Mumbai", "IN"},
	{"Sydney", "AU"},
	{"Berlin", "DE"},
	{"Madrid", "ES"},
}

// Wire formats of the OpenWeatherMap API.

type owmWeatherResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type owmPollutionResponse struct {
	List []owmPollutionItem `json:"list"`
}

type owmPollutionItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		AQI int `json:"aqi"`
	} `json:"main"`
	Components struct {
		CO   float64 `json:"co"`
		NO2  float64 `json:"no2"`
		O3   float64 `json:"o3"`
		SO2  float64 `json:"so2"`
		PM25 float64 `json:"pm2_5"`
		PM10 float64 `json:"pm10"`
		NH3  float64 `json:"nh3"`
	} `json:"components"`
}
