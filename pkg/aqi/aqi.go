// Package aqi provides functions for calculating Air Quality Index values
// from particulate matter concentrations according to EPA standards
package aqi

import "math"

// Category describes an AQI severity bucket for display.
type Category struct {
	Level string `json:"level"`
	Color string `json:"color"`
}

// CalculatePM25 calculates the Air Quality Index from PM2.5 concentration (μg/m³)
// Based on EPA AQI calculation formula for 24-hour PM2.5 averages
func CalculatePM25(pm25 float64) int {
	if pm25 < 0 {
		return 0
	}

	// EPA breakpoints for PM2.5
	var cLow, cHigh, iLow, iHigh float64

	switch {
	case pm25 <= 12.0:
		cLow, cHigh = 0.0, 12.0
		iLow, iHigh = 0, 50
	case pm25 <= 35.4:
		cLow, cHigh = 12.1, 35.4
		iLow, iHigh = 51, 100
	case pm25 <= 55.4:
		cLow, cHigh = 35.5, 55.4
		iLow, iHigh = 101, 150
	case pm25 <= 150.4:
		cLow, cHigh = 55.5, 150.4
		iLow, iHigh = 151, 200
	case pm25 <= 250.4:
		cLow, cHigh = 150.5, 250.4
		iLow, iHigh = 201, 300
	case pm25 <= 350.4:
		cLow, cHigh = 250.5, 350.4
		iLow, iHigh = 301, 400
	case pm25 <= 500.4:
		cLow, cHigh = 350.5, 500.4
		iLow, iHigh = 401, 500
	default:
		// Beyond 500.4, AQI is 500+
		return 500
	}

	// AQI calculation formula: I = (I_high - I_low) / (C_high - C_low) * (C - C_low) + I_low
	aqi := ((iHigh-iLow)/(cHigh-cLow))*(pm25-cLow) + iLow
	return int(math.Round(aqi))
}

// CalculatePM10 calculates the Air Quality Index from PM10 concentration (μg/m³)
// Based on EPA AQI calculation formula for 24-hour PM10 averages
func CalculatePM10(pm10 float64) int {
	if pm10 < 0 {
		return 0
	}

	// EPA breakpoints for PM10
	var cLow, cHigh, iLow, iHigh float64

	switch {
	case pm10 <= 54:
		cLow, cHigh = 0, 54
		iLow, iHigh = 0, 50
	case pm10 <= 154:
		cLow, cHigh = 55, 154
		iLow, iHigh = 51, 100
	case pm10 <= 254:
		cLow, cHigh = 155, 254
		iLow, iHigh = 101, 150
	case pm10 <= 354:
		cLow, cHigh = 255, 354
		iLow, iHigh = 151, 200
	case pm10 <= 424:
		cLow, cHigh = 355, 424
		iLow, iHigh = 201, 300
	case pm10 <= 504:
		cLow, cHigh = 425, 504
		iLow, iHigh = 301, 400
	case pm10 <= 604:
		cLow, cHigh = 505, 604
		iLow, iHigh = 401, 500
	default:
		// Beyond 604, AQI is 500+
		return 500
	}

	aqi := ((iHigh-iLow)/(cHigh-cLow))*(pm10-cLow) + iLow
	return int(math.Round(aqi))
}

// CategoryFromPM25 buckets a PM2.5 concentration directly into its
// display category.
func CategoryFromPM25(pm25 float64) Category {
	return CategoryForIndex(CalculatePM25(pm25))
}

// CategoryForIndex returns the AQI category for a given index value
func CategoryForIndex(aqi int) Category {
	switch {
	case aqi <= 50:
		return Category{Level: "Good", Color: "#00e400"}
	case aqi <= 100:
		return Category{Level: "Moderate", Color: "#ffff00"}
	case aqi <= 150:
		return Category{Level: "Unhealthy for Sensitive Groups", Color: "#ff7e00"}
	case aqi <= 200:
		return Category{Level: "Unhealthy", Color: "#ff0000"}
	case aqi <= 300:
		return Category{Level: "Very Unhealthy", Color: "#8f3f97"}
	default:
		return Category{Level: "Hazardous", Color: "#7e0023"}
	}
}

// OWMLevel describes one of the OpenWeatherMap Air Pollution API's
// 1-5 air quality index levels.
type OWMLevel struct {
	Level       string `json:"level"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

var owmLevels = map[int]OWMLevel{
	1: {Level: "Good", Color: "#00e400", Description: "Air quality is satisfactory"},
	2: {Level: "Fair", Color: "#ffff00", Description: "Air quality is acceptable"},
	3: {Level: "Moderate", Color: "#ff7e00", Description: "Sensitive groups may experience health effects"},
	4: {Level: "Poor", Color: "#ff0000", Description: "Everyone may begin to experience health effects"},
	5: {Level: "Very Poor", Color: "#8f3f97", Description: "Health alert: everyone may experience serious effects"},
}

// LevelForOWMIndex maps an OpenWeatherMap 1-5 AQI value to its
// descriptor. Out-of-range values map to level 1.
func LevelForOWMIndex(aqi int) OWMLevel {
	if level, ok := owmLevels[aqi]; ok {
		return level
	}
	return owmLevels[1]
}
