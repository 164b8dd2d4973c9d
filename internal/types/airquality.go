// Package types contains shared data types used across the application.
package types

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// JSONFloat is a float64 that marshals NaN as null. Degenerate
// statistics (undefined correlation, empty windows) surface as null
// fields instead of breaking the JSON encoder.
type JSONFloat float64

// MarshalJSON implements json.Marshaler
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler; null decodes to NaN.
func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = JSONFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}

// Pollutant column names as they appear in station data files.
const (
	PollutantPM25 = "PM2.5"
	PollutantPM10 = "PM10"
)

// Reading is a single hourly observation from a monitoring station.
// Values maps a pollutant name to its concentration in μg/m³. A NaN
// value means the station did not report that pollutant for this hour.
type Reading struct {
	Timestamp time.Time
	Values    map[string]float64
}

// Value returns the concentration for a pollutant, or NaN if the
// pollutant is absent from this reading.
func (r Reading) Value(pollutant string) float64 {
	if v, ok := r.Values[pollutant]; ok {
		return v
	}
	return math.NaN()
}

// Series is an ordered sequence of readings for one station.
// Timestamps are strictly increasing with no duplicates.
type Series struct {
	Station    string
	Pollutants []string
	Readings   []Reading
}

// HasPollutant reports whether the series carries a column for the
// given pollutant.
func (s *Series) HasPollutant(pollutant string) bool {
	for _, p := range s.Pollutants {
		if p == pollutant {
			return true
		}
	}
	return false
}

// AggregateStats holds descriptive statistics for one pollutant over a
// series or sub-window. Count is the number of non-missing values.
type AggregateStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// HourlyMean is the mean concentration for one hour of day (0-23)
// across the whole series.
type HourlyMean struct {
	Hour  int     `json:"hour"`
	Value float64 `json:"value"`
}

// MonthlyMean is the mean concentration for one calendar month across
// the whole series.
type MonthlyMean struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// TimeSeriesPoint is a single (timestamp, value) pair for plotting.
type TimeSeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ComparisonPoint pairs the values of two stations at one common
// timestamp.
type ComparisonPoint struct {
	Date        string  `json:"date"`
	First       float64 `json:"first"`
	Second      float64 `json:"second"`
	FirstHigher bool    `json:"first_higher"`
}

// ComparisonResult holds the outcome of aligning two series on their
// common timestamps. Correlation is NaN when fewer than two common
// timestamps exist.
type ComparisonResult struct {
	Correlation   JSONFloat         `json:"correlation"`
	HigherCount   int               `json:"higher_count"`
	TotalCount    int               `json:"total_count"`
	HigherPercent float64           `json:"higher_percent"`
	Points        []ComparisonPoint `json:"comparison_data,omitempty"`
}

// Exceedance is one day whose mean concentration exceeded the WHO
// 24-hour guideline.
type Exceedance struct {
	Date       string  `json:"date"`
	Value      float64 `json:"value"`
	Limit      float64 `json:"limit"`
	ExceededBy float64 `json:"exceeded_by"`
}

// PollutantCompliance holds WHO guideline evaluation for one pollutant.
type PollutantCompliance struct {
	AnnualMean        float64      `json:"annual_mean"`
	AnnualLimit       float64      `json:"annual_limit"`
	AnnualCompliant   bool         `json:"annual_compliant"`
	DailyLimit        float64      `json:"daily_limit"`
	Exceedances       []Exceedance `json:"exceedances"`
	ExceedanceCount   int          `json:"exceedance_count"`
	TotalDays         int          `json:"total_days"`
	ExceedancePercent float64      `json:"exceedance_percent"`
}

// ComplianceReport evaluates a station against the WHO 2021 air
// quality guidelines. PM10 is nil for stations that do not report it.
type ComplianceReport struct {
	Station string               `json:"station"`
	PM25    PollutantCompliance  `json:"pm25"`
	PM10    *PollutantCompliance `json:"pm10,omitempty"`
}
