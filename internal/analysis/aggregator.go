// Package analysis computes descriptive statistics, cross-station
// comparisons, and WHO guideline compliance over loaded time series.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/cmelendez/airdash/internal/types"
)

var monthNames = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// values collects the non-missing samples for one pollutant.
func values(s *types.Series, pollutant string) []float64 {
	out := make([]float64, 0, len(s.Readings))
	for _, r := range s.Readings {
		v := r.Value(pollutant)
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Stats computes descriptive statistics for one pollutant over a
// series. An empty or all-missing series yields zero-value stats.
func Stats(s *types.Series, pollutant string) types.AggregateStats {
	x := values(s, pollutant)
	if len(x) == 0 {
		return types.AggregateStats{}
	}

	min, max := x[0], x[0]
	for _, v := range x[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	st := types.AggregateStats{
		Mean:   stat.Mean(x, nil),
		Median: median(x),
		Min:    min,
		Max:    max,
		Count:  len(x),
	}
	if len(x) > 1 {
		st.StdDev = stat.StdDev(x, nil)
	}
	return st
}

// median returns the midpoint median of x. gonum's quantile kinds use
// empirical-CDF conventions, while the reported median must average
// the two central samples for even counts.
func median(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// TimeSeries returns every stride-th reading for plotting. A stride
// below 1 returns every reading. Missing values are skipped.
func TimeSeries(s *types.Series, pollutant string, stride int) []types.TimeSeriesPoint {
	if stride < 1 {
		stride = 1
	}
	points := make([]types.TimeSeriesPoint, 0, len(s.Readings)/stride+1)
	for i := 0; i < len(s.Readings); i += stride {
		r := s.Readings[i]
		v := r.Value(pollutant)
		if math.IsNaN(v) {
			continue
		}
		points = append(points, types.TimeSeriesPoint{
			Date:  r.Timestamp.Format("2006-01-02 15:04:05"),
			Value: v,
		})
	}
	return points
}

// HourlyPattern returns the mean concentration for each hour of day
// (0-23) in ascending hour order. Hours with no samples are omitted.
func HourlyPattern(s *types.Series, pollutant string) []types.HourlyMean {
	var sums, counts [24]float64
	for _, r := range s.Readings {
		v := r.Value(pollutant)
		if math.IsNaN(v) {
			continue
		}
		h := r.Timestamp.Hour()
		sums[h] += v
		counts[h]++
	}

	out := make([]types.HourlyMean, 0, 24)
	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			continue
		}
		out = append(out, types.HourlyMean{Hour: h, Value: sums[h] / counts[h]})
	}
	return out
}

// MonthlyPattern returns the mean concentration for each calendar
// month in ascending month order. Months with no samples are omitted.
func MonthlyPattern(s *types.Series, pollutant string) []types.MonthlyMean {
	var sums, counts [13]float64
	for _, r := range s.Readings {
		v := r.Value(pollutant)
		if math.IsNaN(v) {
			continue
		}
		m := int(r.Timestamp.Month())
		sums[m] += v
		counts[m]++
	}

	out := make([]types.MonthlyMean, 0, 12)
	for m := 1; m <= 12; m++ {
		if counts[m] == 0 {
			continue
		}
		out = append(out, types.MonthlyMean{Month: monthNames[m-1], Value: sums[m] / counts[m]})
	}
	return out
}

// DailyMeans returns the mean concentration per calendar date in
// chronological order. Days with no non-missing samples are omitted.
func DailyMeans(s *types.Series, pollutant string) []types.TimeSeriesPoint {
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	dates := make([]string, 0)

	for _, r := range s.Readings {
		v := r.Value(pollutant)
		if math.IsNaN(v) {
			continue
		}
		date := dateOf(r.Timestamp)
		if _, seen := counts[date]; !seen {
			dates = append(dates, date)
		}
		sums[date] += v
		counts[date]++
	}

	// Readings are time-ordered so first-seen order is chronological,
	// but sort anyway to keep the invariant independent of the input.
	sort.Strings(dates)

	out := make([]types.TimeSeriesPoint, 0, len(dates))
	for _, date := range dates {
		out = append(out, types.TimeSeriesPoint{Date: date, Value: sums[date] / counts[date]})
	}
	return out
}

// ValidatePollutant returns an error when the series has no column for
// the requested pollutant.
func ValidatePollutant(s *types.Series, pollutant string) error {
	if !s.HasPollutant(pollutant) {
		return fmt.Errorf("station %s does not report %s", s.Station, pollutant)
	}
	return nil
}

// dateOf truncates a timestamp to its calendar date string.
func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
