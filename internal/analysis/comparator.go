package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cmelendez/airdash/internal/types"
)

// Compare aligns two series on their common timestamps and computes
// the Pearson correlation for one pollutant, plus how often the first
// series reads strictly higher than the second. Pairs where either
// value is missing are excluded. With fewer than two common
// timestamps the correlation is NaN.
func Compare(a, b *types.Series, pollutant string) types.ComparisonResult {
	var first, second []float64
	var points []types.ComparisonPoint

	// Both series are time-ordered, so a two-pointer merge finds the
	// timestamp intersection in one pass.
	i, j := 0, 0
	for i < len(a.Readings) && j < len(b.Readings) {
		ta, tb := a.Readings[i].Timestamp, b.Readings[j].Timestamp
		switch {
		case ta.Before(tb):
			i++
		case tb.Before(ta):
			j++
		default:
			va := a.Readings[i].Value(pollutant)
			vb := b.Readings[j].Value(pollutant)
			if !math.IsNaN(va) && !math.IsNaN(vb) {
				first = append(first, va)
				second = append(second, vb)
				points = append(points, types.ComparisonPoint{
					Date:        ta.Format("2006-01-02 15:04:05"),
					First:       va,
					Second:      vb,
					FirstHigher: va > vb,
				})
			}
			i++
			j++
		}
	}

	result := types.ComparisonResult{
		Correlation: types.JSONFloat(math.NaN()),
		TotalCount:  len(first),
		Points:      points,
	}

	for k := range first {
		if first[k] > second[k] {
			result.HigherCount++
		}
	}
	if len(first) > 0 {
		result.HigherPercent = float64(result.HigherCount) / float64(len(first)) * 100
	}
	if len(first) >= 2 {
		result.Correlation = types.JSONFloat(stat.Correlation(first, second, nil))
	}

	return result
}
