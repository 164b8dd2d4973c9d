package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/cmelendez/airdash/internal/types"
)

// WHO Air Quality Guidelines (2021), μg/m³. Not configurable.
const (
	WHOPM25Annual = 5.0
	WHOPM25Daily  = 15.0
	WHOPM10Annual = 15.0
	WHOPM10Daily  = 45.0
)

// CheckCompliance evaluates a station's series against the WHO 2021
// guidelines. PM2.5 is always evaluated; PM10 is included only when
// the station reports it.
func CheckCompliance(s *types.Series) types.ComplianceReport {
	report := types.ComplianceReport{
		Station: s.Station,
		PM25:    checkPollutant(s, types.PollutantPM25, WHOPM25Annual, WHOPM25Daily),
	}

	if s.HasPollutant(types.PollutantPM10) {
		pm10 := checkPollutant(s, types.PollutantPM10, WHOPM10Annual, WHOPM10Daily)
		report.PM10 = &pm10
	}

	return report
}

// checkPollutant compares the annual mean against the annual limit and
// each daily mean against the 24-hour limit. An exceedance is a day
// whose mean strictly exceeds the daily limit; the exceedance list is
// chronological because DailyMeans is.
func checkPollutant(s *types.Series, pollutant string, annualLimit, dailyLimit float64) types.PollutantCompliance {
	c := types.PollutantCompliance{
		AnnualLimit: annualLimit,
		DailyLimit:  dailyLimit,
		Exceedances: []types.Exceedance{},
	}

	x := values(s, pollutant)
	if len(x) > 0 {
		c.AnnualMean = stat.Mean(x, nil)
	}
	c.AnnualCompliant = c.AnnualMean <= annualLimit

	daily := DailyMeans(s, pollutant)
	c.TotalDays = len(daily)
	for _, day := range daily {
		if day.Value > dailyLimit {
			c.Exceedances = append(c.Exceedances, types.Exceedance{
				Date:       day.Date,
				Value:      day.Value,
				Limit:      dailyLimit,
				ExceededBy: day.Value - dailyLimit,
			})
		}
	}
	c.ExceedanceCount = len(c.Exceedances)
	if c.TotalDays > 0 {
		c.ExceedancePercent = float64(c.ExceedanceCount) / float64(c.TotalDays) * 100
	}

	return c
}
