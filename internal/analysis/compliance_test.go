package analysis

import (
	"testing"
	"time"

	"github.com/cmelendez/airdash/internal/types"
)

// dailySeries builds a series with one constant-valued day of hourly
// readings per entry, so each daily mean equals the entry itself.
func dailySeries(station string, pollutant string, dayMeans []float64) *types.Series {
	s := &types.Series{Station: station, Pollutants: []string{pollutant}}
	for day, mean := range dayMeans {
		for hour := 0; hour < 24; hour++ {
			s.Readings = append(s.Readings, types.Reading{
				Timestamp: time.Date(2016, 9, 1+day, hour, 0, 0, 0, time.UTC),
				Values:    map[string]float64{pollutant: mean},
			})
		}
	}
	return s
}

func TestCheckComplianceExceedances(t *testing.T) {
	// Daily means [10, 12, 20, 8] against the 15 μg/m³ 24h limit:
	// one exceedance (20) out of four days.
	s := dailySeries("Bogota", types.PollutantPM25, []float64{10, 12, 20, 8})

	report := CheckCompliance(s)
	pm25 := report.PM25

	if pm25.ExceedanceCount != 1 {
		t.Fatalf("exceedance count = %d, want 1", pm25.ExceedanceCount)
	}
	if !almostEqual(pm25.Exceedances[0].Value, 20, 1e-9) {
		t.Errorf("exceedance value = %v, want 20", pm25.Exceedances[0].Value)
	}
	if pm25.Exceedances[0].Date != "2016-09-03" {
		t.Errorf("exceedance date = %q, want 2016-09-03", pm25.Exceedances[0].Date)
	}
	if !almostEqual(pm25.Exceedances[0].ExceededBy, 5, 1e-9) {
		t.Errorf("exceeded by = %v, want 5", pm25.Exceedances[0].ExceededBy)
	}
	if !almostEqual(pm25.ExceedancePercent, 25.0, 1e-9) {
		t.Errorf("exceedance percent = %v, want 25.0", pm25.ExceedancePercent)
	}
	if pm25.TotalDays != 4 {
		t.Errorf("total days = %d, want 4", pm25.TotalDays)
	}
	// Annual mean 12.5 exceeds the 5 μg/m³ annual limit.
	if pm25.AnnualCompliant {
		t.Error("annual mean 12.5 should not be compliant with limit 5")
	}
	if !almostEqual(pm25.AnnualMean, 12.5, 1e-9) {
		t.Errorf("annual mean = %v, want 12.5", pm25.AnnualMean)
	}
}

func TestCheckComplianceAllBelowLimit(t *testing.T) {
	s := dailySeries("NYC", types.PollutantPM25, []float64{3, 4, 2, 4.5})

	report := CheckCompliance(s)
	pm25 := report.PM25

	if pm25.ExceedanceCount != 0 {
		t.Errorf("exceedance count = %d, want 0", pm25.ExceedanceCount)
	}
	if len(pm25.Exceedances) != 0 {
		t.Errorf("exceedances = %v, want empty", pm25.Exceedances)
	}
	if !pm25.AnnualCompliant {
		t.Error("annual mean 3.375 should be compliant with limit 5")
	}
	if report.PM10 != nil {
		t.Error("PM10 block present for a PM2.5-only station")
	}
}

func TestCheckComplianceLimitBoundaryIsNotExceedance(t *testing.T) {
	// A daily mean exactly at the limit does not count: exceedance is
	// strictly greater than.
	s := dailySeries("NYC", types.PollutantPM25, []float64{WHOPM25Daily})

	report := CheckCompliance(s)
	if report.PM25.ExceedanceCount != 0 {
		t.Errorf("daily mean at the limit counted as exceedance")
	}
}

func TestCheckComplianceIncludesPM10(t *testing.T) {
	s := &types.Series{
		Station:    "Bogota",
		Pollutants: []string{types.PollutantPM25, types.PollutantPM10},
	}
	for hour := 0; hour < 48; hour++ {
		s.Readings = append(s.Readings, types.Reading{
			Timestamp: time.Date(2016, 9, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(hour) * time.Hour),
			Values: map[string]float64{
				types.PollutantPM25: 10,
				types.PollutantPM10: 50,
			},
		})
	}

	report := CheckCompliance(s)
	if report.PM10 == nil {
		t.Fatal("PM10 block missing for a station that reports PM10")
	}
	// Both days at 50 μg/m³ exceed the 45 μg/m³ 24h limit.
	if report.PM10.ExceedanceCount != 2 {
		t.Errorf("PM10 exceedance count = %d, want 2", report.PM10.ExceedanceCount)
	}
	if report.PM10.AnnualCompliant {
		t.Error("PM10 annual mean 50 should not be compliant with limit 15")
	}
	if report.PM10.DailyLimit != WHOPM10Daily {
		t.Errorf("PM10 daily limit = %v, want %v", report.PM10.DailyLimit, WHOPM10Daily)
	}
}
