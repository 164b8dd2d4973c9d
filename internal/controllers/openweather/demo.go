package openweather

import (
	"fmt"
	"time"

	"github.com/cmelendez/airdash/internal/analysis"
	"github.com/cmelendez/airdash/internal/simulator"
	"github.com/cmelendez/airdash/pkg/aqi"
)

// Demo mode serves a fixed set of cities with simulated data so the
// worldwide endpoints work without an API key. Readings are seeded
// from the city name, so repeated queries for the same city agree
// within a run.
var demoCities = map[string]Location{
	"london":   {Lat: 51.5074, Lon: -0.1278, Name: "London", Country: "GB"},
	"paris":    {Lat: 48.8566, Lon: 2.3522, Name: "Paris", Country: "FR"},
	"tokyo":    {Lat: 35.6762, Lon: 139.6503, Name: "Tokyo", Country: "JP"},
	"new york": {Lat: 40.7128, Lon: -74.0060, Name: "New York", Country: "US"},
	"beijing":  {Lat: 39.9042, Lon: 116.4074, Name: "Beijing", Country: "CN"},
	"delhi":    {Lat: 28.6139, Lon: 77.2090, Name: "Delhi", Country: "IN"},
	"mumbai":   {Lat: 19.0760, Lon: 72.8777, Name: "Mumbai", Country: "IN"},
	"sydney":   {Lat: -33.8688, Lon: 151.2093, Name: "Sydney", Country: "AU"},
	"berlin":   {Lat: 52.5200, Lon: 13.4050, Name: "Berlin", Country: "DE"},
	"madrid":   {Lat: 40.4168, Lon: -3.7038, Name: "Madrid", Country: "ES"},
}

// demoGeocode resolves only the fixed demo city set; anything else is
// a not-found, with no upstream call attempted.
func (c *Controller) demoGeocode(city string) (*Location, error) {
	if location, ok := demoCities[simulator.Normalize(city)]; ok {
		return &location, nil
	}
	return nil, ErrCityNotFound
}

// demoAirQuality synthesizes a current reading seeded from the
// coordinates.
func (c *Controller) demoAirQuality(lat, lon float64) *AirQuality {
	gen := simulator.NewGenerator(simulator.DefaultProfile(demoSeedName(lat, lon)))
	obs := gen.Sample(time.Now())
	return demoObservationToAirQuality(obs)
}

// demoForecast synthesizes a 24-hour forecast seeded from the
// coordinates.
func (c *Controller) demoForecast(lat, lon float64) []ForecastEntry {
	gen := simulator.NewGenerator(simulator.DefaultProfile(demoSeedName(lat, lon)))
	base := time.Now()

	entries := make([]ForecastEntry, 0, 24)
	for i := 0; i < 24; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		obs := gen.Sample(at)
		pm10 := obs.PM25 * 1.6
		if obs.PM10 != nil {
			pm10 = *obs.PM10
		}
		owmIndex := owmIndexFromPM25(obs.PM25)
		entries = append(entries, ForecastEntry{
			Timestamp: at.UTC().Format(time.RFC3339),
			AQI:       owmIndex,
			AQILevel:  aqi.LevelForOWMIndex(owmIndex),
			PM25:      obs.PM25,
			PM10:      pm10,
		})
	}
	return entries
}

func demoObservationToAirQuality(obs simulator.Observation) *AirQuality {
	pm10 := obs.PM25 * 1.6
	if obs.PM10 != nil {
		pm10 = *obs.PM10
	}
	owmIndex := owmIndexFromPM25(obs.PM25)
	return &AirQuality{
		AQI:              owmIndex,
		AQILevel:         aqi.LevelForOWMIndex(owmIndex),
		PM25:             obs.PM25,
		PM10:             pm10,
		WHOPM25Compliant: obs.PM25 <= analysis.WHOPM25Daily,
		WHOPM10Compliant: pm10 <= analysis.WHOPM10Daily,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}
}

// owmIndexFromPM25 buckets a PM2.5 concentration into the
// OpenWeatherMap 1-5 scale.
func owmIndexFromPM25(pm25 float64) int {
	switch {
	case pm25 <= 12:
		return 1
	case pm25 <= 35.4:
		return 2
	case pm25 <= 55.4:
		return 3
	case pm25 <= 150.4:
		return 4
	default:
		return 5
	}
}

func demoSeedName(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}
