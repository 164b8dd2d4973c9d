// Package simulator produces synthetic air quality readings with a
// diurnal rush-hour bias. Generators are seeded from a stable hash of
// the city name, so simulated output is deterministic per city within
// a run.
package simulator

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/cmelendez/airdash/internal/analysis"
	"github.com/cmelendez/airdash/pkg/aqi"
)

// Rush-hour windows (inclusive, hour of day) during which the
// baseline concentration is elevated. Demo heuristics, not a sourced
// emissions model.
const (
	morningRushStart = 7
	morningRushEnd   = 9
	eveningRushStart = 17
	eveningRushEnd   = 19
	rushHourFactor   = 1.3
)

var trends = []string{"rising", "falling", "stable"}

// Profile parameterizes the synthetic output for one city.
type Profile struct {
	City     string
	PM25Mean float64
	PM25Std  float64
	// PM10Ratio scales PM2.5 into a PM10 value; zero disables PM10.
	PM10Ratio float64
}

// Observation is one synthetic air quality reading.
type Observation struct {
	City          string       `json:"city"`
	Timestamp     string       `json:"timestamp"`
	PM25          float64      `json:"pm25"`
	AQICategory   aqi.Category `json:"aqi_category"`
	WHOCompliant  bool         `json:"who_compliant"`
	Alert         bool         `json:"alert"`
	Trend         string       `json:"trend"`
	PM10          *float64     `json:"pm10,omitempty"`
	PM10Compliant *bool        `json:"pm10_who_compliant,omitempty"`
	PM10Alert     *bool        `json:"pm10_alert,omitempty"`
}

// Generator emits synthetic readings for one city.
type Generator struct {
	profile Profile
	rng     *rand.Rand
}

// Normalize canonicalizes a city name for hashing and lookups.
func Normalize(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Seed derives a stable seed from the normalized city name.
func Seed(city string) uint64 {
	return xxhash.Sum64String(Normalize(city))
}

// NewGenerator creates a generator for the given profile, seeded from
// the profile's city name.
func NewGenerator(profile Profile) *Generator {
	return &Generator{
		profile: profile,
		rng:     rand.New(rand.NewSource(int64(Seed(profile.City)))),
	}
}

// DefaultProfile derives a plausible city profile from the name hash
// alone, for cities with no historical data.
func DefaultProfile(city string) Profile {
	seed := Seed(city)
	return Profile{
		City:      city,
		PM25Mean:  5 + float64(seed%40),
		PM25Std:   3 + float64(seed%10),
		PM10Ratio: 1.2 + float64(seed%80)/100,
	}
}

// Sample produces one synthetic reading for the given wall-clock time.
func (g *Generator) Sample(t time.Time) Observation {
	factor := 1.0
	hour := t.Hour()
	if (hour >= morningRushStart && hour <= morningRushEnd) ||
		(hour >= eveningRushStart && hour <= eveningRushEnd) {
		factor = rushHourFactor
	}

	pm25 := g.profile.PM25Mean*factor + g.rng.NormFloat64()*g.profile.PM25Std*0.5
	if pm25 < 0 {
		pm25 = 0
	}
	pm25 = round2(pm25)

	obs := Observation{
		City:         g.profile.City,
		Timestamp:    t.Format(time.RFC3339),
		PM25:         pm25,
		AQICategory:  aqi.CategoryFromPM25(pm25),
		WHOCompliant: pm25 <= analysis.WHOPM25Annual,
		Alert:        pm25 > analysis.WHOPM25Daily,
		Trend:        trends[g.rng.Intn(len(trends))],
	}

	if g.profile.PM10Ratio > 0 {
		pm10 := pm25*g.profile.PM10Ratio + g.rng.NormFloat64()*g.profile.PM25Std*0.25
		if pm10 < 0 {
			pm10 = 0
		}
		pm10 = round2(pm10)
		compliant := pm10 <= analysis.WHOPM10Annual
		alert := pm10 > analysis.WHOPM10Daily
		obs.PM10 = &pm10
		obs.PM10Compliant = &compliant
		obs.PM10Alert = &alert
	}

	return obs
}

// Stream emits one reading per interval on the returned channel until
// ctx is cancelled, then closes the channel. The first reading is
// emitted after one full interval, so cancelling before the first tick
// emits nothing.
func (g *Generator) Stream(ctx context.Context, interval time.Duration) <-chan Observation {
	out := make(chan Observation)

	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				select {
				case out <- g.Sample(now):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
