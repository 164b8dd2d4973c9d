package openweather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/cmelendez/airdash/internal/log"
	"github.com/cmelendez/airdash/pkg/config"
)

func TestMain(m *testing.M) {
	if err := log.Init(true); err != nil {
		panic(err)
	}
	// An ambient API key would disable demo mode.
	os.Unsetenv("OPENWEATHER_API_KEY")
	os.Exit(m.Run())
}

func newTestController(t *testing.T, upstream *httptest.Server, apiKey string) *Controller {
	t.Helper()
	var wg sync.WaitGroup
	cfg := config.OpenWeatherData{APIKey: apiKey}
	if upstream != nil {
		cfg.APIEndpoint = upstream.URL
	}
	return NewController(context.Background(), &wg, cfg, nil, log.GetSugaredLogger())
}

func TestGeocodeCityLive(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "London,GB" {
			t.Errorf("q = %q, want London,GB", got)
		}
		w.Write([]byte(`{"coord":{"lat":51.5,"lon":-0.12},"name":"London","sys":{"country":"GB"}}`))
	}))
	defer upstream.Close()

	c := newTestController(t, upstream, "test-key")
	location, err := c.GeocodeCity(context.Background(), "London", "GB")
	if err != nil {
		t.Fatalf("GeocodeCity: %v", err)
	}
	if location.Name != "London" || location.Country != "GB" {
		t.Errorf("location = %+v", location)
	}
	if location.Lat != 51.5 || location.Lon != -0.12 {
		t.Errorf("coordinates = %v,%v", location.Lat, location.Lon)
	}
}

func TestGeocodeCityNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer upstream.Close()

	c := newTestController(t, upstream, "test-key")
	_, err := c.GeocodeCity(context.Background(), "Atlantis", "")
	if !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("err = %v, want ErrCityNotFound", err)
	}
}

func TestUpstreamFailureIsTyped(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"coord":`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(tt.handler)
			defer upstream.Close()

			c := newTestController(t, upstream, "test-key")
			_, err := c.GeocodeCity(context.Background(), "London", "")
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("err = %v, want ErrUpstream", err)
			}
			if errors.Is(err, ErrCityNotFound) {
				t.Fatal("upstream error must stay distinct from not-found")
			}
		})
	}
}

func TestCurrentAirQualityLive(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/air_pollution" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"list":[{"dt":1700000000,"main":{"aqi":2},` +
			`"components":{"co":200,"no2":10,"o3":60,"so2":5,"pm2_5":8.5,"pm10":20,"nh3":1}}]}`))
	}))
	defer upstream.Close()

	c := newTestController(t, upstream, "test-key")
	got, err := c.CurrentAirQuality(context.Background(), 51.5, -0.12)
	if err != nil {
		t.Fatalf("CurrentAirQuality: %v", err)
	}
	if got.AQI != 2 || got.AQILevel.Level != "Fair" {
		t.Errorf("AQI = %d (%s), want 2 (Fair)", got.AQI, got.AQILevel.Level)
	}
	if got.PM25 != 8.5 || got.PM10 != 20 {
		t.Errorf("PM = %v/%v, want 8.5/20", got.PM25, got.PM10)
	}
	if !got.WHOPM25Compliant {
		t.Error("8.5 μg/m³ PM2.5 should be within the 24h guideline")
	}
	if !got.WHOPM10Compliant {
		t.Error("20 μg/m³ PM10 should be within the 24h guideline")
	}
}

func TestCurrentAirQualityEmptyList(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list":[]}`))
	}))
	defer upstream.Close()

	c := newTestController(t, upstream, "test-key")
	if _, err := c.CurrentAirQuality(context.Background(), 0, 0); !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestForecastLive(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/air_pollution/forecast" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"list":[` +
			`{"dt":1700000000,"main":{"aqi":1},"components":{"pm2_5":4,"pm10":9}},` +
			`{"dt":1700003600,"main":{"aqi":3},"components":{"pm2_5":30,"pm10":70}}]}`))
	}))
	defer upstream.Close()

	c := newTestController(t, upstream, "test-key")
	got, err := c.Forecast(context.Background(), 51.5, -0.12)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].AQILevel.Level != "Good" || got[1].AQILevel.Level != "Moderate" {
		t.Errorf("levels = %q, %q", got[0].AQILevel.Level, got[1].AQILevel.Level)
	}
}

func TestDemoModeKnownCity(t *testing.T) {
	// A reachable upstream that must never be called.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("demo mode must not call upstream")
	}))
	defer upstream.Close()

	c := newTestController(t, upstream, "")
	if !c.DemoMode() {
		t.Fatal("empty API key should enable demo mode")
	}

	result, err := c.SearchCity(context.Background(), "London")
	if err != nil {
		t.Fatalf("SearchCity: %v", err)
	}
	if result.Location.Country != "GB" {
		t.Errorf("country = %q, want GB", result.Location.Country)
	}

	// Determinism: the same city yields the same reading within a run.
	again, err := c.SearchCity(context.Background(), "london")
	if err != nil {
		t.Fatalf("SearchCity (repeat): %v", err)
	}
	if result.AirQuality.PM25 != again.AirQuality.PM25 {
		t.Errorf("PM2.5 differs across calls: %v vs %v", result.AirQuality.PM25, again.AirQuality.PM25)
	}
}

func TestDemoModeUnknownCityNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("demo mode must not call upstream")
	}))
	defer upstream.Close()

	c := newTestController(t, upstream, "")
	if _, err := c.SearchCity(context.Background(), "Middle Of Nowhere"); !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("err = %v, want ErrCityNotFound", err)
	}
}

func TestSplitCityQuery(t *testing.T) {
	tests := []struct {
		in          string
		name, country string
	}{
		{"London", "London", ""},
		{"London,GB", "London", "GB"},
		{" Paris , FR ", "Paris", "FR"},
	}
	for _, tt := range tests {
		name, country := SplitCityQuery(tt.in)
		if name != tt.name || country != tt.country {
			t.Errorf("SplitCityQuery(%q) = %q,%q want %q,%q", tt.in, name, country, tt.name, tt.country)
		}
	}
}
