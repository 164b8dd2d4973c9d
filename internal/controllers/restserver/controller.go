// Package restserver serves the dashboard HTTP API: descriptive
// statistics, WHO compliance reports, simulated real-time streams, and
// the worldwide air quality endpoints.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/cmelendez/airdash/internal/analysis"
	"github.com/cmelendez/airdash/internal/controllers/openweather"
	"github.com/cmelendez/airdash/internal/log"
	"github.com/cmelendez/airdash/internal/simulator"
	"github.com/cmelendez/airdash/internal/types"
	"github.com/cmelendez/airdash/pkg/config"
)

const (
	defaultStreamInterval          = 5 * time.Second
	defaultWorldwideStreamInterval = 10 * time.Second
	defaultStreamBufferSize        = 16
)

// Controller represents the REST server controller
type Controller struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	httpConfig  config.HTTPData
	Server      http.Server
	Series      map[string]*types.Series // normalized name -> series
	StationKeys []string                 // display names in sorted order
	Profiles    map[string]simulator.Profile
	OpenWeather *openweather.Controller

	streamInterval          time.Duration
	worldwideStreamInterval time.Duration
	streamBufferSize        int

	logger   *zap.SugaredLogger
	handlers *Handlers
	subs     *subscriberRegistry
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, series map[string]*types.Series, ow *openweather.Controller, logger *zap.SugaredLogger) (*Controller, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	hc := cfgData.HTTP
	if hc.ListenAddr == "" {
		logger.Info("http.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		hc.ListenAddr = "0.0.0.0"
	}
	if hc.Port == 0 {
		logger.Info("http.port not provided; defaulting to 8080")
		hc.Port = 8080
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no station series loaded - at least one station must be configured")
	}

	ctrl := &Controller{
		ctx:         ctx,
		wg:          wg,
		httpConfig:  hc,
		Series:      make(map[string]*types.Series, len(series)),
		Profiles:    make(map[string]simulator.Profile, len(series)),
		OpenWeather: ow,
		logger:      logger,
		subs:        newSubscriberRegistry(),
	}

	// Key the series by normalized name so city path segments are
	// case-insensitive, and derive per-station simulation profiles
	// from the historical statistics.
	for name, s := range series {
		key := simulator.Normalize(name)
		ctrl.Series[key] = s
		ctrl.StationKeys = append(ctrl.StationKeys, name)
		ctrl.Profiles[key] = profileFromSeries(name, s)
	}
	sort.Strings(ctrl.StationKeys)

	ctrl.streamInterval = durationSetting(cfgData.Stream.IntervalSeconds, defaultStreamInterval)
	ctrl.worldwideStreamInterval = durationSetting(cfgData.Stream.WorldwideIntervalSeconds, defaultWorldwideStreamInterval)
	ctrl.streamBufferSize = cfgData.Stream.BufferSize
	if ctrl.streamBufferSize <= 0 {
		ctrl.streamBufferSize = defaultStreamBufferSize
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", hc.ListenAddr, hc.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	// Historical statistics endpoints
	router.HandleFunc("/api/stats/{city}", c.handlers.GetStats)
	router.HandleFunc("/api/timeseries/{city}/{pollutant}", c.handlers.GetTimeSeries)
	router.HandleFunc("/api/daily/{city}/{pollutant}", c.handlers.GetDaily)
	router.HandleFunc("/api/hourly/{city}/{pollutant}", c.handlers.GetHourly)
	router.HandleFunc("/api/monthly/{city}/{pollutant}", c.handlers.GetMonthly)
	router.HandleFunc("/api/compare", c.handlers.GetComparison)
	router.HandleFunc("/api/compliance/{city}", c.handlers.GetCompliance)
	router.HandleFunc("/api/summary", c.handlers.GetSummary)

	// Simulated real-time endpoints
	router.HandleFunc("/api/realtime/stream", c.handlers.StreamRealtime)
	router.HandleFunc("/api/realtime/{city}", c.handlers.GetRealtime)

	// Worldwide endpoints backed by the OpenWeatherMap adapter
	router.HandleFunc("/api/worldwide/search/{city}", c.handlers.SearchCityWorldwide)
	router.HandleFunc("/api/worldwide/coordinates", c.handlers.GetAirQualityByCoordinates)
	router.HandleFunc("/api/worldwide/forecast/{city}", c.handlers.GetForecastForCity)
	router.HandleFunc("/api/worldwide/stream", c.handlers.StreamWorldwide)
	router.HandleFunc("/api/worldwide/popular-cities", c.handlers.GetPopularCities)

	return router
}

// seriesFor resolves a city path segment to its loaded series.
func (c *Controller) seriesFor(city string) (*types.Series, bool) {
	s, ok := c.Series[simulator.Normalize(city)]
	return s, ok
}

// profileFor resolves a city path segment to its simulation profile.
func (c *Controller) profileFor(city string) (simulator.Profile, bool) {
	p, ok := c.Profiles[simulator.Normalize(city)]
	return p, ok
}

// profileFromSeries derives a simulation profile from a station's
// historical statistics, so synthetic readings stay in a plausible
// range for that city.
func profileFromSeries(name string, s *types.Series) simulator.Profile {
	stats := analysis.Stats(s, types.PollutantPM25)
	profile := simulator.Profile{
		City:     name,
		PM25Mean: stats.Mean,
		PM25Std:  stats.StdDev,
	}
	if s.HasPollutant(types.PollutantPM10) && stats.Mean > 0 {
		pm10 := analysis.Stats(s, types.PollutantPM10)
		profile.PM10Ratio = pm10.Mean / stats.Mean
	}
	return profile
}

// streamKey turns a display name into a JSON payload key
// ("New York" -> "new_york").
func streamKey(name string) string {
	return strings.ReplaceAll(simulator.Normalize(name), " ", "_")
}

func durationSetting(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
