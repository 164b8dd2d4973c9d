// Package openweather adapts the OpenWeatherMap Air Pollution API for
// the worldwide dashboard endpoints and falls back to simulated data
// when no API key is configured.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cmelendez/airdash/internal/analysis"
	"github.com/cmelendez/airdash/internal/database"
	"github.com/cmelendez/airdash/internal/log"
	"github.com/cmelendez/airdash/pkg/aqi"
	"github.com/cmelendez/airdash/pkg/config"
)

const defaultAPIEndpoint = "http://api.openweathermap.org/data/2.5"

// Controller holds the OpenWeatherMap adapter state
type Controller struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	apiKey      string
	apiEndpoint string
	httpClient  *http.Client
	logger      *zap.SugaredLogger
	DB          *database.Client
	DBEnabled   bool
	demoMode    bool
}

// NewController creates a new OpenWeatherMap adapter. An empty API key
// puts the adapter in demo mode, serving deterministic simulated data.
// db may be nil when no response cache is configured.
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg config.OpenWeatherData, db *database.Client, logger *zap.SugaredLogger) *Controller {
	apiKey := cfg.ResolveAPIKey()

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = defaultAPIEndpoint
	}

	c := &Controller{
		ctx:         ctx,
		wg:          wg,
		apiKey:      apiKey,
		apiEndpoint: endpoint,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		logger:      logger,
		DB:          db,
		demoMode:    apiKey == "",
	}
	if db != nil {
		c.DBEnabled = true
	}

	if c.demoMode {
		log.Warn("OPENWEATHER_API_KEY not configured - worldwide endpoints will serve simulated data")
	}

	return c
}

// DemoMode reports whether the adapter is serving simulated data.
func (c *Controller) DemoMode() bool {
	return c.demoMode
}

// StartController begins the periodic popular-cities cache refresh
// when a cache database is configured.
func (c *Controller) StartController() error {
	if !c.DBEnabled {
		log.Info("no cache database configured - OpenWeatherMap adapter will serve requests only")
		return nil
	}

	log.Info("Starting OpenWeatherMap cache refresher...")
	go c.refreshPopularCitiesPeriodically()
	return nil
}

// GeocodeCity resolves a city name (optionally with an ISO country
// code) to coordinates.
func (c *Controller) GeocodeCity(ctx context.Context, city, country string) (*Location, error) {
	if c.demoMode {
		return c.demoGeocode(city)
	}

	v := url.Values{}
	query := city
	if country != "" {
		query += "," + country
	}
	v.Set("q", query)
	v.Set("appid", c.apiKey)

	var payload owmWeatherResponse
	if err := c.getJSON(ctx, c.apiEndpoint+"/weather?"+v.Encode(), &payload); err != nil {
		return nil, err
	}

	return &Location{
		Lat:     payload.Coord.Lat,
		Lon:     payload.Coord.Lon,
		Name:    payload.Name,
		Country: payload.Sys.Country,
	}, nil
}

// CurrentAirQuality fetches and reshapes current air quality for the
// given coordinates.
func (c *Controller) CurrentAirQuality(ctx context.Context, lat, lon float64) (*AirQuality, error) {
	if c.demoMode {
		return c.demoAirQuality(lat, lon), nil
	}

	v := coordValues(lat, lon, c.apiKey)

	var payload owmPollutionResponse
	if err := c.getJSON(ctx, c.apiEndpoint+"/air_pollution?"+v.Encode(), &payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("%w: empty air pollution response", ErrUpstream)
	}

	reshaped := reshapeAirQuality(payload.List[0])
	return &reshaped, nil
}

// Forecast fetches and reshapes the hourly air quality forecast for
// the given coordinates.
func (c *Controller) Forecast(ctx context.Context, lat, lon float64) ([]ForecastEntry, error) {
	if c.demoMode {
		return c.demoForecast(lat, lon), nil
	}

	v := coordValues(lat, lon, c.apiKey)

	var payload owmPollutionResponse
	if err := c.getJSON(ctx, c.apiEndpoint+"/air_pollution/forecast?"+v.Encode(), &payload); err != nil {
		return nil, err
	}

	entries := make([]ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		entries = append(entries, ForecastEntry{
			Timestamp: time.Unix(item.Dt, 0).UTC().Format(time.RFC3339),
			AQI:       item.Main.AQI,
			AQILevel:  aqi.LevelForOWMIndex(item.Main.AQI),
			PM25:      item.Components.PM25,
			PM10:      item.Components.PM10,
			NO2:       item.Components.NO2,
			SO2:       item.Components.SO2,
		})
	}

	if c.DBEnabled {
		c.cacheForecast(lat, lon, entries)
	}

	return entries, nil
}

// SearchCity geocodes a city and returns its current air quality. The
// city argument may carry a country code ("London,GB").
func (c *Controller) SearchCity(ctx context.Context, city string) (*CityAirQuality, error) {
	name, country := SplitCityQuery(city)

	location, err := c.GeocodeCity(ctx, name, country)
	if err != nil {
		return nil, err
	}

	airQuality, err := c.CurrentAirQuality(ctx, location.Lat, location.Lon)
	if err != nil {
		return nil, err
	}

	result := &CityAirQuality{
		Location:   *location,
		AirQuality: *airQuality,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	if c.DBEnabled {
		c.cacheCityAirQuality(name, result)
	}

	return result, nil
}

// SplitCityQuery splits a "City,CC" query into its name and country
// parts.
func SplitCityQuery(city string) (name, country string) {
	if idx := strings.Index(city, ","); idx != -1 {
		return strings.TrimSpace(city[:idx]), strings.TrimSpace(city[idx+1:])
	}
	return strings.TrimSpace(city), ""
}

// getJSON performs one upstream GET and decodes the response body,
// mapping failures to the adapter's sentinel errors.
func (c *Controller) getJSON(ctx context.Context, requestURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debugf("upstream request failed: %v", err)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrCityNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %s", ErrUpstream, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}
	return nil
}

func coordValues(lat, lon float64, apiKey string) url.Values {
	v := url.Values{}
	v.Set("lat", fmt.Sprintf("%.6f", lat))
	v.Set("lon", fmt.Sprintf("%.6f", lon))
	v.Set("appid", apiKey)
	return v
}

func reshapeAirQuality(item owmPollutionItem) AirQuality {
	return AirQuality{
		AQI:              item.Main.AQI,
		AQILevel:         aqi.LevelForOWMIndex(item.Main.AQI),
		PM25:             item.Components.PM25,
		PM10:             item.Components.PM10,
		NO2:              item.Components.NO2,
		SO2:              item.Components.SO2,
		CO:               item.Components.CO,
		O3:               item.Components.O3,
		NH3:              item.Components.NH3,
		WHOPM25Compliant: item.Components.PM25 <= analysis.WHOPM25Daily,
		WHOPM10Compliant: item.Components.PM10 <= analysis.WHOPM10Daily,
		Timestamp:        time.Unix(item.Dt, 0).UTC().Format(time.RFC3339),
	}
}

// cacheCityAirQuality upserts the latest result for a city into the
// response cache.
func (c *Controller) cacheCityAirQuality(city string, result *CityAirQuality) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Errorf("error marshaling air quality cache payload for %s: %v", city, err)
		return
	}

	locationStr := fmt.Sprintf("%.6f,%.6f", result.Location.Lat, result.Location.Lon)
	normalized := strings.ToLower(city)

	var existing database.AirQualityCacheRecord
	err = c.DB.DB.Where("city = ?", normalized).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		record := database.AirQualityCacheRecord{
			City:     normalized,
			Location: locationStr,
		}
		record.Data.Set(payload)
		err = c.DB.DB.Create(&record).Error
	} else if err == nil {
		existing.Location = locationStr
		existing.Data.Set(payload)
		err = c.DB.DB.Save(&existing).Error
	}
	if err != nil {
		log.Errorf("error caching air quality for %s: %v", city, err)
	}
}

// cacheForecast upserts the latest forecast for a coordinate pair.
func (c *Controller) cacheForecast(lat, lon float64, entries []ForecastEntry) {
	payload, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("error marshaling forecast cache payload: %v", err)
		return
	}

	locationStr := fmt.Sprintf("%.6f,%.6f", lat, lon)

	var existing database.ForecastCacheRecord
	err = c.DB.DB.Where("location = ?", locationStr).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		record := database.ForecastCacheRecord{Location: locationStr}
		record.Data.Set(payload)
		err = c.DB.DB.Create(&record).Error
	} else if err == nil {
		existing.Data.Set(payload)
		err = c.DB.DB.Save(&existing).Error
	}
	if err != nil {
		log.Errorf("error caching forecast for %s: %v", locationStr, err)
	}
}

// refreshPopularCitiesPeriodically keeps the cache warm for the fixed
// popular-cities set.
func (c *Controller) refreshPopularCitiesPeriodically() {
	c.wg.Add(1)
	defer c.wg.Done()

	// Tickers only begin to fire after the interval has elapsed, so
	// run an initial refresh before starting the ticker.
	c.refreshPopularCities()

	refreshInterval := 15 * time.Minute
	log.Infof("Starting popular-cities cache refresher: every %v minutes", refreshInterval.Minutes())

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.refreshPopularCities()
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Controller) refreshPopularCities() {
	for _, city := range PopularCities {
		query := city.Name + "," + city.Country
		if _, err := c.SearchCity(c.ctx, query); err != nil {
			log.Errorf("error refreshing cache for %s: %v", city.Name, err)
		}
	}
}
