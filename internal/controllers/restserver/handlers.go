package restserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/cmelendez/airdash/internal/analysis"
	"github.com/cmelendez/airdash/internal/controllers/openweather"
	"github.com/cmelendez/airdash/internal/log"
	"github.com/cmelendez/airdash/internal/simulator"
	"github.com/cmelendez/airdash/internal/types"
	"github.com/cmelendez/airdash/pkg/responseformat"
)

// timeSeriesStride thins full-resolution hourly readings for plotting.
const timeSeriesStride = 6

// Handlers contains the HTTP request handlers
type Handlers struct {
	ctrl      *Controller
	formatter *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		ctrl:      ctrl,
		formatter: responseformat.NewFormatter(),
	}
}

// resolvePollutant maps a URL path segment to a pollutant column name.
func resolvePollutant(segment string) (string, error) {
	switch strings.ToLower(segment) {
	case "pm25", "pm2.5", "pm2_5":
		return types.PollutantPM25, nil
	case "pm10":
		return types.PollutantPM10, nil
	default:
		return "", fmt.Errorf("unknown pollutant %q", segment)
	}
}

// stationAndPollutant resolves the {city} and {pollutant} path segments,
// writing an error response and returning false when either is invalid.
func (h *Handlers) stationAndPollutant(w http.ResponseWriter, req *http.Request) (*types.Series, string, bool) {
	vars := mux.Vars(req)

	series, ok := h.ctrl.seriesFor(vars["city"])
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, errKindCityNotFound,
			fmt.Sprintf("no station data for %q", vars["city"]))
		return nil, "", false
	}

	pollutant, err := resolvePollutant(vars["pollutant"])
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, errKindBadRequest, err.Error())
		return nil, "", false
	}
	if err := analysis.ValidatePollutant(series, pollutant); err != nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, errKindCityNotFound, err.Error())
		return nil, "", false
	}

	return series, pollutant, true
}

// GetStats returns descriptive statistics for one station.
func (h *Handlers) GetStats(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	series, ok := h.ctrl.seriesFor(vars["city"])
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, errKindCityNotFound,
			fmt.Sprintf("no station data for %q", vars["city"]))
		return
	}

	resp := StatsResponse{
		City: series.Station,
		PM25: analysis.Stats(series, types.PollutantPM25),
	}
	if series.HasPollutant(types.PollutantPM10) {
		pm10 := analysis.Stats(series, types.PollutantPM10)
		resp.PM10 = &pm10
	}

	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing stats response: %v", err)
	}
}

// GetTimeSeries returns thinned readings for plotting.
func (h *Handlers) GetTimeSeries(w http.ResponseWriter, req *http.Request) {
	series, pollutant, ok := h.stationAndPollutant(w, req)
	if !ok {
		return
	}

	resp := TimeSeriesResponse{
		City:      series.Station,
		Pollutant: pollutant,
		Points:    analysis.TimeSeries(series, pollutant, timeSeriesStride),
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing timeseries response: %v", err)
	}
}

// GetDaily returns per-day mean concentrations.
func (h *Handlers) GetDaily(w http.ResponseWriter, req *http.Request) {
	series, pollutant, ok := h.stationAndPollutant(w, req)
	if !ok {
		return
	}

	resp := DailyResponse{
		City:      series.Station,
		Pollutant: pollutant,
		Points:    analysis.DailyMeans(series, pollutant),
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing daily response: %v", err)
	}
}

// GetHourly returns the hour-of-day pattern.
func (h *Handlers) GetHourly(w http.ResponseWriter, req *http.Request) {
	series, pollutant, ok := h.stationAndPollutant(w, req)
	if !ok {
		return
	}

	resp := HourlyResponse{
		City:      series.Station,
		Pollutant: pollutant,
		Pattern:   analysis.HourlyPattern(series, pollutant),
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing hourly response: %v", err)
	}
}

// GetMonthly returns the calendar-month pattern.
func (h *Handlers) GetMonthly(w http.ResponseWriter, req *http.Request) {
	series, pollutant, ok := h.stationAndPollutant(w, req)
	if !ok {
		return
	}

	resp := MonthlyResponse{
		City:      series.Station,
		Pollutant: pollutant,
		Pattern:   analysis.MonthlyPattern(series, pollutant),
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing monthly response: %v", err)
	}
}

// GetComparison aligns two stations on their common timestamps. The a
// and b query parameters default to the first two configured stations.
func (h *Handlers) GetComparison(w http.ResponseWriter, req *http.Request) {
	first := req.URL.Query().Get("a")
	second := req.URL.Query().Get("b")
	if first == "" && second == "" && len(h.ctrl.StationKeys) >= 2 {
		first = h.ctrl.StationKeys[0]
		second = h.ctrl.StationKeys[1]
	}

	sa, ok := h.ctrl.seriesFor(first)
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, errKindCityNotFound,
			fmt.Sprintf("no station data for %q", first))
		return
	}
	sb, ok := h.ctrl.seriesFor(second)
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, errKindCityNotFound,
			fmt.Sprintf("no station data for %q", second))
		return
	}

	result := analysis.Compare(sa, sb, types.PollutantPM25)
	result.Points = thinPoints(result.Points, timeSeriesStride)

	resp := ComparisonResponse{
		First:            sa.Station,
		Second:           sb.Station,
		ComparisonResult: result,
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing comparison response: %v", err)
	}
}

// thinPoints keeps every stride-th comparison point for plotting.
func thinPoints(points []types.ComparisonPoint, stride int) []types.ComparisonPoint {
	if stride < 2 || len(points) == 0 {
		return points
	}
	out := make([]types.ComparisonPoint, 0, len(points)/stride+1)
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	return out
}

// GetCompliance evaluates one station against the WHO 2021 guidelines.
func (h *Handlers) GetCompliance(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	series, ok := h.ctrl.seriesFor(vars["city"])
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, errKindCityNotFound,
			fmt.Sprintf("no station data for %q", vars["city"]))
		return
	}

	report := analysis.CheckCompliance(series)
	if err := h.formatter.WriteResponse(w, req, report, nil); err != nil {
		log.Errorf("error writing compliance response: %v", err)
	}
}

// GetSummary returns statistics and compliance for every station.
func (h *Handlers) GetSummary(w http.ResponseWriter, req *http.Request) {
	resp := SummaryResponse{Stations: make([]SummaryEntry, 0, len(h.ctrl.StationKeys))}
	for _, name := range h.ctrl.StationKeys {
		series, ok := h.ctrl.seriesFor(name)
		if !ok {
			continue
		}
		entry := SummaryEntry{
			Station:    series.Station,
			PM25:       analysis.Stats(series, types.PollutantPM25),
			Compliance: analysis.CheckCompliance(series),
		}
		if series.HasPollutant(types.PollutantPM10) {
			pm10 := analysis.Stats(series, types.PollutantPM10)
			entry.PM10 = &pm10
		}
		resp.Stations = append(resp.Stations, entry)
	}

	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing summary response: %v", err)
	}
}

// GetRealtime returns a single simulated reading for a city. Home
// stations use profiles derived from their historical data; any other
// city gets a profile derived from its name hash.
func (h *Handlers) GetRealtime(w http.ResponseWriter, req *http.Request) {
	city := mux.Vars(req)["city"]

	profile, ok := h.ctrl.profileFor(city)
	if !ok {
		profile = simulator.DefaultProfile(city)
	}

	obs := simulator.NewGenerator(profile).Sample(time.Now())
	if err := h.formatter.WriteResponse(w, req, obs, nil); err != nil {
		log.Errorf("error writing realtime response: %v", err)
	}
}

// SearchCityWorldwide geocodes a city ("Name" or "Name,CC") and returns
// its current air quality.
func (h *Handlers) SearchCityWorldwide(w http.ResponseWriter, req *http.Request) {
	city := mux.Vars(req)["city"]

	result, err := h.ctrl.OpenWeather.SearchCity(req.Context(), city)
	if err != nil {
		h.writeAdapterError(w, req, city, err)
		return
	}

	if err := h.formatter.WriteResponse(w, req, result, nil); err != nil {
		log.Errorf("error writing worldwide search response: %v", err)
	}
}

// GetAirQualityByCoordinates returns the current air quality at a
// lat/lon point.
func (h *Handlers) GetAirQualityByCoordinates(w http.ResponseWriter, req *http.Request) {
	lat, latErr := strconv.ParseFloat(req.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(req.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, errKindBadRequest,
			"lat and lon query parameters are required and must be numeric")
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		h.formatter.WriteError(w, req, http.StatusBadRequest, errKindBadRequest,
			"lat must be in [-90,90] and lon in [-180,180]")
		return
	}

	aq, err := h.ctrl.OpenWeather.CurrentAirQuality(req.Context(), lat, lon)
	if err != nil {
		h.writeAdapterError(w, req, fmt.Sprintf("%v,%v", lat, lon), err)
		return
	}

	resp := CoordinatesResponse{Lat: lat, Lon: lon, AirQuality: *aq}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing coordinates response: %v", err)
	}
}

// GetForecastForCity geocodes a city and returns its air quality
// forecast.
func (h *Handlers) GetForecastForCity(w http.ResponseWriter, req *http.Request) {
	city := mux.Vars(req)["city"]

	name, country := openweather.SplitCityQuery(city)
	loc, err := h.ctrl.OpenWeather.GeocodeCity(req.Context(), name, country)
	if err != nil {
		h.writeAdapterError(w, req, city, err)
		return
	}

	forecast, err := h.ctrl.OpenWeather.Forecast(req.Context(), loc.Lat, loc.Lon)
	if err != nil {
		h.writeAdapterError(w, req, city, err)
		return
	}

	resp := ForecastResponse{Location: *loc, Forecast: forecast}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing forecast response: %v", err)
	}
}

// GetPopularCities returns the current air quality for the fixed
// worldwide display set. Per-city lookup failures are reported inline
// rather than failing the whole response.
func (h *Handlers) GetPopularCities(w http.ResponseWriter, req *http.Request) {
	resp := PopularCitiesResponse{
		Cities: make([]PopularCityEntry, 0, len(openweather.PopularCities)),
		Demo:   h.ctrl.OpenWeather.DemoMode(),
	}

	for _, pc := range openweather.PopularCities {
		entry := PopularCityEntry{City: pc.Name, Country: pc.Country}
		result, err := h.ctrl.OpenWeather.SearchCity(req.Context(), fmt.Sprintf("%s,%s", pc.Name, pc.Country))
		if err != nil {
			entry.Error = adapterErrorKind(err)
		} else {
			entry.AirQuality = &result.AirQuality
		}
		resp.Cities = append(resp.Cities, entry)
	}

	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing popular cities response: %v", err)
	}
}

// writeAdapterError maps adapter sentinel errors onto HTTP statuses.
func (h *Handlers) writeAdapterError(w http.ResponseWriter, req *http.Request, subject string, err error) {
	switch {
	case errors.Is(err, openweather.ErrCityNotFound):
		h.formatter.WriteError(w, req, http.StatusNotFound, errKindCityNotFound,
			fmt.Sprintf("city %q not found", subject))
	case errors.Is(err, openweather.ErrUpstream):
		log.Warnf("upstream air quality lookup for %q failed: %v", subject, err)
		h.formatter.WriteError(w, req, http.StatusBadGateway, errKindUpstream,
			"air quality provider is unavailable")
	default:
		log.Errorf("air quality lookup for %q failed: %v", subject, err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, errKindUpstream, "internal error")
	}
}

// adapterErrorKind maps an adapter error to its response kind string.
func adapterErrorKind(err error) string {
	if errors.Is(err, openweather.ErrCityNotFound) {
		return errKindCityNotFound
	}
	return errKindUpstream
}
