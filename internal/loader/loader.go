// Package loader parses pipe-delimited station data files into
// in-memory time series.
package loader

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmelendez/airdash/internal/log"
	"github.com/cmelendez/airdash/internal/types"
	"github.com/cmelendez/airdash/pkg/config"
)

// Station files carry a header row of pipe-separated column names.
// The first two columns are always Date and Time; the remainder are
// pollutant concentrations.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// LoadStationFile reads one pipe-delimited station file into a Series.
// Malformed rows, duplicate timestamps, and out-of-order rows are
// skipped with a warning rather than aborting the load.
func LoadStationFile(path, station string) (*types.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening station file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading station file %s: %w", path, err)
		}
		return nil, fmt.Errorf("station file %s is empty", path)
	}

	header := strings.Split(strings.TrimSpace(scanner.Text()), "|")
	if len(header) < 3 || header[0] != "Date" || header[1] != "Time" {
		return nil, fmt.Errorf("station file %s has unexpected header: %q", path, scanner.Text())
	}
	pollutants := header[2:]

	series := &types.Series{
		Station:    station,
		Pollutants: pollutants,
	}

	lineNum := 1
	skipped := 0
	var lastTS time.Time

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) != len(header) {
			log.Warnf("%s:%d: expected %d fields, got %d; skipping row", path, lineNum, len(header), len(fields))
			skipped++
			continue
		}

		ts, err := time.Parse(dateLayout+" "+timeLayout, fields[0]+" "+fields[1])
		if err != nil {
			log.Warnf("%s:%d: unparseable timestamp %q|%q; skipping row", path, lineNum, fields[0], fields[1])
			skipped++
			continue
		}

		// Enforce strictly increasing timestamps.
		if len(series.Readings) > 0 && !ts.After(lastTS) {
			log.Warnf("%s:%d: timestamp %v not after previous reading; skipping row", path, lineNum, ts)
			skipped++
			continue
		}

		values := make(map[string]float64, len(pollutants))
		for i, pollutant := range pollutants {
			cell := strings.TrimSpace(fields[i+2])
			if cell == "" {
				values[pollutant] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				log.Warnf("%s:%d: bad %s value %q; treating as missing", path, lineNum, pollutant, cell)
				values[pollutant] = math.NaN()
				continue
			}
			values[pollutant] = v
		}

		series.Readings = append(series.Readings, types.Reading{Timestamp: ts, Values: values})
		lastTS = ts
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading station file %s: %w", path, err)
	}

	if skipped > 0 {
		log.Warnf("%s: skipped %d malformed rows", path, skipped)
	}
	log.Infof("loaded %d readings for station %s from %s", len(series.Readings), station, path)

	return series, nil
}

// LoadAll loads series for every configured station, keyed by station
// name.
func LoadAll(stations []config.StationData) (map[string]*types.Series, error) {
	loaded := make(map[string]*types.Series, len(stations))
	for _, station := range stations {
		series, err := LoadStationFile(station.File, station.Name)
		if err != nil {
			return nil, fmt.Errorf("error loading station %s: %w", station.Name, err)
		}
		loaded[station.Name] = series
	}
	return loaded, nil
}
