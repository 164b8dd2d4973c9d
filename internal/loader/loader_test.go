package loader

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmelendez/airdash/internal/log"
)

func TestMain(m *testing.M) {
	if err := log.Init(true); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func writeStationFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "station.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing station file: %v", err)
	}
	return path
}

func TestLoadStationFile(t *testing.T) {
	content := "Date|Time|PM2.5|PM10\n" +
		"2016-09-01|00:00:00|12.5|30.1\n" +
		"2016-09-01|01:00:00|14.2|33.8\n" +
		"2016-09-01|02:00:00|9.7|25.4\n"

	series, err := LoadStationFile(writeStationFile(t, content), "Bogota")
	if err != nil {
		t.Fatalf("LoadStationFile: %v", err)
	}

	if series.Station != "Bogota" {
		t.Errorf("station = %q, want Bogota", series.Station)
	}
	if len(series.Pollutants) != 2 || series.Pollutants[0] != "PM2.5" || series.Pollutants[1] != "PM10" {
		t.Errorf("pollutants = %v, want [PM2.5 PM10]", series.Pollutants)
	}
	if len(series.Readings) != 3 {
		t.Fatalf("got %d readings, want 3", len(series.Readings))
	}

	want := time.Date(2016, 9, 1, 1, 0, 0, 0, time.UTC)
	if !series.Readings[1].Timestamp.Equal(want) {
		t.Errorf("reading[1] timestamp = %v, want %v", series.Readings[1].Timestamp, want)
	}
	if got := series.Readings[1].Value("PM2.5"); got != 14.2 {
		t.Errorf("reading[1] PM2.5 = %v, want 14.2", got)
	}
	if got := series.Readings[2].Value("PM10"); got != 25.4 {
		t.Errorf("reading[2] PM10 = %v, want 25.4", got)
	}
}

func TestLoadStationFileSkipsMalformedRows(t *testing.T) {
	content := "Date|Time|PM2.5\n" +
		"2016-09-01|00:00:00|12.5\n" +
		"garbage row without pipes\n" +
		"2016-09-01|01:00:00\n" + // too few fields
		"not-a-date|01:00:00|5.0\n" +
		"2016-09-01|02:00:00|8.8\n"

	series, err := LoadStationFile(writeStationFile(t, content), "NYC")
	if err != nil {
		t.Fatalf("LoadStationFile: %v", err)
	}
	if len(series.Readings) != 2 {
		t.Fatalf("got %d readings, want 2 (malformed rows skipped)", len(series.Readings))
	}
}

func TestLoadStationFileSkipsDuplicateAndBackwardTimestamps(t *testing.T) {
	content := "Date|Time|PM2.5\n" +
		"2016-09-01|00:00:00|1.0\n" +
		"2016-09-01|00:00:00|2.0\n" + // duplicate
		"2016-08-31|23:00:00|3.0\n" + // out of order
		"2016-09-01|01:00:00|4.0\n"

	series, err := LoadStationFile(writeStationFile(t, content), "NYC")
	if err != nil {
		t.Fatalf("LoadStationFile: %v", err)
	}
	if len(series.Readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(series.Readings))
	}
	for i := 1; i < len(series.Readings); i++ {
		if !series.Readings[i].Timestamp.After(series.Readings[i-1].Timestamp) {
			t.Errorf("timestamps not strictly increasing at index %d", i)
		}
	}
}

func TestLoadStationFileMissingValuesAreNaN(t *testing.T) {
	content := "Date|Time|PM2.5|PM10\n" +
		"2016-09-01|00:00:00|12.5|\n" +
		"2016-09-01|01:00:00|x|30.0\n"

	series, err := LoadStationFile(writeStationFile(t, content), "Bogota")
	if err != nil {
		t.Fatalf("LoadStationFile: %v", err)
	}
	if len(series.Readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(series.Readings))
	}
	if !math.IsNaN(series.Readings[0].Value("PM10")) {
		t.Errorf("blank cell should load as NaN")
	}
	if !math.IsNaN(series.Readings[1].Value("PM2.5")) {
		t.Errorf("unparseable cell should load as NaN")
	}
	if got := series.Readings[1].Value("PM10"); got != 30.0 {
		t.Errorf("PM10 = %v, want 30.0", got)
	}
}

func TestLoadStationFileBadHeader(t *testing.T) {
	content := "Timestamp|PM2.5\n2016-09-01|12.5\n"
	if _, err := LoadStationFile(writeStationFile(t, content), "NYC"); err == nil {
		t.Fatal("expected error for unexpected header")
	}
}

func TestLoadStationFileMissingFile(t *testing.T) {
	if _, err := LoadStationFile(filepath.Join(t.TempDir(), "nope.txt"), "NYC"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
