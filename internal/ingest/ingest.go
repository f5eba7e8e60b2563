// Package ingest loads the CSV source datasets into the database
// snapshot and derives the reference instant every report is anchored
// to.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"store-monitor/internal/database"
	"store-monitor/internal/models"
)

// timestampLayouts covers the forms seen in the polling dataset.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999 UTC",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// Importer loads the three source datasets. Malformed rows are skipped
// with a warning; parsing tolerance lives here, never in the engine.
type Importer struct {
	db  *database.DB
	log zerolog.Logger
}

// Summary describes one completed import.
type Summary struct {
	Samples          int
	HoursRows        int
	TimezoneRows     int
	SkippedRows      int
	ReferenceInstant time.Time
}

func New(db *database.DB, log zerolog.Logger) *Importer {
	return &Importer{
		db:  db,
		log: log.With().Str("component", "ingest").Logger(),
	}
}

// Import replaces the dataset snapshot with the contents of the three
// CSV files and returns the import summary, including the maximum
// observed timestamp. Files ending in .gz are decompressed on the fly.
func (im *Importer) Import(ctx context.Context, statusPath, hoursPath, timezonesPath string) (*Summary, error) {
	sum := &Summary{}

	samples, err := im.loadSamples(statusPath, sum)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", statusPath, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no usable status samples in %s", statusPath)
	}

	hours, err := im.loadHours(hoursPath, sum)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", hoursPath, err)
	}

	timezones, err := im.loadTimezones(timezonesPath, sum)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", timezonesPath, err)
	}

	if err := im.db.ReplaceDataset(ctx, samples, hours, timezones); err != nil {
		return nil, fmt.Errorf("replace dataset: %w", err)
	}

	sum.Samples = len(samples)
	sum.HoursRows = len(hours)
	sum.TimezoneRows = len(timezones)
	for _, s := range samples {
		if s.Timestamp.After(sum.ReferenceInstant) {
			sum.ReferenceInstant = s.Timestamp
		}
	}

	im.log.Info().
		Int("samples", sum.Samples).
		Int("hours_rows", sum.HoursRows).
		Int("timezone_rows", sum.TimezoneRows).
		Int("skipped", sum.SkippedRows).
		Time("reference_instant", sum.ReferenceInstant).
		Msg("dataset imported")
	return sum, nil
}

func (im *Importer) loadSamples(path string, sum *Summary) ([]models.StatusSample, error) {
	var samples []models.StatusSample
	err := im.readCSV(path, []string{"store_id", "timestamp_utc", "status"}, func(line int, get func(string) string) {
		ts, err := parseTimestamp(get("timestamp_utc"))
		if err != nil {
			im.warnRow(path, line, err)
			sum.SkippedRows++
			return
		}
		status := models.Status(strings.TrimSpace(get("status")))
		if status != models.StatusActive && status != models.StatusInactive {
			im.warnRow(path, line, fmt.Errorf("unknown status %q", get("status")))
			sum.SkippedRows++
			return
		}
		samples = append(samples, models.StatusSample{
			StoreID:   strings.TrimSpace(get("store_id")),
			Timestamp: ts,
			Status:    status,
		})
	})
	return samples, err
}

func (im *Importer) loadHours(path string, sum *Summary) ([]models.HoursRow, error) {
	var hours []models.HoursRow
	err := im.readCSV(path, []string{"store_id", "dayOfWeek", "start_time_local", "end_time_local"}, func(line int, get func(string) string) {
		day, err := strconv.Atoi(strings.TrimSpace(get("dayOfWeek")))
		if err != nil || day < 0 || day > 6 {
			im.warnRow(path, line, fmt.Errorf("invalid dayOfWeek %q", get("dayOfWeek")))
			sum.SkippedRows++
			return
		}
		hours = append(hours, models.HoursRow{
			StoreID:   strings.TrimSpace(get("store_id")),
			DayOfWeek: day,
			Hours: models.DayHours{
				Start: strings.TrimSpace(get("start_time_local")),
				End:   strings.TrimSpace(get("end_time_local")),
			},
		})
	})
	return hours, err
}

func (im *Importer) loadTimezones(path string, sum *Summary) ([]models.TimezoneRow, error) {
	var timezones []models.TimezoneRow
	err := im.readCSV(path, []string{"store_id", "timezone_str"}, func(line int, get func(string) string) {
		tz := strings.TrimSpace(get("timezone_str"))
		if tz == "" {
			sum.SkippedRows++
			return
		}
		timezones = append(timezones, models.TimezoneRow{
			StoreID:  strings.TrimSpace(get("store_id")),
			Timezone: tz,
		})
	})
	return timezones, err
}

// readCSV streams a CSV file, mapping columns by header name so the
// datasets may order their columns freely. The row callback receives a
// getter keyed by column name.
func (im *Importer) readCSV(path string, required []string, row func(line int, get func(string) string)) error {
	r, closer, err := openMaybeGzip(path)
	if err != nil {
		return err
	}
	defer closer()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return fmt.Errorf("missing column %q", name)
		}
	}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			im.warnRow(path, line, err)
			continue
		}
		get := func(name string) string {
			i := index[name]
			if i >= len(record) {
				return ""
			}
			return record[i]
		}
		row(line, get)
	}
}

func (im *Importer) warnRow(path string, line int, err error) {
	im.log.Warn().Str("file", path).Int("line", line).Err(err).Msg("skipping malformed row")
}

// openMaybeGzip opens path, transparently decompressing .gz files.
func openMaybeGzip(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, func() { f.Close() }, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("gzip open: %w", err)
	}
	return gz, func() { gz.Close(); f.Close() }, nil
}

// parseTimestamp accepts the timestamp forms present in the polling
// dataset and normalizes to UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
