// Package engine turns sparse store-status observations into uptime and
// downtime estimates restricted to each store's business hours, for
// three trailing windows anchored to a reference instant.
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"store-monitor/internal/models"
)

// reportWindow is one of the three fixed trailing windows. The hour
// window reports minutes, day and week report hours.
type reportWindow struct {
	name    string
	span    time.Duration
	inHours bool
}

var reportWindows = []reportWindow{
	{name: "hour", span: time.Hour, inHours: false},
	{name: "day", span: 24 * time.Hour, inHours: true},
	{name: "week", span: 7 * 24 * time.Hour, inHours: true},
}

// Engine computes report rows from read-only providers. It holds no
// mutable state; the reference instant is passed into every call so
// concurrent runs over different dataset snapshots stay independent.
type Engine struct {
	samples    models.SampleProvider
	schedules  models.ScheduleProvider
	timezones  models.TimezoneProvider
	defaultLoc *time.Location
	workers    int
	log        zerolog.Logger
}

// New creates an Engine. defaultLoc is the process-wide zone for stores
// without a timezone assignment. workers bounds per-store concurrency;
// values below one fall back to serial computation.
func New(samples models.SampleProvider, schedules models.ScheduleProvider, timezones models.TimezoneProvider, defaultLoc *time.Location, workers int, log zerolog.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		samples:    samples,
		schedules:  schedules,
		timezones:  timezones,
		defaultLoc: defaultLoc,
		workers:    workers,
		log:        log.With().Str("component", "engine").Logger(),
	}
}

// ComputeReport produces one row per store id, in input order. Stores
// are independent and computed by a worker pool. A sample-provider
// failure or context cancellation aborts the whole run; no partial
// result is returned in that case.
func (e *Engine) ComputeReport(ctx context.Context, now time.Time, storeIDs []string) ([]models.ReportRow, error) {
	rows := make([]models.ReportRow, len(storeIDs))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	jobs := make(chan int)
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				row, err := e.computeRow(ctx, now, storeIDs[idx])
				if err != nil {
					fail(fmt.Errorf("store %s: %w", storeIDs[idx], err))
					return
				}
				rows[idx] = row
			}
		}()
	}

feed:
	for i := range storeIDs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// computeRow builds the six-column result for one store. Empty-data
// conditions yield a zero row; only provider failures are returned as
// errors.
func (e *Engine) computeRow(ctx context.Context, now time.Time, storeID string) (models.ReportRow, error) {
	row := models.ReportRow{StoreID: storeID}

	samples, err := e.samples.Samples(ctx, storeID)
	if err != nil {
		return row, fmt.Errorf("load samples: %w", err)
	}
	if len(samples) == 0 {
		return row, nil
	}

	hours := e.resolveHours(ctx, storeID)

	// Keep only observations made during business hours. Unresolvable
	// hours fail open, so the sample stays in scope.
	open := make([]models.StatusSample, 0, len(samples))
	warned := false
	for _, s := range samples {
		isOpen, err := hours.IsOpen(s.Timestamp)
		if err != nil {
			if !warned {
				e.log.Warn().Str("store_id", storeID).Err(err).
					Msg("business hours unresolved, assuming open")
				warned = true
			}
			isOpen = true
		}
		if isOpen {
			open = append(open, s)
		}
	}
	if len(open) == 0 {
		return row, nil
	}

	for _, w := range reportWindows {
		windowStart := now.Add(-w.span)
		inWindow := samplesSince(open, windowStart)
		if len(inWindow) == 0 {
			continue
		}

		business, err := hours.BusinessMinutes(windowStart, now)
		if err != nil {
			e.log.Warn().Str("store_id", storeID).Err(err).
				Msg("malformed schedule entry counted as a full open day")
		}
		uptime := UptimeMinutes(inWindow, now)
		// Downtime is derived by subtraction, never measured from
		// inactive samples; it can go negative when the per-day budget
		// over-counts at window edges.
		downtime := business - uptime

		if w.inHours {
			uptime /= 60
			downtime /= 60
		}
		switch w.name {
		case "hour":
			row.UptimeLastHour, row.DowntimeLastHour = round2(uptime), round2(downtime)
		case "day":
			row.UptimeLastDay, row.DowntimeLastDay = round2(uptime), round2(downtime)
		case "week":
			row.UptimeLastWeek, row.DowntimeLastWeek = round2(uptime), round2(downtime)
		}
	}
	return row, nil
}

// resolveHours builds the store's schedule context. Resolution failures
// are recoverable: the store degrades to always open rather than
// aborting the batch.
func (e *Engine) resolveHours(ctx context.Context, storeID string) *storeHours {
	h := &storeHours{loc: e.defaultLoc}

	schedule, err := e.schedules.Schedule(ctx, storeID)
	if err != nil {
		e.log.Warn().Str("store_id", storeID).Err(err).
			Msg("schedule lookup failed, treating store as always open")
	} else {
		h.schedule = schedule
	}

	name, err := e.timezones.Timezone(ctx, storeID)
	if err != nil {
		e.log.Warn().Str("store_id", storeID).Err(err).
			Msg("timezone lookup failed, store fails open")
		h.loc = nil
		return h
	}
	if name == "" {
		return h
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		e.log.Warn().Str("store_id", storeID).Str("timezone", name).
			Msg("unknown timezone, store fails open")
		h.loc = nil
		return h
	}
	h.loc = loc
	return h
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
