package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-monitor/internal/models"
)

type fakeProviders struct {
	samples   map[string][]models.StatusSample
	schedules map[string]models.WeeklySchedule
	timezones map[string]string

	sampleErr   error
	scheduleErr error
	timezoneErr error
}

func (f *fakeProviders) Samples(_ context.Context, storeID string) ([]models.StatusSample, error) {
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	return f.samples[storeID], nil
}

func (f *fakeProviders) Schedule(_ context.Context, storeID string) (models.WeeklySchedule, error) {
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	return f.schedules[storeID], nil
}

func (f *fakeProviders) Timezone(_ context.Context, storeID string) (string, error) {
	if f.timezoneErr != nil {
		return "", f.timezoneErr
	}
	return f.timezones[storeID], nil
}

func newTestEngine(f *fakeProviders, defaultLoc *time.Location, workers int) *Engine {
	return New(f, f, f, defaultLoc, workers, zerolog.Nop())
}

func TestComputeReport_SingleStoreScenario(t *testing.T) {
	f := &fakeProviders{
		samples: map[string][]models.StatusSample{
			"s1": {
				sample(monday(9, 0), models.StatusActive),
				sample(monday(12, 0), models.StatusActive),
				sample(monday(16, 0), models.StatusInactive),
			},
		},
		schedules: map[string]models.WeeklySchedule{
			"s1": {0: {Start: "09:00", End: "17:00"}},
		},
		timezones: map[string]string{"s1": "UTC"},
	}
	e := newTestEngine(f, time.UTC, 2)

	rows, err := e.ComputeReport(context.Background(), monday(17, 0), []string{"s1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, "s1", row.StoreID)

	// Hour window 16:00-17:00 holds only the inactive sample; its daily
	// budget still counts the whole Monday.
	assert.Equal(t, 0.0, row.UptimeLastHour)
	assert.Equal(t, 480.0, row.DowntimeLastHour)

	// Day window spans Sunday 17:00 to Monday 17:00. Forward fill
	// credits 09:00-12:00 and 12:00-16:00, seven hours. Sunday has no
	// schedule entry and contributes a full open day to the budget.
	assert.Equal(t, 7.0, row.UptimeLastDay)
	assert.Equal(t, 25.0, row.DowntimeLastDay)

	// Week window touches eight calendar dates, two scheduled Mondays.
	assert.Equal(t, 7.0, row.UptimeLastWeek)
	assert.Equal(t, 153.0, row.DowntimeLastWeek)
}

func TestComputeReport_StoreWithoutSamplesYieldsZeroRow(t *testing.T) {
	f := &fakeProviders{}
	e := newTestEngine(f, time.UTC, 1)

	rows, err := e.ComputeReport(context.Background(), monday(17, 0), []string{"ghost"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ReportRow{StoreID: "ghost"}, rows[0])
}

func TestComputeReport_NoSamplesInsideWindow(t *testing.T) {
	// A store observed only last month: every window comes back empty
	// and its row stays zero rather than extrapolating stale data.
	old := monday(12, 0).AddDate(0, -1, 0)
	f := &fakeProviders{
		samples: map[string][]models.StatusSample{
			"s1": {sample(old, models.StatusActive)},
		},
	}
	e := newTestEngine(f, time.UTC, 1)

	rows, err := e.ComputeReport(context.Background(), monday(17, 0), []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportRow{StoreID: "s1"}, rows[0])
}

func TestComputeReport_NegativeDowntimePreserved(t *testing.T) {
	// 30 scheduled minutes on Monday but 50 minutes of extrapolated
	// uptime inside the hour window: the subtraction goes negative and
	// is reported as-is.
	f := &fakeProviders{
		samples: map[string][]models.StatusSample{
			"s1": {sample(monday(12, 10), models.StatusActive)},
		},
		schedules: map[string]models.WeeklySchedule{
			"s1": {0: {Start: "12:00", End: "12:30"}},
		},
		timezones: map[string]string{"s1": "UTC"},
	}
	e := newTestEngine(f, time.UTC, 1)

	rows, err := e.ComputeReport(context.Background(), monday(13, 0), []string{"s1"})
	require.NoError(t, err)
	row := rows[0]
	assert.Equal(t, 50.0, row.UptimeLastHour)
	assert.Equal(t, -20.0, row.DowntimeLastHour)
}

func TestComputeReport_SamplesOutsideBusinessHoursIgnored(t *testing.T) {
	f := &fakeProviders{
		samples: map[string][]models.StatusSample{
			"s1": {sample(monday(3, 0), models.StatusActive)},
		},
		schedules: map[string]models.WeeklySchedule{
			"s1": {0: {Start: "09:00", End: "17:00"}},
		},
		timezones: map[string]string{"s1": "UTC"},
	}
	e := newTestEngine(f, time.UTC, 1)

	rows, err := e.ComputeReport(context.Background(), monday(4, 0), []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportRow{StoreID: "s1"}, rows[0])
}

func TestComputeReport_UnknownTimezoneFailsOpen(t *testing.T) {
	f := &fakeProviders{
		samples: map[string][]models.StatusSample{
			"s1": {sample(monday(3, 0), models.StatusActive)},
		},
		schedules: map[string]models.WeeklySchedule{
			"s1": {0: {Start: "09:00", End: "17:00"}},
		},
		timezones: map[string]string{"s1": "Not/AZone"},
	}
	e := newTestEngine(f, time.UTC, 1)

	// With a resolvable zone the 03:00 sample would be filtered out.
	// The unresolvable zone makes the store always open, so it counts.
	rows, err := e.ComputeReport(context.Background(), monday(4, 0), []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, 60.0, rows[0].UptimeLastHour)
}

func TestComputeReport_DefaultZoneApplied(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	f := &fakeProviders{
		samples: map[string][]models.StatusSample{
			// 20:00 UTC is 14:00 in Chicago, inside business hours.
			"s1": {sample(monday(20, 0), models.StatusActive)},
		},
		schedules: map[string]models.WeeklySchedule{
			"s1": {0: {Start: "09:00", End: "17:00"}},
		},
		timezones: map[string]string{},
	}

	rows, err := newTestEngine(f, chicago, 1).ComputeReport(context.Background(), monday(21, 0), []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, 60.0, rows[0].UptimeLastHour, "open under the default zone")

	rows, err = newTestEngine(f, time.UTC, 1).ComputeReport(context.Background(), monday(21, 0), []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, rows[0].UptimeLastHour, "closed when evaluated in UTC")
}

func TestComputeReport_SampleProviderErrorAbortsRun(t *testing.T) {
	f := &fakeProviders{sampleErr: errors.New("disk gone")}
	e := newTestEngine(f, time.UTC, 4)

	rows, err := e.ComputeReport(context.Background(), monday(17, 0), []string{"a", "b", "c"})
	assert.Nil(t, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestComputeReport_ScheduleProviderErrorFailsOpen(t *testing.T) {
	f := &fakeProviders{
		samples: map[string][]models.StatusSample{
			"s1": {sample(monday(16, 30), models.StatusActive)},
		},
		scheduleErr: errors.New("table locked"),
		timezones:   map[string]string{"s1": "UTC"},
	}
	e := newTestEngine(f, time.UTC, 1)

	rows, err := e.ComputeReport(context.Background(), monday(17, 0), []string{"s1"})
	require.NoError(t, err, "schedule failures degrade the store, not the batch")
	assert.Equal(t, 30.0, rows[0].UptimeLastHour)
}

func TestComputeReport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeProviders{}
	e := newTestEngine(f, time.UTC, 2)

	rows, err := e.ComputeReport(ctx, monday(17, 0), []string{"a", "b"})
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeReport_ManyStoresKeepInputOrder(t *testing.T) {
	f := &fakeProviders{samples: map[string][]models.StatusSample{}}
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = string(rune('a' + i%26))
	}
	e := newTestEngine(f, time.UTC, 8)

	rows, err := e.ComputeReport(context.Background(), monday(17, 0), ids)
	require.NoError(t, err)
	require.Len(t, rows, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, rows[i].StoreID)
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.2349))
	assert.Equal(t, 1.24, round2(1.236))
	assert.Equal(t, -0.5, round2(-0.499))
	assert.Equal(t, 0.0, round2(0))
}
