package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-monitor/internal/models"
)

func TestBusinessMinutes_SingleDay(t *testing.T) {
	h := &storeHours{
		loc: time.UTC,
		schedule: models.WeeklySchedule{
			0: {Start: "09:00", End: "17:00"},
		},
	}

	got, err := h.BusinessMinutes(monday(9, 0), monday(17, 0))
	require.NoError(t, err)
	assert.Equal(t, 480.0, got)
}

func TestBusinessMinutes_MissingEntryCountsFullDay(t *testing.T) {
	h := &storeHours{loc: time.UTC, schedule: models.WeeklySchedule{}}

	got, err := h.BusinessMinutes(monday(12, 0), monday(13, 0))
	require.NoError(t, err)
	assert.Equal(t, 1440.0, got)
}

func TestBusinessMinutes_OvernightEntry(t *testing.T) {
	h := &storeHours{
		loc: time.UTC,
		schedule: models.WeeklySchedule{
			0: {Start: "22:00", End: "06:00"},
		},
	}

	// 1440 - 22*60 + 6*60 = 480.
	got, err := h.BusinessMinutes(monday(0, 0), monday(23, 0))
	require.NoError(t, err)
	assert.Equal(t, 480.0, got)
}

func TestBusinessMinutes_BoundaryDaysCountInFull(t *testing.T) {
	h := &storeHours{
		loc: time.UTC,
		schedule: models.WeeklySchedule{
			0: {Start: "09:00", End: "17:00"}, // Monday
			1: {Start: "09:00", End: "17:00"}, // Tuesday
		},
	}

	// Window runs from mid-Monday to early Tuesday; both dates still
	// contribute their whole 480-minute budget.
	start := monday(16, 0)
	end := monday(0, 0).AddDate(0, 0, 1).Add(1 * time.Hour)
	got, err := h.BusinessMinutes(start, end)
	require.NoError(t, err)
	assert.Equal(t, 960.0, got)
}

func TestBusinessMinutes_WeekWindow(t *testing.T) {
	h := &storeHours{
		loc: time.UTC,
		schedule: models.WeeklySchedule{
			0: {Start: "09:00", End: "17:00"},
		},
	}

	// Monday 17:00 back one week: 8 calendar dates touched, two of
	// them Mondays at 480 each, the rest full days.
	end := monday(17, 0)
	start := end.Add(-7 * 24 * time.Hour)
	got, err := h.BusinessMinutes(start, end)
	require.NoError(t, err)
	assert.Equal(t, 2*480.0+6*1440.0, got)
}

func TestBusinessMinutes_MalformedEntryFailsOpen(t *testing.T) {
	h := &storeHours{
		loc: time.UTC,
		schedule: models.WeeklySchedule{
			0: {Start: "junk", End: "17:00"},
		},
	}

	got, err := h.BusinessMinutes(monday(9, 0), monday(17, 0))
	assert.Error(t, err)
	assert.Equal(t, 1440.0, got, "malformed day counts as fully open")
}

func TestScheduledMinutes_IgnoresSeconds(t *testing.T) {
	got, err := scheduledMinutes("09:00:30", "17:00:45")
	require.NoError(t, err)
	assert.Equal(t, 480.0, got)
}
