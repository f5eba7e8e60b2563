package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"store-monitor/internal/models"
)

func sample(at time.Time, status models.Status) models.StatusSample {
	return models.StatusSample{StoreID: "s1", Timestamp: at, Status: status}
}

func TestUptimeMinutes_ForwardFill(t *testing.T) {
	t0 := monday(9, 0)
	t1 := monday(12, 0)
	t2 := monday(16, 0)
	end := monday(17, 0)

	samples := []models.StatusSample{
		sample(t0, models.StatusActive),
		sample(t1, models.StatusInactive),
		sample(t2, models.StatusActive),
	}

	// An active sample is credited until the next observation, the last
	// one until the window end, inactive spans contribute nothing.
	want := t1.Sub(t0).Minutes() + end.Sub(t2).Minutes()
	assert.Equal(t, want, UptimeMinutes(samples, end))
}

func TestUptimeMinutes_NoCreditBeforeFirstSample(t *testing.T) {
	samples := []models.StatusSample{sample(monday(16, 30), models.StatusActive)}
	assert.Equal(t, 30.0, UptimeMinutes(samples, monday(17, 0)))
}

func TestUptimeMinutes_AllInactive(t *testing.T) {
	samples := []models.StatusSample{
		sample(monday(10, 0), models.StatusInactive),
		sample(monday(11, 0), models.StatusInactive),
	}
	assert.Equal(t, 0.0, UptimeMinutes(samples, monday(17, 0)))
}

func TestUptimeMinutes_Empty(t *testing.T) {
	assert.Equal(t, 0.0, UptimeMinutes(nil, monday(17, 0)))
}

func TestSamplesSince(t *testing.T) {
	samples := []models.StatusSample{
		sample(monday(9, 0), models.StatusActive),
		sample(monday(12, 0), models.StatusActive),
		sample(monday(16, 0), models.StatusInactive),
	}

	got := samplesSince(samples, monday(12, 0))
	assert.Len(t, got, 2, "cutoff itself is included")

	got = samplesSince(samples, monday(16, 1))
	assert.Empty(t, got)

	got = samplesSince(samples, monday(0, 0))
	assert.Len(t, got, 3)
}
