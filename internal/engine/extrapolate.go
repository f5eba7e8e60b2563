package engine

import (
	"sort"
	"time"

	"store-monitor/internal/models"
)

// UptimeMinutes estimates uptime from sparse observations by forward
// filling: each active sample is credited for the whole gap until the
// next sample's timestamp, the last one until windowEnd. An inactive
// sample cuts off the credit of the preceding active sample and
// contributes nothing itself. Nothing is credited before the first
// sample. Samples must be ordered by timestamp.
func UptimeMinutes(samples []models.StatusSample, windowEnd time.Time) float64 {
	var total float64
	for i, s := range samples {
		if !s.Active() {
			continue
		}
		next := windowEnd
		if i < len(samples)-1 {
			next = samples[i+1].Timestamp
		}
		total += next.Sub(s.Timestamp).Minutes()
	}
	return total
}

// samplesSince returns the tail of an ordered sample slice whose
// timestamps are at or after cutoff.
func samplesSince(samples []models.StatusSample, cutoff time.Time) []models.StatusSample {
	i := sort.Search(len(samples), func(i int) bool {
		return !samples[i].Timestamp.Before(cutoff)
	})
	return samples[i:]
}
