package engine

import "time"

const fullDayMinutes = 24 * 60

// BusinessMinutes sums the scheduled business-minute budget of every
// UTC calendar date touched by [start, end], both boundary dates
// inclusive. A date without a schedule entry contributes the full 1440
// minutes. Partial boundary days still contribute their whole daily
// budget, so windows that begin or end mid-business-day over-count;
// downstream consumers calibrate against exactly that behavior, so it
// is preserved rather than clipped to the window.
//
// The returned total is always usable. A non-nil error reports the
// first malformed schedule entry encountered; that date was counted as
// a full open day.
func (h *storeHours) BusinessMinutes(start, end time.Time) (float64, error) {
	var total float64
	var firstErr error

	day := utcMidnight(start)
	last := utcMidnight(end)
	for !day.After(last) {
		hours, ok := h.schedule[mondayWeekday(day.Weekday())]
		if !ok {
			total += fullDayMinutes
		} else {
			minutes, err := scheduledMinutes(hours.Start, hours.End)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				minutes = fullDayMinutes
			}
			total += minutes
		}
		day = day.AddDate(0, 0, 1)
	}
	return total, firstErr
}

// scheduledMinutes computes one day's budget from its local open and
// close times. Seconds are ignored: the budget is defined at minute
// granularity.
func scheduledMinutes(startClock, endClock string) (float64, error) {
	sh, sm, _, err := parseClock(startClock)
	if err != nil {
		return 0, err
	}
	eh, em, _, err := parseClock(endClock)
	if err != nil {
		return 0, err
	}

	start := sh*60 + sm
	end := eh*60 + em
	if start > end {
		// Overnight: open through midnight into the next morning.
		return float64(fullDayMinutes - start + end), nil
	}
	return float64(end - start), nil
}

func utcMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
