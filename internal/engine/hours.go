package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"store-monitor/internal/models"
)

// storeHours is a store's resolved schedule context: its local timezone
// and weekly business hours. A nil location marks a store whose
// timezone could not be resolved; such a store fails open and is
// treated as open at every instant.
type storeHours struct {
	loc      *time.Location
	schedule models.WeeklySchedule
}

// IsOpen reports whether the UTC instant t falls inside the store's
// scheduled business hours. The interval is closed on both ends; start
// after end means the hours wrap past midnight. A non-nil error is a
// resolution failure (malformed schedule time); the fail-open policy is
// applied by the caller, not here.
func (h *storeHours) IsOpen(t time.Time) (bool, error) {
	if h.loc == nil {
		return true, nil
	}
	local := t.In(h.loc)
	hours, ok := h.schedule[mondayWeekday(local.Weekday())]
	if !ok {
		return true, nil
	}

	start, err := clockSeconds(hours.Start)
	if err != nil {
		return false, fmt.Errorf("start time %q: %w", hours.Start, err)
	}
	end, err := clockSeconds(hours.End)
	if err != nil {
		return false, fmt.Errorf("end time %q: %w", hours.End, err)
	}

	cur := local.Hour()*3600 + local.Minute()*60 + local.Second()
	if start > end {
		// Overnight hours, e.g. 22:00-06:00.
		return cur >= start || cur <= end, nil
	}
	return start <= cur && cur <= end, nil
}

// mondayWeekday converts Go's Sunday-based weekday to the dataset's
// Monday-based numbering (0=Monday .. 6=Sunday).
func mondayWeekday(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// parseClock parses a local wall-clock string in "HH:MM" or "HH:MM:SS"
// form.
func parseClock(s string) (hour, minute, second int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid clock format, expected HH:MM or HH:MM:SS: %q", s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, 0, fmt.Errorf("invalid hour: %q", parts[0])
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, 0, fmt.Errorf("invalid minute: %q", parts[1])
	}
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return 0, 0, 0, fmt.Errorf("invalid second: %q", parts[2])
		}
	}
	return hour, minute, second, nil
}

func clockSeconds(s string) (int, error) {
	h, m, sec, err := parseClock(s)
	if err != nil {
		return 0, err
	}
	return h*3600 + m*60 + sec, nil
}
