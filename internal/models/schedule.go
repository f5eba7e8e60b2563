package models

// DayHours is one weekday's local business-hours interval. Start and
// End are local wall-clock strings ("HH:MM" or "HH:MM:SS"). Start after
// End means the interval wraps past midnight (e.g. 22:00-06:00).
// The strings are kept unparsed so that malformed values surface as
// resolution errors at evaluation time, not at load time.
type DayHours struct {
	Start string `json:"start_time_local"`
	End   string `json:"end_time_local"`
}

// WeeklySchedule maps a weekday to its business hours. Weekdays are
// numbered 0=Monday through 6=Sunday, matching the source dataset.
// A missing weekday entry means the store is open the whole day; a nil
// or empty schedule means the store is always open.
type WeeklySchedule map[int]DayHours

// HoursRow is one row of the business-hours dataset as ingested.
type HoursRow struct {
	StoreID   string
	DayOfWeek int
	Hours     DayHours
}

// TimezoneRow is one row of the timezone dataset as ingested.
type TimezoneRow struct {
	StoreID  string
	Timezone string
}
