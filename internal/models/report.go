package models

import "time"

// ReportStatus is the lifecycle state of a report job.
type ReportStatus string

const (
	ReportRunning  ReportStatus = "Running"
	ReportComplete ReportStatus = "Complete"
	ReportFailed   ReportStatus = "Failed"
)

// Report is one report generation job. The Running -> Complete/Failed
// transition happens exactly once per job.
type Report struct {
	ID        string       `json:"report_id"`
	Status    ReportStatus `json:"status"`
	CSVPath   string       `json:"-"`
	Error     string       `json:"message,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// ReportRow is the per-store result of one report run. The hour window
// is expressed in minutes, the day and week windows in hours; the unit
// asymmetry is part of the report contract and must not be normalized.
// All values are rounded to two decimals.
type ReportRow struct {
	StoreID          string  `json:"store_id"`
	UptimeLastHour   float64 `json:"uptime_last_hour"`
	UptimeLastDay    float64 `json:"uptime_last_day"`
	UptimeLastWeek   float64 `json:"uptime_last_week"`
	DowntimeLastHour float64 `json:"downtime_last_hour"`
	DowntimeLastDay  float64 `json:"downtime_last_day"`
	DowntimeLastWeek float64 `json:"downtime_last_week"`
}

// ReportColumns is the CSV header of a finished report, in output order.
var ReportColumns = []string{
	"store_id",
	"uptime_last_hour",
	"uptime_last_day",
	"uptime_last_week",
	"downtime_last_hour",
	"downtime_last_day",
	"downtime_last_week",
}

// StoreInfo summarizes one store's presence in the dataset.
type StoreInfo struct {
	StoreID     string    `json:"store_id"`
	SampleCount int       `json:"sample_count"`
	LastSeen    time.Time `json:"last_seen"`
}
