package models

import (
	"context"
	"time"
)

// SampleProvider supplies a store's observations ordered by timestamp.
type SampleProvider interface {
	Samples(ctx context.Context, storeID string) ([]StatusSample, error)
}

// ScheduleProvider supplies a store's weekly business hours. A nil
// schedule means the store has no configured hours.
type ScheduleProvider interface {
	Schedule(ctx context.Context, storeID string) (WeeklySchedule, error)
}

// TimezoneProvider supplies a store's IANA timezone name. An empty
// string means the store has no assignment and the default zone applies.
type TimezoneProvider interface {
	Timezone(ctx context.Context, storeID string) (string, error)
}

// Database interface defines operations for data persistence
type Database interface {
	SampleProvider
	ScheduleProvider
	TimezoneProvider

	StoreIDs(ctx context.Context) ([]string, error)
	Stores(ctx context.Context) ([]StoreInfo, error)
	LatestSampleTime(ctx context.Context) (time.Time, error)

	CreateReport(ctx context.Context, r Report) error
	GetReport(ctx context.Context, id string) (*Report, error)
	ListReports(ctx context.Context, limit int) ([]Report, error)
	FinishReport(ctx context.Context, id string, status ReportStatus, csvPath, errMsg string) (bool, error)

	Close() error
}

// ReportRunner triggers background report jobs.
type ReportRunner interface {
	Trigger(ctx context.Context) (string, error)
}
