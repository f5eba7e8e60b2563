package models

import "time"

// Status is the observed state of a store at poll time.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// StatusSample represents a single polling observation for a store.
// Timestamps are UTC. Samples are immutable once ingested; duplicate
// timestamps for the same store are possible and must be tolerated.
type StatusSample struct {
	StoreID   string    `json:"store_id"`
	Timestamp time.Time `json:"timestamp_utc"`
	Status    Status    `json:"status"`
}

// Active reports whether the observation saw the store up.
func (s StatusSample) Active() bool {
	return s.Status == StatusActive
}
