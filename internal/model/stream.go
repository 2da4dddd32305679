package model

import "time"

// StreamKind distinguishes passive and active income strategies.
type StreamKind string

const (
	KindPassive StreamKind = "passive"
	KindActive  StreamKind = "active"
)

// Valid reports whether k is a known kind.
func (k StreamKind) Valid() bool {
	return k == KindPassive || k == KindActive
}

// StreamStatus is the activity state of a stream.
type StreamStatus string

const (
	StatusActive StreamStatus = "active"
	StatusPaused StreamStatus = "paused"
)

// IncomeStream is a named, independently tracked income source.
type IncomeStream struct {
	Name            string       `json:"name"`
	Kind            StreamKind   `json:"type"`
	Status          StreamStatus `json:"status"`
	MonthlyTarget   float64      `json:"monthly_target"`
	CurrentEarnings float64      `json:"current_earnings"`
	LastUpdated     time.Time    `json:"last_updated"`

	CyclesRun           int `json:"cycles_run"`
	Failures            int `json:"failures"`
	ConsecutiveFailures int `json:"consecutive_failures"`
}

// Active reports whether the stream takes part in the next cycle.
func (s *IncomeStream) Active() bool {
	return s.Status == StatusActive
}
