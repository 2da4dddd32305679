package model

import "time"

// Task describes one unit of work handed to a worker.
type Task struct {
	Cycle  int
	Stream string
	Kind   StreamKind
	Target float64
	At     time.Time
}

// CycleResult is the outcome of one worker for one cycle.
// Err != nil means the worker failed and Earnings is ignored.
type CycleResult struct {
	Stream string
	// Worker names the implementation that produced the result.
	Worker   string
	Earnings float64
	Detail   string
	Duration time.Duration
	Err      error
}

// OK reports whether the worker settled successfully.
func (r CycleResult) OK() bool {
	return r.Err == nil
}
