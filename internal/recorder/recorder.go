package recorder

import (
	"time"

	"WealthSentinel/internal/model"
)

// RunInfo identifies one scheduler run.
type RunInfo struct {
	RunID     string
	StartedAt time.Time
	Streams   int
}

// CycleRecord holds everything persisted for one completed cycle.
type CycleRecord struct {
	RunID         string
	Cycle         int
	At            time.Time
	TotalEarnings float64
	Efficiency    float64
	Results       []model.CycleResult
}

// Failures counts failed results in the cycle.
func (c *CycleRecord) Failures() int {
	n := 0
	for _, r := range c.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Recorder persists run history for analysis.
type Recorder interface {
	StartRun(run *RunInfo) error
	RecordCycle(rec *CycleRecord) error
	FinishRun(report *model.Report) error
	Close() error
}
