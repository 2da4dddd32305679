package aggregator

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"WealthSentinel/internal/model"
)

// Aggregator folds cycle results into running totals with concurrency safety.
// It is the only writer of SystemState and of the streams' earnings.
type Aggregator struct {
	mu                 sync.Mutex
	state              model.SystemState
	streams            []*model.IncomeStream
	index              map[string]*model.IncomeStream
	pauseAfterFailures int
	now                func() time.Time
	log                *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPauseAfterFailures pauses a stream after n consecutive failed cycles. 0 disables it.
func WithPauseAfterFailures(n int) Option {
	return func(a *Aggregator) { a.pauseAfterFailures = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New creates an Aggregator over the registry's streams.
func New(runID string, streams []*model.IncomeStream, log *zap.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		streams: streams,
		index:   make(map[string]*model.IncomeStream, len(streams)),
		now:     time.Now,
		log:     log,
	}
	for _, o := range opts {
		o(a)
	}
	for _, s := range streams {
		a.index[s.Name] = s
	}
	a.state = model.SystemState{RunID: runID, StartTime: a.now()}
	return a
}

// Apply adds one completed cycle's results atomically and counts the cycle.
// Failed results contribute nothing. Order of results is irrelevant.
func (a *Aggregator) Apply(results []model.CycleResult) model.SystemState {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	for _, r := range results {
		s, ok := a.index[r.Stream]
		if !ok {
			a.log.Warn("result for unknown stream dropped", zap.String("stream", r.Stream))
			continue
		}
		s.CyclesRun++
		if !r.OK() {
			s.Failures++
			s.ConsecutiveFailures++
			if a.pauseAfterFailures > 0 && s.ConsecutiveFailures >= a.pauseAfterFailures && s.Status == model.StatusActive {
				s.Status = model.StatusPaused
				a.log.Warn("stream paused after repeated failures",
					zap.String("stream", s.Name), zap.Int("consecutive_failures", s.ConsecutiveFailures))
			}
			continue
		}
		s.ConsecutiveFailures = 0
		s.CurrentEarnings += r.Earnings
		s.LastUpdated = now
		a.state.TotalEarnings += r.Earnings
	}
	a.state.CycleCount++
	return a.snapshotLocked()
}

// Snapshot returns a consistent copy of the current state.
func (a *Aggregator) Snapshot() model.SystemState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() model.SystemState {
	st := a.state
	st.Streams = make([]model.IncomeStream, len(a.streams))
	for i, s := range a.streams {
		st.Streams[i] = *s
	}
	return st
}

// SetStatus changes a stream's activity state. It takes effect on the next read and cycle.
func (a *Aggregator) SetStatus(name string, status model.StreamStatus) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.index[name]
	if !ok {
		return fmt.Errorf("aggregator: unknown stream %q", name)
	}
	if status != model.StatusActive && status != model.StatusPaused {
		return fmt.Errorf("aggregator: invalid status %q", status)
	}
	s.Status = status
	if status == model.StatusActive {
		s.ConsecutiveFailures = 0
	}
	return nil
}

// MonthlyProjection returns the sum of targets over active streams.
func (a *Aggregator) MonthlyProjection() float64 {
	return MonthlyProjection(a.Snapshot().Streams)
}

// Efficiency returns the current efficiency percentage.
func (a *Aggregator) Efficiency() float64 {
	st := a.Snapshot()
	return Efficiency(st.TotalEarnings, a.now().Sub(st.StartTime).Hours(), MonthlyProjection(st.Streams))
}

// Now returns the aggregator's clock reading.
func (a *Aggregator) Now() time.Time {
	return a.now()
}
