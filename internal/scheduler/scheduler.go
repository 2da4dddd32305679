package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"WealthSentinel/internal/aggregator"
	"WealthSentinel/internal/config"
	"WealthSentinel/internal/dispatcher"
	"WealthSentinel/internal/metrics"
	"WealthSentinel/internal/model"
	"WealthSentinel/internal/recorder"
	"WealthSentinel/internal/reporter"
)

// State is the scheduler lifecycle phase.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// ParseCadence parses a cron spec such as "@every 1h" or "0 0 * * * *".
// A spec that never fires is rejected with a *config.Error.
func ParseCadence(spec string) (cron.Schedule, error) {
	return config.ParseSchedule("schedule.cadence", spec)
}

// Options tunes a Scheduler.
type Options struct {
	// Cadence decides when the next cycle starts after one finishes.
	Cadence cron.Schedule
	// Duration bounds the total run time when Bounded is set. Zero means one cycle.
	Duration time.Duration
	Bounded  bool
	// ReportPath is where the final and interim reports are written.
	ReportPath string
	Targets    model.Targets
	// SnapshotCron optionally exports interim reports while running.
	SnapshotCron string
}

// Scheduler drives repeated cycles and guarantees one final report export.
type Scheduler struct {
	Aggregator *aggregator.Aggregator
	Dispatcher *dispatcher.Dispatcher
	Recorder   recorder.Recorder
	Metrics    *metrics.Metrics

	opts  Options
	cron  *cron.Cron
	log   *zap.Logger
	state atomic.Int32

	exportMu  sync.Mutex
	finalOnce sync.Once
	finalErr  error
}

// NewScheduler creates a Scheduler. met may be nil.
func NewScheduler(opts Options, agg *aggregator.Aggregator, d *dispatcher.Dispatcher, rec recorder.Recorder, met *metrics.Metrics, log *zap.Logger) (*Scheduler, error) {
	if opts.Cadence == nil {
		return nil, fmt.Errorf("scheduler: cadence required")
	}
	if opts.ReportPath == "" {
		return nil, fmt.Errorf("scheduler: report path required")
	}
	if opts.Duration < 0 {
		return nil, fmt.Errorf("scheduler: duration must be >= 0")
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Scheduler{
		Aggregator: agg,
		Dispatcher: d,
		Recorder:   rec,
		Metrics:    met,
		opts:       opts,
		log:        log,
	}
	if opts.SnapshotCron != "" {
		sched, err := config.ParseSchedule("schedule.snapshot_cron", opts.SnapshotCron)
		if err != nil {
			return nil, fmt.Errorf("register snapshot task: %w", err)
		}
		s.cron = cron.New()
		s.cron.Schedule(sched, cron.FuncJob(s.snapshotTask))
	}
	return s, nil
}

// State returns the current lifecycle phase.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
	s.log.Debug("scheduler state", zap.Stringer("state", st))
}

// Run executes cycles until the duration bound is reached or ctx is cancelled.
// Cancellation is observed between cycles; a dispatch in progress always completes.
// The final report is exported on every exit path. The returned error is the
// export error, if any.
func (s *Scheduler) Run(ctx context.Context) (err error) {
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return fmt.Errorf("scheduler: already started")
	}

	start := time.Now()
	snap := s.Aggregator.Snapshot()
	s.log.Info("scheduler started",
		zap.String("run_id", snap.RunID),
		zap.Int("streams", len(snap.Streams)),
		zap.Float64("monthly_target", aggregator.MonthlyProjection(snap.Streams)))
	if err := s.Recorder.StartRun(&recorder.RunInfo{RunID: snap.RunID, StartedAt: snap.StartTime, Streams: len(snap.Streams)}); err != nil {
		s.log.Error("record run start", zap.Error(err))
	}

	if s.cron != nil {
		s.cron.Start()
	}

	defer func() {
		s.setState(Stopping)
		if s.cron != nil {
			<-s.cron.Stop().Done()
		}
		if exportErr := s.Shutdown(); exportErr != nil {
			err = exportErr
		}
		s.setState(Stopped)
	}()

	for {
		if ctx.Err() != nil {
			s.log.Info("shutdown requested")
			return nil
		}

		s.runCycle(ctx)

		now := time.Now()
		if s.opts.Bounded && !now.Before(start.Add(s.opts.Duration)) {
			s.log.Info("duration limit reached", zap.Duration("duration", s.opts.Duration))
			return nil
		}

		next := s.opts.Cadence.Next(now)
		if next.IsZero() {
			s.log.Warn("cadence has no further activations, stopping")
			return nil
		}
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("shutdown requested")
			return nil
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	snap := s.Aggregator.Snapshot()
	cycle := snap.CycleCount + 1
	s.log.Info("cycle starting", zap.Int("cycle", cycle))

	started := time.Now()
	results := s.Dispatcher.Dispatch(context.WithoutCancel(ctx), cycle, snap.Streams)
	elapsed := time.Since(started)

	st := s.Aggregator.Apply(results)
	report := reporter.Render(st, s.opts.Targets, s.Aggregator.Now())

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
		}
	}
	s.log.Info("cycle complete",
		zap.Int("cycle", st.CycleCount),
		zap.Float64("total_earnings", report.TotalEarnings),
		zap.Float64("efficiency", report.Efficiency),
		zap.Float64("monthly_projection", report.MonthlyProjection),
		zap.Int("failures", failures),
		zap.Duration("took", elapsed))

	if err := s.Recorder.RecordCycle(&recorder.CycleRecord{
		RunID:         st.RunID,
		Cycle:         st.CycleCount,
		At:            report.GeneratedAt,
		TotalEarnings: st.TotalEarnings,
		Efficiency:    report.Efficiency,
		Results:       results,
	}); err != nil {
		s.log.Error("record cycle", zap.Int("cycle", st.CycleCount), zap.Error(err))
	}
	if s.Metrics != nil {
		s.Metrics.ObserveCycle(elapsed.Seconds(), results, report)
	}
}

// Report renders the current state without persisting it.
func (s *Scheduler) Report() model.Report {
	return reporter.Render(s.Aggregator.Snapshot(), s.opts.Targets, s.Aggregator.Now())
}

// ExportReport renders and writes the current report. Safe for concurrent use.
func (s *Scheduler) ExportReport() (model.Report, error) {
	s.exportMu.Lock()
	defer s.exportMu.Unlock()

	r := s.Report()
	if err := reporter.Export(r, s.opts.ReportPath); err != nil {
		return r, err
	}
	return r, nil
}

// Shutdown exports the final report. Only the first call does any work; later
// calls return the first call's result. Calling it before Run retires the
// scheduler without recording a run.
func (s *Scheduler) Shutdown() error {
	s.finalOnce.Do(func() {
		neverRan := s.state.CompareAndSwap(int32(Idle), int32(Stopped))
		r, err := s.ExportReport()
		if err != nil {
			s.log.Error("final report export failed", zap.Error(err))
			s.finalErr = err
		} else {
			s.log.Info("report exported", zap.String("path", s.opts.ReportPath))
		}
		if !neverRan {
			if err := s.Recorder.FinishRun(&r); err != nil {
				s.log.Error("record run finish", zap.Error(err))
			}
		}
		s.log.Info("final statistics",
			zap.Float64("runtime_hours", r.RuntimeHours),
			zap.Float64("total_earnings", r.TotalEarnings),
			zap.Int("cycles_completed", r.CycleCount))
	})
	return s.finalErr
}

func (s *Scheduler) snapshotTask() {
	if _, err := s.ExportReport(); err != nil {
		s.log.Error("snapshot export failed", zap.Error(err))
		return
	}
	s.log.Info("snapshot exported", zap.String("path", s.opts.ReportPath))
}

// SetStreamStatus pauses or resumes a stream from the next cycle on.
func (s *Scheduler) SetStreamStatus(name string, status model.StreamStatus) error {
	if err := s.Aggregator.SetStatus(name, status); err != nil {
		return err
	}
	s.log.Info("stream status changed", zap.String("stream", name), zap.String("status", string(status)))
	return nil
}
