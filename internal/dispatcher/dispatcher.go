package dispatcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"WealthSentinel/internal/model"
	"WealthSentinel/internal/worker"
)

// WorkerExecutionError reports a single worker failing for one cycle.
type WorkerExecutionError struct {
	Stream string
	Err    error
}

func (e *WorkerExecutionError) Error() string {
	return fmt.Sprintf("stream %s: %v", e.Stream, e.Err)
}

func (e *WorkerExecutionError) Unwrap() error { return e.Err }

// Dispatcher runs one task per active stream and joins them all.
type Dispatcher struct {
	workers map[string]worker.Worker
	timeout time.Duration
	log     *zap.Logger
}

// New creates a Dispatcher. timeout <= 0 disables the per-task deadline.
func New(workers map[string]worker.Worker, timeout time.Duration, log *zap.Logger) *Dispatcher {
	return &Dispatcher{workers: workers, timeout: timeout, log: log}
}

// Dispatch invokes every active stream's worker concurrently and waits for all
// of them to settle. A failure never aborts the others; it is captured in the
// corresponding result with zero earnings.
func (d *Dispatcher) Dispatch(ctx context.Context, cycle int, streams []model.IncomeStream) []model.CycleResult {
	var active []model.IncomeStream
	for _, s := range streams {
		if s.Active() {
			active = append(active, s)
		}
	}

	results := make([]model.CycleResult, len(active))
	var g errgroup.Group
	for i, s := range active {
		i := i
		task := model.Task{
			Cycle:  cycle,
			Stream: s.Name,
			Kind:   s.Kind,
			Target: s.MonthlyTarget,
			At:     time.Now(),
		}
		g.Go(func() error {
			results[i] = d.run(ctx, task)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Err != nil {
			d.log.Warn("worker failed", zap.Int("cycle", cycle), zap.String("stream", r.Stream),
				zap.String("worker", r.Worker), zap.Error(r.Err))
		} else {
			d.log.Debug("worker settled", zap.Int("cycle", cycle), zap.String("stream", r.Stream), zap.String("worker", r.Worker),
				zap.Float64("earnings", r.Earnings), zap.Duration("took", r.Duration))
		}
	}
	return results
}

type outcome struct {
	res worker.Result
	err error
}

// run executes one task. The worker runs in its own goroutine so a worker that
// ignores ctx is abandoned once the deadline passes instead of stalling the join.
func (d *Dispatcher) run(ctx context.Context, task model.Task) (res model.CycleResult) {
	res.Stream = task.Stream
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	w, ok := d.workers[task.Stream]
	if !ok {
		res.Err = &WorkerExecutionError{Stream: task.Stream, Err: fmt.Errorf("no worker bound")}
		return res
	}
	res.Worker = w.Name()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		out, err := w.Execute(ctx, task)
		done <- outcome{res: out, err: err}
	}()

	var o outcome
	select {
	case o = <-done:
	case <-ctx.Done():
		res.Err = &WorkerExecutionError{Stream: task.Stream, Err: ctx.Err()}
		return res
	}

	if o.err != nil {
		res.Err = &WorkerExecutionError{Stream: task.Stream, Err: o.err}
		return res
	}
	if o.res.Earnings < 0 {
		res.Err = &WorkerExecutionError{Stream: task.Stream, Err: fmt.Errorf("negative earnings %.4f", o.res.Earnings)}
		return res
	}
	res.Earnings = o.res.Earnings
	res.Detail = o.res.Detail
	return res
}
