package worker

import (
	"context"
	"fmt"
	"time"

	"WealthSentinel/internal/model"
)

// Latency simulates the async work a real strategy would do.
var Latency = 500 * time.Millisecond

func simulate(ctx context.Context) error {
	if Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Passive earns the hourly baseline of its target.
type Passive struct {
	name string
}

func (p *Passive) Name() string { return p.name }

func (p *Passive) Execute(ctx context.Context, task model.Task) (Result, error) {
	if err := simulate(ctx); err != nil {
		return Result{}, err
	}
	earned := PassiveBaseline(task.Target)
	return Result{Earnings: earned, Detail: fmt.Sprintf("passive baseline %.4f/h", earned)}, nil
}

// Active earns 1.5x the passive baseline.
type Active struct {
	name string
}

func (a *Active) Name() string { return a.name }

func (a *Active) Execute(ctx context.Context, task model.Task) (Result, error) {
	if err := simulate(ctx); err != nil {
		return Result{}, err
	}
	earned := ActiveBaseline(task.Target)
	return Result{Earnings: earned, Detail: fmt.Sprintf("active baseline %.4f/h", earned)}, nil
}
