package worker

import (
	"context"
	"fmt"

	"WealthSentinel/internal/model"
)

// Result is what a worker produces for one task.
type Result struct {
	Earnings float64
	Detail   string
}

// Worker produces an earnings result for a task. Implementations must honor ctx.
type Worker interface {
	Execute(ctx context.Context, task model.Task) (Result, error)
	Name() string
}

// PassiveBaseline is the hourly earnings rate for a monthly target.
func PassiveBaseline(monthlyTarget float64) float64 {
	return monthlyTarget / 30 / 24
}

// ActiveBaseline rewards active strategies 50% over passive ones.
func ActiveBaseline(monthlyTarget float64) float64 {
	return PassiveBaseline(monthlyTarget) * 1.5
}

// Baseline returns the per-cycle baseline for the given kind.
func Baseline(kind model.StreamKind, monthlyTarget float64) float64 {
	if kind == model.KindActive {
		return ActiveBaseline(monthlyTarget)
	}
	return PassiveBaseline(monthlyTarget)
}

// For picks the worker implementation for a stream.
// Known stream names get their dedicated strategy, everything else falls back to the kind baseline.
func For(s *model.IncomeStream) (Worker, error) {
	if !s.Kind.Valid() {
		return nil, fmt.Errorf("worker: unknown kind %q for stream %q", s.Kind, s.Name)
	}
	if ctor, ok := strategies[s.Name]; ok {
		return ctor(s), nil
	}
	if s.Kind == model.KindActive {
		return &Active{name: s.Name}, nil
	}
	return &Passive{name: s.Name}, nil
}
