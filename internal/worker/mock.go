package worker

import (
	"context"
	"sync/atomic"

	"WealthSentinel/internal/model"
)

// Mock returns controllable fixed results for development and testing.
type Mock struct {
	StreamName string
	Earnings   float64
	Err        error
	Panic      bool
	Block      chan struct{}
	// IgnoreContext makes a blocked Execute wait for Block alone.
	IgnoreContext bool

	calls atomic.Int64
}

func (m *Mock) Name() string { return m.StreamName }

// Calls returns how many times Execute ran.
func (m *Mock) Calls() int { return int(m.calls.Load()) }

func (m *Mock) Execute(ctx context.Context, _ model.Task) (Result, error) {
	m.calls.Add(1)
	if m.Block != nil && m.IgnoreContext {
		<-m.Block
	} else if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	if m.Panic {
		panic("mock worker panic")
	}
	if m.Err != nil {
		return Result{}, m.Err
	}
	return Result{Earnings: m.Earnings, Detail: "mock"}, nil
}
