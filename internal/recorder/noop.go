package recorder

import "WealthSentinel/internal/model"

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) StartRun(_ *RunInfo) error        { return nil }
func (n *NoopRecorder) RecordCycle(_ *CycleRecord) error { return nil }
func (n *NoopRecorder) FinishRun(_ *model.Report) error  { return nil }
func (n *NoopRecorder) Close() error                     { return nil }
