package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"WealthSentinel/internal/aggregator"
	"WealthSentinel/internal/model"
)

// ExportError reports that a report could not be persisted.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export report to %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Render derives the report fields from a state snapshot.
func Render(st model.SystemState, targets model.Targets, now time.Time) model.Report {
	hours := now.Sub(st.StartTime).Hours()
	if hours < 0 {
		hours = 0
	}
	projection := aggregator.MonthlyProjection(st.Streams)
	streams := make([]model.IncomeStream, len(st.Streams))
	copy(streams, st.Streams)

	return model.Report{
		RunID:             st.RunID,
		GeneratedAt:       now,
		TotalEarnings:     st.TotalEarnings,
		RuntimeHours:      hours,
		CycleCount:        st.CycleCount,
		ActiveStreams:     aggregator.ActiveCount(st.Streams),
		MonthlyProjection: projection,
		AnnualProjection:  projection * 12,
		Efficiency:        aggregator.Efficiency(st.TotalEarnings, hours, projection),
		Targets:           targets,
		Streams:           streams,
	}
}

// Export writes the report as indented JSON, replacing any previous file at path.
// The write goes through a temp file so readers never see a partial document.
func Export(r model.Report, path string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &ExportError{Path: path, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	if path == "" {
		return &ExportError{Path: path, Err: fmt.Errorf("path is empty")}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return &ExportError{Path: path, Err: fmt.Errorf("marshal: %w", err)}
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ExportError{Path: path, Err: fmt.Errorf("create dir: %w", err)}
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &ExportError{Path: path, Err: fmt.Errorf("write temp file: %w", err)}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &ExportError{Path: path, Err: fmt.Errorf("rename temp file: %w", err)}
	}
	return nil
}
