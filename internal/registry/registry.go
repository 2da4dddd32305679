package registry

import (
	"fmt"
	"time"

	"WealthSentinel/internal/config"
	"WealthSentinel/internal/model"
	"WealthSentinel/internal/worker"
)

// Registry holds the configured streams and the worker bound to each of them.
type Registry struct {
	Streams []*model.IncomeStream
	Workers map[string]worker.Worker
}

// Initialize builds the stream collection from configuration. The order follows
// the configured catalog and every stream starts active.
func Initialize(cfg *config.Config, now time.Time) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{Workers: make(map[string]worker.Worker)}
	for i, spec := range cfg.Streams {
		if !cfg.Enabled(spec) {
			continue
		}
		s := &model.IncomeStream{
			Name:          spec.Name,
			Kind:          model.StreamKind(spec.Type),
			Status:        model.StatusActive,
			MonthlyTarget: spec.Target,
			LastUpdated:   now,
		}
		w, err := worker.For(s)
		if err != nil {
			return nil, &config.Error{Field: fmt.Sprintf("streams[%d]", i), Msg: "bind worker", Err: err}
		}
		r.Streams = append(r.Streams, s)
		r.Workers[s.Name] = w
	}
	return r, nil
}
