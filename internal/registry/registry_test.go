package registry

import (
	"errors"
	"testing"
	"time"

	"WealthSentinel/internal/config"
	"WealthSentinel/internal/model"
)

func TestInitialize_Defaults(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := Initialize(config.Default(), now)
	if err != nil {
		t.Fatalf("Initialize err=%v", err)
	}
	want := []string{"API Monetization", "Crypto Arbitrage", "Content Generation", "Bounty Hunting", "Affiliate Marketing"}
	if len(r.Streams) != len(want) {
		t.Fatalf("expected %d streams, got %d", len(want), len(r.Streams))
	}
	for i, s := range r.Streams {
		if s.Name != want[i] {
			t.Errorf("stream %d: expected %q, got %q", i, want[i], s.Name)
		}
		if s.Status != model.StatusActive {
			t.Errorf("%s: expected active, got %s", s.Name, s.Status)
		}
		if !s.LastUpdated.Equal(now) {
			t.Errorf("%s: unexpected last_updated %v", s.Name, s.LastUpdated)
		}
		if r.Workers[s.Name] == nil {
			t.Errorf("%s: no worker bound", s.Name)
		}
	}
	if r.Streams[1].Kind != model.KindActive || r.Streams[1].MonthlyTarget != 800 {
		t.Errorf("unexpected crypto stream: %+v", r.Streams[1])
	}
}

func TestInitialize_StrategyFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Strategies = map[string]bool{"crypto_arbitrage": false, "bounty_hunting": true}

	r, err := Initialize(cfg, time.Now())
	if err != nil {
		t.Fatalf("Initialize err=%v", err)
	}
	if len(r.Streams) != 4 {
		t.Fatalf("expected 4 streams, got %d", len(r.Streams))
	}
	for _, s := range r.Streams {
		if s.Name == "Crypto Arbitrage" {
			t.Error("disabled stream was registered")
		}
	}
}

func TestInitialize_DuplicateName(t *testing.T) {
	cfg := config.Default()
	cfg.Streams = []config.StreamSpec{
		{Name: "A", Type: "passive", Target: 10},
		{Name: "A", Type: "active", Target: 20},
	}
	_, err := Initialize(cfg, time.Now())
	var cerr *config.Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected config.Error, got %v", err)
	}
}

func TestInitialize_MissingName(t *testing.T) {
	cfg := config.Default()
	cfg.Streams = []config.StreamSpec{{Type: "passive", Target: 10}}
	if _, err := Initialize(cfg, time.Now()); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestInitialize_Deterministic(t *testing.T) {
	now := time.Now()
	a, _ := Initialize(config.Default(), now)
	b, _ := Initialize(config.Default(), now)
	for i := range a.Streams {
		if *a.Streams[i] != *b.Streams[i] {
			t.Fatalf("stream %d differs: %+v vs %+v", i, a.Streams[i], b.Streams[i])
		}
	}
}
