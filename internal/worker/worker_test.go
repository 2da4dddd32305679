package worker

import (
	"context"
	"math"
	"testing"

	"WealthSentinel/internal/model"
)

func TestActiveBaseline_IsOneAndAHalfPassive(t *testing.T) {
	for _, target := range []float64{0, 200, 400, 600, 800, 1000, 1234.5} {
		p := PassiveBaseline(target)
		a := ActiveBaseline(target)
		if a != p*1.5 {
			t.Errorf("target %.1f: active %.6f != 1.5 * passive %.6f", target, a, p)
		}
	}
}

func TestPassiveBaseline_HourlyRate(t *testing.T) {
	got := PassiveBaseline(720)
	if math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected 1.0 for target 720, got %f", got)
	}
}

func TestFor_PicksStrategy(t *testing.T) {
	tests := []struct {
		stream model.IncomeStream
		want   string
	}{
		{model.IncomeStream{Name: "API Monetization", Kind: model.KindPassive}, "*worker.APIMonetization"},
		{model.IncomeStream{Name: "Crypto Arbitrage", Kind: model.KindActive}, "*worker.CryptoArbitrage"},
		{model.IncomeStream{Name: "Bounty Hunting", Kind: model.KindActive}, "*worker.Active"},
		{model.IncomeStream{Name: "Affiliate Marketing", Kind: model.KindPassive}, "*worker.Passive"},
	}
	for _, tt := range tests {
		w, err := For(&tt.stream)
		if err != nil {
			t.Fatalf("%s: %v", tt.stream.Name, err)
		}
		if got := typeName(w); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.stream.Name, tt.want, got)
		}
		if w.Name() != tt.stream.Name {
			t.Errorf("expected name %q, got %q", tt.stream.Name, w.Name())
		}
	}
}

func TestFor_UnknownKind(t *testing.T) {
	if _, err := For(&model.IncomeStream{Name: "x", Kind: "hybrid"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestExecute_Baselines(t *testing.T) {
	old := Latency
	Latency = 0
	defer func() { Latency = old }()

	ctx := context.Background()
	task := model.Task{Target: 800}

	res, err := (&Passive{name: "p"}).Execute(ctx, task)
	if err != nil || res.Earnings != PassiveBaseline(800) {
		t.Errorf("passive: got %v, %v", res.Earnings, err)
	}
	res, err = (&CryptoArbitrage{Active{name: "c"}}).Execute(ctx, task)
	if err != nil || res.Earnings != ActiveBaseline(800) {
		t.Errorf("crypto: got %v, %v", res.Earnings, err)
	}
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&Active{name: "a"}).Execute(ctx, model.Task{Target: 100}); err == nil {
		t.Fatal("expected context error")
	}
}

func typeName(w Worker) string {
	switch w.(type) {
	case *APIMonetization:
		return "*worker.APIMonetization"
	case *CryptoArbitrage:
		return "*worker.CryptoArbitrage"
	case *Active:
		return "*worker.Active"
	case *Passive:
		return "*worker.Passive"
	}
	return "?"
}
