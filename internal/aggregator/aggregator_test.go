package aggregator

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"WealthSentinel/internal/model"
	"WealthSentinel/internal/worker"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func fiveStreams() []*model.IncomeStream {
	return []*model.IncomeStream{
		{Name: "API Monetization", Kind: model.KindPassive, Status: model.StatusActive, MonthlyTarget: 1000},
		{Name: "Crypto Arbitrage", Kind: model.KindActive, Status: model.StatusActive, MonthlyTarget: 800},
		{Name: "Content Generation", Kind: model.KindPassive, Status: model.StatusActive, MonthlyTarget: 600},
		{Name: "Bounty Hunting", Kind: model.KindActive, Status: model.StatusActive, MonthlyTarget: 400},
		{Name: "Affiliate Marketing", Kind: model.KindPassive, Status: model.StatusActive, MonthlyTarget: 200},
	}
}

func newTestAggregator(c *clock, opts ...Option) *Aggregator {
	opts = append(opts, WithClock(c.now))
	return New("run-1", fiveStreams(), zap.NewNop(), opts...)
}

func TestApply_OneOfFiveFails(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := newTestAggregator(c)
	before := a.Snapshot().TotalEarnings

	results := []model.CycleResult{
		{Stream: "API Monetization", Earnings: worker.PassiveBaseline(1000)},
		{Stream: "Crypto Arbitrage", Err: errors.New("exchange down")},
		{Stream: "Content Generation", Earnings: worker.PassiveBaseline(600)},
		{Stream: "Bounty Hunting", Earnings: worker.ActiveBaseline(400)},
		{Stream: "Affiliate Marketing", Earnings: worker.PassiveBaseline(200)},
	}
	c.t = c.t.Add(time.Hour)
	st := a.Apply(results)

	want := before + worker.PassiveBaseline(1000) + worker.PassiveBaseline(600) +
		worker.ActiveBaseline(400) + worker.PassiveBaseline(200)
	if math.Abs(st.TotalEarnings-want) > 1e-9 {
		t.Errorf("expected total %.6f, got %.6f", want, st.TotalEarnings)
	}
	if st.CycleCount != 1 {
		t.Errorf("expected cycle count 1, got %d", st.CycleCount)
	}
	for _, s := range st.Streams {
		if s.Name == "Crypto Arbitrage" {
			if s.CurrentEarnings != 0 || s.Failures != 1 || s.Status != model.StatusActive {
				t.Errorf("failed stream state wrong: %+v", s)
			}
			if !s.LastUpdated.IsZero() {
				t.Errorf("failed stream timestamp refreshed: %v", s.LastUpdated)
			}
		} else if !s.LastUpdated.Equal(c.t) {
			t.Errorf("%s: last_updated not refreshed", s.Name)
		}
	}
}

func TestApply_TotalEqualsSumOfStreams(t *testing.T) {
	c := &clock{t: time.Now()}
	a := newTestAggregator(c)
	for i := 0; i < 3; i++ {
		a.Apply([]model.CycleResult{
			{Stream: "Bounty Hunting", Earnings: 1.25},
			{Stream: "API Monetization", Earnings: 2.5},
			{Stream: "Affiliate Marketing", Err: errors.New("x")},
		})
	}
	st := a.Snapshot()
	sum := 0.0
	for _, s := range st.Streams {
		sum += s.CurrentEarnings
	}
	if math.Abs(sum-st.TotalEarnings) > 1e-9 {
		t.Errorf("total %.6f != sum of streams %.6f", st.TotalEarnings, sum)
	}
	if st.CycleCount != 3 {
		t.Errorf("expected 3 cycles, got %d", st.CycleCount)
	}
}

func TestApply_OrderIndependent(t *testing.T) {
	c := &clock{t: time.Now()}
	r := []model.CycleResult{
		{Stream: "API Monetization", Earnings: 0.1},
		{Stream: "Crypto Arbitrage", Earnings: 0.2},
		{Stream: "Content Generation", Earnings: 0.3},
	}
	rev := []model.CycleResult{r[2], r[1], r[0]}

	a := newTestAggregator(c)
	b := newTestAggregator(c)
	sa := a.Apply(r)
	sb := b.Apply(rev)
	for i := range sa.Streams {
		if sa.Streams[i].CurrentEarnings != sb.Streams[i].CurrentEarnings {
			t.Errorf("%s differs by order", sa.Streams[i].Name)
		}
	}
	if math.Abs(sa.TotalEarnings-sb.TotalEarnings) > 1e-12 {
		t.Errorf("totals differ: %f vs %f", sa.TotalEarnings, sb.TotalEarnings)
	}
}

func TestApply_EmptyCycleCounts(t *testing.T) {
	a := newTestAggregator(&clock{t: time.Now()})
	st := a.Apply(nil)
	if st.CycleCount != 1 || st.TotalEarnings != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestApply_PauseAfterFailures(t *testing.T) {
	a := newTestAggregator(&clock{t: time.Now()}, WithPauseAfterFailures(2))
	fail := []model.CycleResult{{Stream: "Bounty Hunting", Err: errors.New("x")}}

	a.Apply(fail)
	if statusOf(a, "Bounty Hunting") != model.StatusActive {
		t.Fatal("paused too early")
	}
	a.Apply(fail)
	if statusOf(a, "Bounty Hunting") != model.StatusPaused {
		t.Fatal("expected stream paused after 2 consecutive failures")
	}
}

func TestApply_FailuresTransientByDefault(t *testing.T) {
	a := newTestAggregator(&clock{t: time.Now()})
	for i := 0; i < 10; i++ {
		a.Apply([]model.CycleResult{{Stream: "Bounty Hunting", Err: errors.New("x")}})
	}
	if statusOf(a, "Bounty Hunting") != model.StatusActive {
		t.Fatal("stream paused with policy disabled")
	}
}

func TestMonthlyProjection_FollowsStatus(t *testing.T) {
	a := newTestAggregator(&clock{t: time.Now()})
	if got := a.MonthlyProjection(); got != 3000 {
		t.Fatalf("expected 3000, got %f", got)
	}
	if err := a.SetStatus("Crypto Arbitrage", model.StatusPaused); err != nil {
		t.Fatal(err)
	}
	if got := a.MonthlyProjection(); got != 2200 {
		t.Fatalf("expected 2200 after pause, got %f", got)
	}
	if err := a.SetStatus("Crypto Arbitrage", model.StatusActive); err != nil {
		t.Fatal(err)
	}
	if got := a.MonthlyProjection(); got != 3000 {
		t.Fatalf("expected 3000 after resume, got %f", got)
	}
	if err := a.SetStatus("nope", model.StatusPaused); err == nil {
		t.Error("expected error for unknown stream")
	}
}

func TestEfficiency(t *testing.T) {
	tests := []struct {
		name                  string
		total, hours, project float64
		want                  float64
	}{
		{"zero elapsed", 100, 0, 3000, 0},
		{"zero projection", 100, 2, 0, 0},
		{"on target", 3000.0 / 720, 1, 3000, 100},
		{"double", 2 * 3000.0 / 720 * 5, 5, 3000, 200},
		{"nothing earned", 0, 3, 3000, 0},
	}
	for _, tt := range tests {
		got := Efficiency(tt.total, tt.hours, tt.project)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.want, got)
		}
	}
}

func TestEfficiency_Aggregator(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := newTestAggregator(c)
	if a.Efficiency() != 0 {
		t.Fatal("efficiency must be 0 with no elapsed time")
	}
	c.t = c.t.Add(2 * time.Hour)
	a.Apply([]model.CycleResult{{Stream: "API Monetization", Earnings: 3000.0 / 720}})
	want := (3000.0 / 720 / 2) / (3000.0 / 720) * 100
	if math.Abs(a.Efficiency()-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, a.Efficiency())
	}
}

func statusOf(a *Aggregator, name string) model.StreamStatus {
	for _, s := range a.Snapshot().Streams {
		if s.Name == name {
			return s.Status
		}
	}
	return ""
}
