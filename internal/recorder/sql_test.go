package recorder

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"WealthSentinel/internal/model"
)

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?,?)"
	if got := dialects["sqlite"].rebind(q); got != q {
		t.Errorf("sqlite rebind changed query: %s", got)
	}
	if got := dialects["postgres"].rebind(q); got != "INSERT INTO t (a, b) VALUES ($1,$2)" {
		t.Errorf("unexpected postgres query: %s", got)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open("mysql", "", zap.NewNop()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wealth.db")
	r, err := Open("sqlite", path, zap.NewNop())
	if err != nil {
		t.Fatalf("Open err=%v", err)
	}
	defer r.Close()

	start := time.Now().Add(-time.Hour)
	if err := r.StartRun(&RunInfo{RunID: "run-1", StartedAt: start, Streams: 2}); err != nil {
		t.Fatalf("StartRun err=%v", err)
	}

	for i := 1; i <= 2; i++ {
		rec := &CycleRecord{
			RunID:         "run-1",
			Cycle:         i,
			At:            start.Add(time.Duration(i) * time.Minute),
			TotalEarnings: float64(i) * 1.5,
			Results: []model.CycleResult{
				{Stream: "a", Earnings: 1.5, Duration: 20 * time.Millisecond},
				{Stream: "b", Err: errors.New("down")},
			},
		}
		if err := r.RecordCycle(rec); err != nil {
			t.Fatalf("RecordCycle %d err=%v", i, err)
		}
	}

	hist, err := r.History("run-1")
	if err != nil {
		t.Fatalf("History err=%v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(hist))
	}
	if hist[1].Cycle != 2 || hist[1].TotalEarnings != 3 || hist[1].Failures != 1 {
		t.Errorf("unexpected cycle row %+v", hist[1])
	}

	if err := r.FinishRun(&model.Report{RunID: "run-1", GeneratedAt: time.Now(), CycleCount: 2, TotalEarnings: 3}); err != nil {
		t.Fatalf("FinishRun err=%v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var cycles int
	var total float64
	if err := db.QueryRow(`SELECT cycle_count, total_earnings FROM runs WHERE run_id = 'run-1'`).Scan(&cycles, &total); err != nil {
		t.Fatalf("query run err=%v", err)
	}
	if cycles != 2 || total != 3 {
		t.Errorf("unexpected run row: cycles=%d total=%f", cycles, total)
	}

	var failed int
	if err := db.QueryRow(`SELECT COUNT(*) FROM cycle_results WHERE error IS NOT NULL`).Scan(&failed); err != nil {
		t.Fatal(err)
	}
	if failed != 2 {
		t.Errorf("expected 2 failed result rows, got %d", failed)
	}
}
