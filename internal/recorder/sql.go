package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"WealthSentinel/internal/model"
)

type dialect struct {
	driver   string
	idColumn string
	pragmas  []string
	numbered bool
}

var dialects = map[string]dialect{
	"sqlite": {
		driver:   "sqlite",
		idColumn: "id INTEGER PRIMARY KEY AUTOINCREMENT",
		// WAL mode so dashboards can read while the scheduler writes.
		pragmas: []string{"PRAGMA journal_mode=WAL"},
	},
	"postgres": {
		driver:   "postgres",
		idColumn: "id SERIAL PRIMARY KEY",
		numbered: true,
	},
}

// rebind turns ? placeholders into $n for drivers that need numbered ones.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLRecorder persists run history to SQLite or Postgres.
type SQLRecorder struct {
	db      *sql.DB
	dialect dialect
	mu      sync.Mutex
	log     *zap.Logger
}

// Open connects to the database for driver ("sqlite" or "postgres") and runs migrations.
func Open(driver, dsn string, log *zap.Logger) (*SQLRecorder, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if driver == "sqlite" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	for _, p := range d.pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	r := &SQLRecorder{db: db, dialect: d, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("recorder opened", zap.String("driver", driver))
	return r, nil
}

func (r *SQLRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id         TEXT PRIMARY KEY,
			started_at     BIGINT NOT NULL,
			finished_at    BIGINT,
			streams        INTEGER,
			cycle_count    INTEGER,
			total_earnings DOUBLE PRECISION,
			efficiency     DOUBLE PRECISION
		)`,

		`CREATE TABLE IF NOT EXISTS cycles (
			` + r.dialect.idColumn + `,
			run_id         TEXT NOT NULL,
			cycle          INTEGER NOT NULL,
			timestamp      BIGINT NOT NULL,
			total_earnings DOUBLE PRECISION,
			efficiency     DOUBLE PRECISION,
			failures       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_run ON cycles(run_id, cycle)`,

		`CREATE TABLE IF NOT EXISTS cycle_results (
			` + r.dialect.idColumn + `,
			run_id      TEXT NOT NULL,
			cycle       INTEGER NOT NULL,
			stream      TEXT NOT NULL,
			earnings    DOUBLE PRECISION,
			error       TEXT,
			duration_ms BIGINT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON cycle_results(run_id, cycle)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLRecorder) StartRun(run *RunInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(r.dialect.rebind(`INSERT INTO runs (run_id, started_at, streams, cycle_count, total_earnings, efficiency)
		VALUES (?,?,?,0,0,0)`),
		run.RunID, run.StartedAt.Unix(), run.Streams,
	)
	return err
}

// RecordCycle stores the cycle row and one row per worker result in a single transaction.
func (r *SQLRecorder) RecordCycle(rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(r.dialect.rebind(`INSERT INTO cycles
		(run_id, cycle, timestamp, total_earnings, efficiency, failures)
		VALUES (?,?,?,?,?,?)`),
		rec.RunID, rec.Cycle, rec.At.Unix(), rec.TotalEarnings, rec.Efficiency, rec.Failures(),
	); err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	stmt, err := tx.Prepare(r.dialect.rebind(`INSERT INTO cycle_results
		(run_id, cycle, stream, earnings, error, duration_ms)
		VALUES (?,?,?,?,?,?)`))
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range rec.Results {
		var errText sql.NullString
		if res.Err != nil {
			errText = sql.NullString{String: res.Err.Error(), Valid: true}
		}
		if _, err := stmt.Exec(rec.RunID, rec.Cycle, res.Stream, res.Earnings, errText, res.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("insert result for %s: %w", res.Stream, err)
		}
	}
	return tx.Commit()
}

func (r *SQLRecorder) FinishRun(report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(r.dialect.rebind(`UPDATE runs SET finished_at = ?, cycle_count = ?, total_earnings = ?, efficiency = ?
		WHERE run_id = ?`),
		report.GeneratedAt.Unix(), report.CycleCount, report.TotalEarnings, report.Efficiency, report.RunID,
	)
	return err
}

// CycleSummary is one row of a run's cycle history.
type CycleSummary struct {
	Cycle         int       `json:"cycle"`
	At            time.Time `json:"at"`
	TotalEarnings float64   `json:"total_earnings"`
	Efficiency    float64   `json:"efficiency"`
	Failures      int       `json:"failures"`
}

// History returns the recorded cycles of a run in order.
func (r *SQLRecorder) History(runID string) ([]CycleSummary, error) {
	rows, err := r.db.Query(r.dialect.rebind(`SELECT cycle, timestamp, total_earnings, efficiency, failures
		FROM cycles WHERE run_id = ? ORDER BY cycle`), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CycleSummary
	for rows.Next() {
		var (
			c  CycleSummary
			ts int64
		)
		if err := rows.Scan(&c.Cycle, &ts, &c.TotalEarnings, &c.Efficiency, &c.Failures); err != nil {
			return nil, err
		}
		c.At = time.Unix(ts, 0)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLRecorder) Close() error {
	r.log.Info("closing recorder")
	return r.db.Close()
}
