package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"WealthSentinel/internal/aggregator"
	"WealthSentinel/internal/config"
	"WealthSentinel/internal/dispatcher"
	"WealthSentinel/internal/logging"
	"WealthSentinel/internal/metrics"
	"WealthSentinel/internal/model"
	"WealthSentinel/internal/monitor"
	"WealthSentinel/internal/recorder"
	"WealthSentinel/internal/registry"
	"WealthSentinel/internal/reporter"
	"WealthSentinel/internal/scheduler"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfgPath    = flag.String("config", "", "path to configuration file (YAML or JSON)")
		hours      = flag.Int("duration", 0, "run duration in hours")
		reportOnly = flag.Bool("report", false, "initialize streams, export a report and exit")
		output     = flag.String("output", "", "report output path (overrides config)")
	)
	flag.StringVar(cfgPath, "c", "", "shorthand for -config")
	flag.IntVar(hours, "d", 0, "shorthand for -duration")
	flag.BoolVar(reportOnly, "r", false, "shorthand for -report")
	flag.Parse()

	bounded := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "duration" || f.Name == "d" {
			bounded = true
		}
	})

	if *cfgPath == "" {
		*cfgPath = os.Getenv("WEALTH_CONFIG")
	}

	// Load config
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] load config: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] config validation: %v\n", err)
		return 1
	}
	if *output != "" {
		cfg.Report.Path = *output
	}
	if *hours < 0 {
		fmt.Fprintln(os.Stderr, "[FATAL] --duration must not be negative")
		return 1
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] init logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	log.Info("WealthSentinel starting",
		zap.Float64("target_daily", cfg.Targets.Daily),
		zap.Float64("target_monthly", cfg.Targets.Monthly),
		zap.Bool("auto_reinvest", cfg.Automation.AutoReinvest),
		zap.Bool("risk_management", cfg.Automation.RiskManagement),
		zap.Bool("diversification", cfg.Automation.Diversification))

	// Init registry
	reg, err := registry.Initialize(cfg, time.Now())
	if err != nil {
		log.Error("initialize streams", zap.Error(err))
		return 1
	}
	for _, s := range reg.Streams {
		log.Info("stream initialized", zap.String("stream", s.Name), zap.String("type", string(s.Kind)),
			zap.Float64("monthly_target", s.MonthlyTarget))
	}

	cadence, err := scheduler.ParseCadence(cfg.Schedule.Cadence)
	if err != nil {
		log.Error("config validation", zap.Error(err))
		return 1
	}

	// Init recorder; report-only mode records no run
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	var history monitor.HistoryFunc
	if cfg.Database.Driver != "" && !*reportOnly {
		sr, err := recorder.Open(cfg.Database.Driver, cfg.Database.DSN, log)
		if err != nil {
			log.Warn("init recorder failed, using noop", zap.Error(err))
		} else {
			rec = sr
			history = sr.History
			defer sr.Close()
		}
	}

	runID := uuid.NewString()
	agg := aggregator.New(runID, reg.Streams, log.Named("aggregator"),
		aggregator.WithPauseAfterFailures(cfg.Automation.PauseAfterFailures))
	disp := dispatcher.New(reg.Workers, cfg.Schedule.WorkerTimeout, log.Named("dispatcher"))
	met := metrics.New()

	sched, err := scheduler.NewScheduler(scheduler.Options{
		Cadence:    cadence,
		Duration:   time.Duration(*hours) * time.Hour,
		Bounded:    bounded,
		ReportPath: cfg.Report.Path,
		Targets: model.Targets{
			Daily:   cfg.Targets.Daily,
			Monthly: cfg.Targets.Monthly,
			Yearly:  cfg.Targets.Yearly,
		},
		SnapshotCron: cfg.Schedule.SnapshotCron,
	}, agg, disp, rec, met, log.Named("scheduler"))
	if err != nil {
		log.Error("init scheduler", zap.Error(err))
		return 1
	}

	if *reportOnly {
		err := sched.Shutdown()
		fmt.Println(reporter.FormatSummary(sched.Report()))
		return exitCode(err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			log.Info("shutdown signal received, stopping...", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Monitor.ListenAddr != "" {
		mon := monitor.New(cfg.Monitor.ListenAddr, sched, history, met.Registry, log.Named("monitor"))
		if err := mon.Start(ctx); err != nil {
			log.Warn("monitor disabled", zap.Error(err))
		}
	}

	log.Info("WealthSentinel is running. Press Ctrl+C to stop.",
		zap.String("cadence", cfg.Schedule.Cadence), zap.Bool("bounded", bounded), zap.Int("duration_hours", *hours))

	err = sched.Run(ctx)
	fmt.Println(reporter.FormatSummary(sched.Report()))
	log.Info("WealthSentinel stopped")
	return exitCode(err)
}

// exitCode maps the final export outcome to the process status.
func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
