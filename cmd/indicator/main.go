package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/indicator-engine/cmd/common"
	"github.com/ducminhle1904/indicator-engine/internal/logger"
	"github.com/ducminhle1904/indicator-engine/internal/monitoring"
	"github.com/ducminhle1904/indicator-engine/pkg/config"
	datamanager "github.com/ducminhle1904/indicator-engine/pkg/data"
	"github.com/ducminhle1904/indicator-engine/pkg/orchestrator"
	"github.com/ducminhle1904/indicator-engine/pkg/reporting"
)

const AppName = "indicator"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	flags := NewIndicatorFlags(fs)
	fs.Usage = func() { newUsage(flags).PrintUsage(fs.Output()) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if *flags.Version {
		common.PrintVersion(stdout, AppName)
		return nil
	}
	if *flags.Help {
		newUsage(flags).PrintUsage(stdout)
		return nil
	}
	if err := ValidateIndicatorFlags(flags); err != nil {
		return err
	}

	cfg, err := loadConfiguration(flags)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log, err := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		LogDir:  *flags.LogDir,
		Symbol:  cfg.Symbol,
		Console: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	var selectedPeriod time.Duration
	if p := strings.TrimSpace(*flags.Period); p != "" {
		d, ok := datamanager.ParseTrailingPeriod(p)
		if !ok {
			return fmt.Errorf("invalid period format: %s (use 7d, 30d, 180d, 365d)", p)
		}
		selectedPeriod = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []orchestrator.Option{orchestrator.WithLogger(log)}
	if cfg.MetricsAddr != "" {
		metrics := monitoring.NewMetrics()
		health := monitoring.NewHealthChecker()
		opts = append(opts, orchestrator.WithMetrics(metrics), orchestrator.WithHealth(health))
		srv := startMetricsServer(cfg.MetricsAddr, metrics, health, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}
	orch := orchestrator.NewOrchestrator(opts...)
	reporter := reporting.NewDefaultReporter(!*flags.NoColors)

	printConfigSummary(stdout, cfg)

	if *flags.AllIntervals {
		wf := orchestrator.NewIntervalAnalysisWorkflow(orch, cfg, *flags.DataRoot, *flags.Exchange, selectedPeriod)
		out, err := wf.Execute(ctx)
		if err != nil {
			return err
		}
		return reportIntervals(stdout, out.(*orchestrator.IntervalAnalysisResult), reporter, cfg, *flags.ConsoleOnly, log)
	}

	if strings.TrimSpace(cfg.DataFile) == "" {
		dataFile, err := datamanager.NewDataManager().FindDataFile(*flags.DataRoot, *flags.Exchange, cfg.Symbol, cfg.Interval)
		if err != nil {
			return fmt.Errorf("%w\n💡 Expected data structure: %s/%s/{category}/%s/{interval}/candles.csv or an explicit -data flag",
				err, *flags.DataRoot, *flags.Exchange, strings.ToUpper(cfg.Symbol))
		}
		cfg.DataFile = dataFile
	}

	out, err := orchestrator.NewSingleRunWorkflow(orch, cfg, selectedPeriod).Execute(ctx)
	if err != nil {
		return err
	}
	res := out.(*orchestrator.RunResult)

	reporter.OutputSummary(stdout, res.Summary)
	reporter.OutputFrame(stdout, res.Frame, *flags.Tail)

	if *flags.ConsoleOnly {
		return nil
	}
	path := cfg.OutputFile
	if path == "" {
		path = reporter.GetDefaultOutputPath(cfg.Symbol, cfg.Interval)
	}
	return writeResult(stdout, reporter, res, path, log)
}

func loadConfiguration(flags *IndicatorFlags) (*config.IndicatorConfig, error) {
	cm, err := config.NewConfigManager().WithEnvFile(*flags.EnvFile)
	if err != nil {
		return nil, err
	}

	configFile := *flags.ConfigFile
	if configFile != "" && !strings.ContainsAny(configFile, "/\\") && filepath.Ext(configFile) == "" {
		configFile = filepath.Join("configs", configFile+".json")
	}

	cfg, err := cm.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	ApplyOverrides(flags, cfg)

	if err := cm.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func startMetricsServer(addr string, metrics *monitoring.Metrics, health *monitoring.HealthChecker, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler(metrics))
	mux.Handle("/healthz", health)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}

func printConfigSummary(w io.Writer, cfg *config.IndicatorConfig) {
	upper, lower := cfg.Multipliers()
	fmt.Fprintf(w, "📊 Indicator Configuration\n")
	fmt.Fprintf(w, "   Symbol: %s\n", cfg.Symbol)
	fmt.Fprintf(w, "   Interval: %s\n", cfg.Interval)
	fmt.Fprintf(w, "   ATR: period=%d, gaps=%s\n", cfg.ATRPeriod, cfg.GapPolicy)
	if upper == lower {
		fmt.Fprintf(w, "   SuperTrend: multiplier=%g, seed=%s\n", upper, cfg.SeedPolicy)
	} else {
		fmt.Fprintf(w, "   SuperTrend: upper=%g, lower=%g, seed=%s\n", upper, lower, cfg.SeedPolicy)
	}
	fmt.Fprintf(w, "   Signals: entry_first=%t, overlap=%s\n\n", cfg.EntryFirst, cfg.OverlapPolicy)
}

func writeResult(w io.Writer, reporter *reporting.DefaultReporter, res *orchestrator.RunResult, path string, log *zap.Logger) error {
	if err := reporter.EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := reporter.WriteOutput(res.Frame, res.Summary, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Info("Results written", zap.String("path", path))
	fmt.Fprintf(w, "💾 Results saved to %s\n", path)
	return nil
}

func reportIntervals(w io.Writer, res *orchestrator.IntervalAnalysisResult, reporter *reporting.DefaultReporter,
	cfg *config.IndicatorConfig, consoleOnly bool, log *zap.Logger) error {

	fmt.Fprintf(w, "🔍 %s on %s: %d intervals\n\n", res.Symbol, res.Exchange, len(res.Results))
	for _, r := range res.Results {
		if r.Error != nil {
			fmt.Fprintf(w, "❌ %s: %v\n\n", r.Interval, r.Error)
			continue
		}
		reporter.OutputSummary(w, r.Result.Summary)
		if consoleOnly {
			continue
		}
		path := reporter.GetDefaultOutputPath(cfg.Symbol, r.Interval)
		if err := writeResult(w, reporter, r.Result, path, log); err != nil {
			return err
		}
	}
	return nil
}
