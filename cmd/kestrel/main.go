// Kestrel - Risk scoring for conversational agent interaction logs.
// Copyright (c) 2025 opensource.agents
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/opensource-agents/kestrel/internal/alert"
	"github.com/opensource-agents/kestrel/internal/batch"
	"github.com/opensource-agents/kestrel/internal/bus"
	"github.com/opensource-agents/kestrel/internal/config"
	"github.com/opensource-agents/kestrel/internal/domain"
	"github.com/opensource-agents/kestrel/internal/report"
	"github.com/opensource-agents/kestrel/internal/scorer"
	"github.com/opensource-agents/kestrel/internal/stats"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Error-class exit codes. Single-file mode exits with the risk level
// ordinal (0-3); batch mode exits 1 when critical incidents exist.
const (
	exitFileNotFound = 4
	exitBadJSON      = 5
	exitValidation   = 6
	exitUnexpected   = 99
)

type options struct {
	configPath string
	batchMode  bool
	jsonOut    string
	csvOut     string
	htmlOut    string
	sqliteOut  string
	dashboard  bool
	showStats  bool
	workers    int
	verbose    bool
}

func main() {
	_ = godotenv.Load()

	opts := &options{}
	exitCode := 0

	root := &cobra.Command{
		Use:   "kestrel [input]",
		Short: "Risk scoring for conversational agent interaction logs",
		Long: `Kestrel analyzes agent interaction logs for risky statements
(unauthorized price quotes, unauthorized legal claims), scores each
interaction, aggregates per-agent statistics and renders reports plus a
supervisor dashboard.`,
		Example: `  kestrel sample_call_log.json
  kestrel --batch ./logs/
  kestrel --batch ./logs/ --html report.html --csv report.csv
  kestrel --batch ./logs/ --dashboard --stats`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			input := "sample_call_log.json"
			if len(args) > 0 {
				input = args[0]
			}
			exitCode = run(input, opts)
		},
	}

	root.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML configuration file")
	root.Flags().BoolVarP(&opts.batchMode, "batch", "b", false, "batch mode: process all matching files in a directory")
	root.Flags().StringVarP(&opts.jsonOut, "output", "o", "", "export results as JSON to this file")
	root.Flags().StringVar(&opts.csvOut, "csv", "", "export results as CSV to this file")
	root.Flags().StringVar(&opts.htmlOut, "html", "", "export an HTML report to this file")
	root.Flags().StringVar(&opts.sqliteOut, "sqlite", "", "export results and statistics to this SQLite file")
	root.Flags().BoolVar(&opts.dashboard, "dashboard", false, "generate the supervisor dashboard")
	root.Flags().BoolVar(&opts.showStats, "stats", false, "print per-agent statistics")
	root.Flags().IntVar(&opts.workers, "workers", 1, "concurrent scoring workers in batch mode")
	root.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose (debug) logging")

	if err := root.Execute(); err != nil {
		os.Exit(exitUnexpected)
	}
	os.Exit(exitCode)
}

func run(input string, opts *options) int {
	logLevel := slog.LevelInfo
	if opts.verbose || os.Getenv("KESTREL_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting kestrel",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	cfg := domain.DefaultConfig()
	if opts.configPath != "" {
		cfg = config.Load(opts.configPath)
	}

	sc, err := scorer.New(cfg)
	if err != nil {
		slog.Error("failed to initialize scorer", "error", err)
		return exitUnexpected
	}

	ctx := context.Background()

	eventBus := bus.NewChannelBus(1000)
	defer eventBus.Close()

	// Alerts flow over the bus: the system publishes, the notifier
	// consumes and streams notices to stderr as they happen.
	notifier, err := alert.NewNotifier(ctx, eventBus, os.Stderr)
	if err != nil {
		slog.Error("failed to start alert notifier", "error", err)
		return exitUnexpected
	}
	defer notifier.Close()

	aggregator := stats.NewAggregator()
	alerts := alert.NewSystem(domain.LevelHigh, eventBus)
	runner := batch.NewRunner(sc, aggregator, alerts, eventBus, batch.Config{
		Workers: opts.workers,
	})

	info, statErr := os.Stat(input)
	if opts.batchMode || (statErr == nil && info.IsDir()) {
		return runBatch(ctx, runner, aggregator, alerts, input, opts)
	}
	return runSingle(ctx, runner, aggregator, input, opts)
}

func runSingle(ctx context.Context, runner *batch.Runner, aggregator *stats.Aggregator, input string, opts *options) int {
	result, err := runner.ScoreFile(ctx, input)
	if err != nil {
		slog.Error("scoring failed", "path", input, "error", err)
		return classifyError(err)
	}

	printJSON(result)

	if opts.showStats {
		if agent, ok := aggregator.Agent(result.AgentID); ok {
			printJSON(agent)
		}
	}

	// Risk level maps directly to the exit code (LOW=0 .. CRITICAL=3)
	return int(result.RiskLevel)
}

func runBatch(ctx context.Context, runner *batch.Runner, aggregator *stats.Aggregator, alerts *alert.System, input string, opts *options) int {
	results, err := runner.ScoreDirectory(ctx, input)
	if err != nil {
		slog.Error("batch scoring failed", "dir", input, "error", err)
		return classifyError(err)
	}

	summary := batch.Summarize(results)
	printJSON(summary)

	if code := writeReports(results, summary, aggregator, input, opts); code != 0 {
		return code
	}

	if opts.showStats {
		for _, agent := range aggregator.Snapshot() {
			printJSON(agent)
		}
	}

	if count := len(alerts.Alerts()); count > 0 {
		fmt.Fprintf(os.Stderr, "%d alerts raised\n", count)
	}

	if summary.CriticalCount > 0 {
		return 1
	}
	return 0
}

func writeReports(results []*domain.ScoreResult, summary *batch.Summary, aggregator *stats.Aggregator, input string, opts *options) int {
	if opts.jsonOut != "" {
		if err := report.WriteJSON(results, opts.jsonOut); err != nil {
			slog.Error("json export failed", "error", err)
			return exitUnexpected
		}
	}
	if opts.csvOut != "" {
		if err := report.WriteCSV(results, opts.csvOut); err != nil {
			slog.Error("csv export failed", "error", err)
			return exitUnexpected
		}
	}
	if opts.htmlOut != "" {
		if err := report.WriteHTML(results, summary, opts.htmlOut); err != nil {
			slog.Error("html export failed", "error", err)
			return exitUnexpected
		}
	}
	if opts.sqliteOut != "" {
		if err := report.WriteSQLite(results, aggregator.Snapshot(), opts.sqliteOut); err != nil {
			slog.Error("sqlite export failed", "error", err)
			return exitUnexpected
		}
	}
	if opts.dashboard {
		dashboard := report.GenerateDashboard(results, aggregator.Snapshot())
		path := filepath.Join(input, "supervisor_dashboard_live.json")
		if err := report.SaveDashboard(dashboard, path); err != nil {
			slog.Error("dashboard export failed", "error", err)
			return exitUnexpected
		}
	}
	return 0
}

// classifyError maps a scoring failure to its exit code class.
func classifyError(err error) int {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return exitFileNotFound
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return exitBadJSON
	case domain.IsValidationError(err):
		return exitValidation
	default:
		return exitUnexpected
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("failed to encode output", "error", err)
		return
	}
	fmt.Println(string(data))
}
