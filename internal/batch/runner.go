// Package batch drives the scoring pipeline over files and directories and
// folds the results into a run summary.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/opensource-agents/kestrel/internal/alert"
	"github.com/opensource-agents/kestrel/internal/domain"
	"github.com/opensource-agents/kestrel/internal/scorer"
	"github.com/opensource-agents/kestrel/internal/stats"
)

var tracer = otel.Tracer("kestrel-batch")

// Config holds runner settings.
type Config struct {
	// Workers is the number of concurrent scoring workers for directory
	// runs. Values below 2 select sequential processing.
	Workers int

	// Pattern is the file glob for directory runs (default "*.json").
	Pattern string
}

// Runner iterates log collections through the scorer, funnels results into
// the aggregator and alert system, and publishes scored results on the bus.
type Runner struct {
	scorer *scorer.Scorer
	agg    *stats.Aggregator
	alerts *alert.System
	bus    domain.EventBus
	cfg    Config
}

// NewRunner creates a batch runner. Aggregator, alert system and bus are
// each optional.
func NewRunner(sc *scorer.Scorer, agg *stats.Aggregator, alerts *alert.System, eventBus domain.EventBus, cfg Config) *Runner {
	if cfg.Pattern == "" {
		cfg.Pattern = "*.json"
	}
	return &Runner{
		scorer: sc,
		agg:    agg,
		alerts: alerts,
		bus:    eventBus,
		cfg:    cfg,
	}
}

// ScoreLog scores one already-decoded log record and applies the side
// effects (aggregation, result publication, alert check).
func (r *Runner) ScoreLog(ctx context.Context, log any) (*domain.ScoreResult, error) {
	res, err := r.scorer.Score(log)
	if err != nil {
		return nil, err
	}
	r.observe(ctx, res)
	return res, nil
}

// ScoreFile reads, decodes and scores a single log file.
func (r *Runner) ScoreFile(ctx context.Context, path string) (*domain.ScoreResult, error) {
	ctx, span := tracer.Start(ctx, "batch.score_file",
		trace.WithAttributes(attribute.String("log.file", path)),
	)
	defer span.End()

	slog.Info("processing log file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	var log any
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parse log file %s: %w", path, err)
	}

	return r.ScoreLog(ctx, log)
}

// ScoreDirectory scores every matching file in a directory, in sorted path
// order. Per-item failures are logged and excluded; the batch always
// completes. With Workers > 1, files are scored concurrently and results
// funnel into the single aggregator.
func (r *Runner) ScoreDirectory(ctx context.Context, dir string) ([]*domain.ScoreResult, error) {
	ctx, span := tracer.Start(ctx, "batch.score_directory",
		trace.WithAttributes(
			attribute.String("log.dir", dir),
			attribute.String("log.pattern", r.cfg.Pattern),
		),
	)
	defer span.End()

	paths, err := filepath.Glob(filepath.Join(dir, r.cfg.Pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}
	sort.Strings(paths)

	var results []*domain.ScoreResult
	if r.cfg.Workers > 1 {
		results = r.scoreConcurrent(ctx, paths)
	} else {
		results = r.scoreSequential(ctx, paths)
	}

	span.SetAttributes(
		attribute.Int("log.files", len(paths)),
		attribute.Int("log.scored", len(results)),
	)
	slog.Info("directory processed",
		"dir", dir,
		"files", len(paths),
		"scored", len(results),
		"failed", len(paths)-len(results),
	)

	return results, nil
}

func (r *Runner) scoreSequential(ctx context.Context, paths []string) []*domain.ScoreResult {
	results := make([]*domain.ScoreResult, 0, len(paths))
	for _, path := range paths {
		res, err := r.ScoreFile(ctx, path)
		if err != nil {
			slog.Error("failed to score log file", "path", path, "error", err)
			continue
		}
		results = append(results, res)
	}
	return results
}

// scoreConcurrent fans the files out over a bounded worker pool. Results
// keep file order; side effects are already synchronized downstream.
func (r *Runner) scoreConcurrent(ctx context.Context, paths []string) []*domain.ScoreResult {
	scored := make([]*domain.ScoreResult, len(paths))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.cfg.Workers)

	for i, path := range paths {
		wg.Add(1)
		go func(idx int, p string) {
			defer wg.Done()

			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			res, err := r.ScoreFile(ctx, p)
			if err != nil {
				slog.Error("failed to score log file", "path", p, "error", err)
				return
			}
			scored[idx] = res
		}(i, path)
	}

	wg.Wait()

	results := make([]*domain.ScoreResult, 0, len(paths))
	for _, res := range scored {
		if res != nil {
			results = append(results, res)
		}
	}
	return results
}

func (r *Runner) observe(ctx context.Context, res *domain.ScoreResult) {
	if r.agg != nil {
		r.agg.Observe(res)
	}
	if r.bus != nil {
		payload, _ := json.Marshal(res)
		if err := r.bus.Publish(ctx, domain.TopicResultScored, payload); err != nil {
			slog.Error("failed to publish scored result",
				"agent_id", res.AgentID,
				"error", err,
			)
		}
	}
	if r.alerts != nil {
		r.alerts.Check(ctx, res)
	}
}

// Incident is one critical result in a run summary.
type Incident struct {
	AgentID    string           `json:"agent_id"`
	RiskLevel  domain.RiskLevel `json:"risk_level"`
	Violations []string         `json:"violations"`
}

// Summary is the fold over a batch of scored results.
type Summary struct {
	Total             int            `json:"total"`
	AverageRisk       float64        `json:"average_risk"`
	RiskDistribution  map[string]int `json:"risk_distribution"`
	CriticalCount     int            `json:"critical_count"`
	CriticalIncidents []Incident     `json:"critical_incidents"`
	AgentsAnalyzed    int            `json:"agents_analyzed"`
}

// Summarize folds scored results into a summary. An empty batch produces
// the zero summary rather than dividing by zero.
func Summarize(results []*domain.ScoreResult) *Summary {
	summary := &Summary{
		RiskDistribution:  make(map[string]int),
		CriticalIncidents: []Incident{},
	}
	if len(results) == 0 {
		return summary
	}

	totalRisk := 0
	agents := make(map[string]struct{})

	for _, res := range results {
		summary.RiskDistribution[res.RiskLevel.String()]++
		totalRisk += res.Risk
		agents[res.AgentID] = struct{}{}

		if res.IsCritical() {
			summary.CriticalIncidents = append(summary.CriticalIncidents, Incident{
				AgentID:    res.AgentID,
				RiskLevel:  res.RiskLevel,
				Violations: res.Violations,
			})
		}
	}

	summary.Total = len(results)
	summary.AverageRisk = round2(float64(totalRisk) / float64(len(results)))
	summary.CriticalCount = len(summary.CriticalIncidents)
	summary.AgentsAnalyzed = len(agents)

	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
