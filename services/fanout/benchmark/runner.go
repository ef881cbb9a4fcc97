// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package benchmark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianFanout/pkg/logging"
	"github.com/AleutianAI/AleutianFanout/services/fanout"
	"github.com/AleutianAI/AleutianFanout/services/fanout/telemetry"
)

// Runner times strategies against fresh sinks.
//
// Description:
//
//	Runner owns the benchmark configuration and the optional observers
//	(logger, Prometheus metrics, OpenTelemetry sink). Each Run creates its
//	own ResultSink per round, so concurrent runs never share state.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	config  Config
	logger  *logging.Logger
	metrics *telemetry.Metrics
	otel    *telemetry.OTelSink
	body    fanout.Body
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger. Default: logging.Nop().
func WithLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records every strategy run in m.
func WithMetrics(m *telemetry.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithOTelSink exports spans and instruments for every run through s.
func WithOTelSink(s *telemetry.OTelSink) RunnerOption {
	return func(r *Runner) {
		r.otel = s
	}
}

// WithBody replaces the per-index unit of work. Used to inject faults.
func WithBody(b fanout.Body) RunnerOption {
	return func(r *Runner) {
		r.body = b
	}
}

// NewRunner creates a Runner.
//
// Inputs:
//   - config: Benchmark configuration. nil uses DefaultConfig().
//   - opts: Optional observers and hooks.
//
// Outputs:
//   - *Runner: Ready for use.
//   - error: Wraps ErrInvalidConfig if config fails validation.
func NewRunner(config *Config, opts ...RunnerOption) (*Runner, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		config: *config,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns a copy of the runner configuration.
func (r *Runner) Config() Config {
	return r.config
}

// Run times one strategy.
//
// Description:
//
//	Executes Warmup discarded rounds then Rounds measured rounds. Every
//	round uses a fresh sink, starts the clock, calls Distribute, stops the
//	clock and checks the sink holds exactly Items records. The first failing
//	round ends the run and its error becomes StrategyResult.Err.
//
// Inputs:
//   - ctx: Parent context for tracing.
//   - s: The strategy to time.
//
// Outputs:
//   - StrategyResult: Always returned. Err is set on failure.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) Run(ctx context.Context, s fanout.Strategy) StrategyResult {
	if ctx == nil {
		ctx = context.Background()
	}

	result := StrategyResult{
		Strategy:    s.Name,
		Enumeration: s.Enumeration.String(),
		Scheduling:  s.Scheduling.String(),
		Items:       r.config.Items,
		Started:     time.Now(),
	}

	logger := r.logger.With("strategy", s.Name, "items", r.config.Items)
	logger.Debug("strategy starting",
		"enumeration", result.Enumeration,
		"scheduling", result.Scheduling,
		"rounds", r.config.Rounds,
		"warmup", r.config.Warmup,
	)

	for i := 0; i < r.config.Warmup; i++ {
		if _, err := r.runOnce(s); err != nil {
			result.Err = fmt.Errorf("warmup round %d: %w", i+1, err)
			r.finish(ctx, logger, &result)
			return result
		}
	}

	result.Samples = make([]time.Duration, 0, r.config.Rounds)
	for i := 0; i < r.config.Rounds; i++ {
		elapsed, err := r.runOnce(s)
		if err != nil {
			result.Err = fmt.Errorf("round %d: %w", i+1, err)
			r.finish(ctx, logger, &result)
			return result
		}
		result.Samples = append(result.Samples, elapsed)
		logger.Debug("round complete", "round", i+1, "elapsed_ms", elapsed.Milliseconds())
	}

	samples := result.Samples
	if r.config.RemoveOutliers {
		samples = RemoveOutliers(samples, r.config.OutlierThreshold)
	}
	stats, err := CalculateLatencyStats(samples)
	if err != nil {
		result.Err = err
	} else {
		result.Latency = stats
		result.Elapsed = stats.Mean
	}

	r.finish(ctx, logger, &result)
	return result
}

// runOnce performs a single timed round.
//
// A panic escaping Distribute itself is converted to ErrRunPanicked so the
// caller's goroutine always completes.
func (r *Runner) runOnce(s fanout.Strategy) (elapsed time.Duration, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrRunPanicked, rec)
		}
	}()

	sink := fanout.NewResultSink(r.config.Items)
	opts := fanout.Options{Workers: r.config.Workers, Body: r.body}

	start := time.Now()
	err = s.Distribute(r.config.Items, sink, opts)
	elapsed = time.Since(start)
	if err != nil {
		return 0, err
	}

	if got := sink.Len(); got != r.config.Items {
		return 0, fmt.Errorf("%w: got %d records, want %d", ErrIncomplete, got, r.config.Items)
	}
	return elapsed, nil
}

// finish logs the outcome and forwards it to metrics and tracing.
func (r *Runner) finish(ctx context.Context, logger *logging.Logger, result *StrategyResult) {
	if result.Err != nil {
		logger.Error("strategy failed", "error", result.Err.Error())
	} else {
		logger.Info("strategy finished", "elapsed_ms", result.Elapsed.Milliseconds())
	}

	data := telemetry.StrategyData{
		RunID:       runIDFromContext(ctx),
		Name:        result.Strategy,
		Enumeration: result.Enumeration,
		Scheduling:  result.Scheduling,
		Items:       result.Items,
		Duration:    result.Elapsed,
		Timestamp:   result.Started,
	}
	if result.Err != nil {
		data.Err = result.Err.Error()
		data.Duration = 0
	}

	if r.metrics != nil {
		r.metrics.Observe(data)
	}
	if r.otel != nil {
		if err := r.otel.RecordStrategy(ctx, &data); err != nil {
			logger.Warn("record strategy telemetry", "error", err.Error())
		}
	}
}

// RunAll times every strategy and joins them all.
//
// Description:
//
//	Launches each strategy in its own goroutine, all started together, and
//	waits for every one before returning. With Config.Isolated the
//	strategies run sequentially in the order given. Results keep the
//	launch order regardless of completion order.
//
// Inputs:
//   - ctx: Parent context for tracing.
//   - strategies: Strategies to run. May be empty.
//
// Outputs:
//   - *Report: Never nil. One result per strategy.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) RunAll(ctx context.Context, strategies []fanout.Strategy) *Report {
	if ctx == nil {
		ctx = context.Background()
	}

	report := &Report{
		RunID:    uuid.NewString(),
		Items:    r.config.Items,
		Rounds:   r.config.Rounds,
		Isolated: r.config.Isolated,
		Started:  time.Now(),
		Results:  make([]StrategyResult, len(strategies)),
	}
	ctx = withRunID(ctx, report.RunID)

	if r.otel != nil {
		var span trace.Span
		ctx, span = r.otel.StartRunSpan(ctx, report.RunID, report.Items)
		defer func() {
			if report.Failed() > 0 {
				span.SetStatus(codes.Error, fmt.Sprintf("%d strategies failed", report.Failed()))
			}
			span.End()
		}()
	}

	r.logger.Info("run starting",
		"run_id", report.RunID,
		"strategies", len(strategies),
		"items", report.Items,
		"isolated", report.Isolated,
	)

	if r.config.Isolated {
		for i, s := range strategies {
			report.Results[i] = r.Run(ctx, s)
		}
	} else {
		var wg sync.WaitGroup
		for i, s := range strategies {
			wg.Add(1)
			go func(i int, s fanout.Strategy) {
				defer wg.Done()
				report.Results[i] = r.Run(ctx, s)
			}(i, s)
		}
		wg.Wait()
	}

	report.Duration = time.Since(report.Started)

	if r.otel != nil {
		cmp := Compare(report)
		if err := r.otel.RecordComparison(ctx, cmp.TelemetryData(report)); err != nil {
			r.logger.Warn("record comparison telemetry", "error", err.Error())
		}
	}

	r.logger.Info("run complete",
		"run_id", report.RunID,
		"failed", report.Failed(),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report
}

// ---- Run ID propagation ----

type runIDKey struct{}

func withRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func runIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
