// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/AleutianAI/AleutianFanout/services/fanout/telemetry"

// -----------------------------------------------------------------------------
// Data
// -----------------------------------------------------------------------------

// StrategyData describes one completed (or failed) strategy run.
type StrategyData struct {
	// RunID groups the strategies launched together.
	RunID string

	// Name is the strategy name.
	Name string

	// Enumeration and Scheduling describe the strategy's grid cell.
	Enumeration string
	Scheduling  string

	// Items is the workload size N.
	Items int

	// Duration is the measured wall-clock time. Zero when Err is set.
	Duration time.Duration

	// Err is the failure message, empty on success.
	Err string

	// Timestamp is when the run started.
	Timestamp time.Time
}

// ComparisonData summarizes a full harness run.
type ComparisonData struct {
	RunID      string
	Fastest    string
	Slowest    string
	Speedup    float64
	Strategies []string
	Failed     int
	Timestamp  time.Time
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// OTelConfig configures the OpenTelemetry sink.
//
// Description:
//
//	OTelConfig specifies service name, instrumentation scope, and optional
//	providers for tracing and metrics.
//
// Thread Safety: Immutable after creation; safe for concurrent read access.
type OTelConfig struct {
	// ServiceName is the service name for telemetry.
	// Required.
	ServiceName string

	// ServiceVersion is the service version for telemetry.
	ServiceVersion string

	// TracerProvider is the tracer provider to use.
	// If nil, uses the global tracer provider.
	TracerProvider trace.TracerProvider

	// MeterProvider is the meter provider to use.
	// If nil, uses the global meter provider.
	MeterProvider metric.MeterProvider

	// TraceEnabled enables trace span creation.
	TraceEnabled bool

	// MetricsEnabled enables metric recording.
	MetricsEnabled bool
}

// DefaultOTelConfig returns a configuration with tracing and metrics enabled
// against the global providers.
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    "fanbench",
		ServiceVersion: "1.0.0",
		TraceEnabled:   true,
		MetricsEnabled: true,
	}
}

// Validate checks that the configuration is valid.
func (c *OTelConfig) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service name is required")
	}
	return nil
}

// -----------------------------------------------------------------------------
// OpenTelemetry Sink
// -----------------------------------------------------------------------------

// OTelSink exports strategy telemetry via OpenTelemetry.
//
// Description:
//
//	OTelSink creates one span per strategy run and records duration,
//	record and failure instruments. It does not own its providers.
//
// Thread Safety: Safe for concurrent use.
type OTelSink struct {
	config *OTelConfig
	tracer trace.Tracer
	meter  metric.Meter

	strategyDuration  metric.Float64Histogram
	strategyRecords   metric.Int64Counter
	strategyFailures  metric.Int64Counter
	comparisonSpeedup metric.Float64Gauge

	mu     sync.RWMutex
	closed bool
}

// NewOTelSink creates a new OpenTelemetry telemetry sink.
//
// Inputs:
//   - config: OpenTelemetry configuration. Must not be nil.
//
// Outputs:
//   - *OTelSink: The created sink. Never nil on success.
//   - error: ErrInvalidOTelConfig or ErrOTelInitFailed (joined with cause).
//
// Limitations:
//   - Without configured providers, telemetry is discarded (no-op).
func NewOTelSink(config *OTelConfig) (*OTelSink, error) {
	if config == nil {
		return nil, ErrInvalidOTelConfig
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidOTelConfig, err)
	}

	cfg := *config

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	sink := &OTelSink{
		config: &cfg,
		tracer: tp.Tracer(instrumentationName, trace.WithInstrumentationVersion(cfg.ServiceVersion)),
		meter:  mp.Meter(instrumentationName, metric.WithInstrumentationVersion(cfg.ServiceVersion)),
	}

	if cfg.MetricsEnabled {
		if err := sink.initializeMetrics(); err != nil {
			return nil, errors.Join(ErrOTelInitFailed, err)
		}
	}

	return sink, nil
}

// initializeMetrics creates all metric instruments.
func (s *OTelSink) initializeMetrics() error {
	var err error

	s.strategyDuration, err = s.meter.Float64Histogram(
		"strategy.duration",
		metric.WithDescription("Wall-clock duration of one strategy run in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	s.strategyRecords, err = s.meter.Int64Counter(
		"strategy.records",
		metric.WithDescription("Records appended by successful strategy runs"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return err
	}

	s.strategyFailures, err = s.meter.Int64Counter(
		"strategy.failures",
		metric.WithDescription("Strategy runs that failed"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return err
	}

	s.comparisonSpeedup, err = s.meter.Float64Gauge(
		"comparison.speedup",
		metric.WithDescription("Slowest over fastest mean duration"),
		metric.WithUnit("{ratio}"),
	)
	return err
}

func (s *OTelSink) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// RecordStrategy records telemetry for one strategy run.
//
// Description:
//
//	Creates a "strategy.run" span stamped with the run's start time and
//	records the duration histogram and record/failure counters.
//
// Inputs:
//   - ctx: Context for tracing. Must not be nil.
//   - data: Strategy data to record. Must not be nil.
//
// Outputs:
//   - error: Non-nil if sink is closed or inputs are invalid.
//
// Thread Safety: Safe for concurrent use.
func (s *OTelSink) RecordStrategy(ctx context.Context, data *StrategyData) error {
	if ctx == nil {
		return ErrNilContext
	}
	if data == nil {
		return ErrNilData
	}
	if s.isClosed() {
		return ErrSinkClosed
	}

	name := data.Name
	if name == "" {
		name = "unknown"
	}

	attrs := []attribute.KeyValue{
		attribute.String("strategy.name", name),
		attribute.String("strategy.enumeration", data.Enumeration),
		attribute.String("strategy.scheduling", data.Scheduling),
		attribute.Int("strategy.items", data.Items),
	}

	if s.config.TraceEnabled {
		start := data.Timestamp
		if start.IsZero() {
			start = time.Now()
		}
		_, span := s.tracer.Start(ctx, "strategy.run",
			trace.WithAttributes(attrs...),
			trace.WithAttributes(attribute.String("run.id", data.RunID)),
			trace.WithTimestamp(start),
		)
		if data.Err != "" {
			span.SetStatus(codes.Error, data.Err)
		} else {
			span.SetAttributes(attribute.Int64("strategy.elapsed_ms", data.Duration.Milliseconds()))
		}
		span.End(trace.WithTimestamp(start.Add(data.Duration)))
	}

	if s.config.MetricsEnabled {
		attrSet := metric.WithAttributes(attrs...)
		if data.Err != "" {
			s.strategyFailures.Add(ctx, 1, attrSet)
		} else {
			s.strategyDuration.Record(ctx, data.Duration.Seconds(), attrSet)
			s.strategyRecords.Add(ctx, int64(data.Items), attrSet)
		}
	}

	return nil
}

// RecordComparison records the summary of a harness run.
//
// Thread Safety: Safe for concurrent use.
func (s *OTelSink) RecordComparison(ctx context.Context, data *ComparisonData) error {
	if ctx == nil {
		return ErrNilContext
	}
	if data == nil {
		return ErrNilData
	}
	if s.isClosed() {
		return ErrSinkClosed
	}

	fastest := data.Fastest
	if fastest == "" {
		fastest = "none"
	}

	if s.config.TraceEnabled {
		_, span := s.tracer.Start(ctx, "comparison.record",
			trace.WithAttributes(
				attribute.String("run.id", data.RunID),
				attribute.String("comparison.fastest", fastest),
				attribute.String("comparison.slowest", data.Slowest),
				attribute.Float64("comparison.speedup", data.Speedup),
				attribute.StringSlice("comparison.strategies", data.Strategies),
				attribute.Int("comparison.failed", data.Failed),
			),
		)
		if data.Failed > 0 {
			span.SetStatus(codes.Error, "one or more strategies failed")
		}
		span.End()
	}

	if s.config.MetricsEnabled && data.Speedup > 0 {
		s.comparisonSpeedup.Record(ctx, data.Speedup,
			metric.WithAttributes(attribute.String("fastest", fastest)))
	}

	return nil
}

// StartRunSpan creates the parent span covering a whole harness run.
//
// The returned span must be ended by the caller.
func (s *OTelSink) StartRunSpan(ctx context.Context, runID string, items int) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.tracer.Start(ctx, "fanbench.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.items", items),
		),
	)
}

// Close marks the sink as closed. Providers are not shut down.
//
// Thread Safety: Safe for concurrent use. Idempotent.
func (s *OTelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
