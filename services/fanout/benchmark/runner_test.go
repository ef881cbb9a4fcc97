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
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AleutianAI/AleutianFanout/pkg/logging"
	"github.com/AleutianAI/AleutianFanout/services/fanout"
	"github.com/AleutianAI/AleutianFanout/services/fanout/telemetry"
)

func newTestRunner(t *testing.T, items int, opts ...RunnerOption) *Runner {
	t.Helper()

	config := DefaultConfig()
	config.Items = items
	r, err := NewRunner(config, opts...)
	require.NoError(t, err)
	return r
}

func TestNewRunner(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		r, err := NewRunner(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultItems, r.Config().Items)
	})

	t.Run("invalid config", func(t *testing.T) {
		config := DefaultConfig()
		config.Rounds = 0
		_, err := NewRunner(config)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("config is copied", func(t *testing.T) {
		config := DefaultConfig()
		r, err := NewRunner(config)
		require.NoError(t, err)
		config.Items = 5
		assert.Equal(t, DefaultItems, r.Config().Items)
	})
}

func TestRunner_Run(t *testing.T) {
	r := newTestRunner(t, 5000)

	for _, s := range fanout.DefaultStrategies() {
		t.Run(s.Name, func(t *testing.T) {
			res := r.Run(context.Background(), s)

			require.NoError(t, res.Err)
			assert.True(t, res.OK())
			assert.Equal(t, s.Name, res.Strategy)
			assert.Equal(t, s.Enumeration.String(), res.Enumeration)
			assert.Equal(t, s.Scheduling.String(), res.Scheduling)
			assert.Equal(t, 5000, res.Items)
			assert.Len(t, res.Samples, 1)
			assert.Equal(t, res.Latency.Mean, res.Elapsed)
			assert.False(t, res.Started.IsZero())
		})
	}
}

func TestRunner_RunZeroItems(t *testing.T) {
	r := newTestRunner(t, 0)
	res := r.Run(context.Background(), fanout.ParallelFor)
	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.Items)
}

func TestRunner_RoundsAndWarmup(t *testing.T) {
	var calls atomic.Int64
	config := DefaultConfig()
	config.Items = 100
	config.Rounds = 4
	config.Warmup = 2
	config.RemoveOutliers = true

	r, err := NewRunner(config, WithBody(func(index int, sink *fanout.ResultSink) {
		calls.Add(1)
		sink.Append(fanout.NewRecord(index))
	}))
	require.NoError(t, err)

	res := r.Run(context.Background(), fanout.ParallelForEach)
	require.NoError(t, res.Err)
	assert.Len(t, res.Samples, 4)
	assert.Equal(t, int64(6*100), calls.Load())
}

func TestRunner_FaultBecomesError(t *testing.T) {
	r := newTestRunner(t, 200, WithBody(func(index int, sink *fanout.ResultSink) {
		if index == 42 {
			panic("bad unit")
		}
		sink.Append(fanout.NewRecord(index))
	}))

	res := r.Run(context.Background(), fanout.ForLoopParallel)
	require.Error(t, res.Err)
	assert.False(t, res.OK())
	assert.True(t, errors.Is(res.Err, fanout.ErrWorkFault))
	assert.Contains(t, res.Err.Error(), "round 1")
}

func TestRunner_IncompleteSink(t *testing.T) {
	r := newTestRunner(t, 50, WithBody(func(index int, sink *fanout.ResultSink) {
		if index%2 == 0 {
			sink.Append(fanout.NewRecord(index))
		}
	}))

	res := r.Run(context.Background(), fanout.ParallelFor)
	assert.ErrorIs(t, res.Err, ErrIncomplete)
}

func TestRunner_UnknownStrategy(t *testing.T) {
	r := newTestRunner(t, 10)
	res := r.Run(context.Background(), fanout.Strategy{Name: "bogus", Enumeration: fanout.Enumeration(9)})
	assert.ErrorIs(t, res.Err, fanout.ErrUnknownStrategy)
}

func TestRunner_RunAll(t *testing.T) {
	for _, isolated := range []bool{false, true} {
		name := "concurrent"
		if isolated {
			name = "isolated"
		}
		t.Run(name, func(t *testing.T) {
			config := DefaultConfig()
			config.Items = 10000
			config.Isolated = isolated
			r, err := NewRunner(config)
			require.NoError(t, err)

			strategies := fanout.DefaultStrategies()
			report := r.RunAll(context.Background(), strategies)

			require.NotNil(t, report)
			assert.NotEmpty(t, report.RunID)
			assert.Equal(t, 10000, report.Items)
			assert.Equal(t, isolated, report.Isolated)
			assert.Equal(t, 0, report.Failed())
			require.Len(t, report.Results, len(strategies))
			for i, s := range strategies {
				assert.Equal(t, s.Name, report.Results[i].Strategy)
			}
		})
	}
}

func TestRunner_RunAllEmpty(t *testing.T) {
	r := newTestRunner(t, 10)
	report := r.RunAll(context.Background(), nil)
	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.Failed())
}

func TestRunner_RunAllFaultIsolated(t *testing.T) {
	// Every strategy faults on the last index. Each still yields a result.
	r := newTestRunner(t, 100, WithBody(func(index int, sink *fanout.ResultSink) {
		if index == 99 {
			panic("last")
		}
		sink.Append(fanout.NewRecord(index))
	}))

	report := r.RunAll(context.Background(), fanout.DefaultStrategies())
	require.Len(t, report.Results, 6)
	assert.Equal(t, 6, report.Failed())
}

func TestRunner_Observers(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	otelConfig := telemetry.DefaultOTelConfig()
	otelConfig.TracerProvider = tp
	otelConfig.MeterProvider = mp
	sink, err := telemetry.NewOTelSink(otelConfig)
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := logging.New(logging.Config{Output: &logs, Level: logging.LevelDebug})

	r := newTestRunner(t, 1000,
		WithLogger(logger),
		WithMetrics(metrics),
		WithOTelSink(sink),
	)

	strategies := []fanout.Strategy{fanout.ParallelFor, fanout.ForLoopParallel}
	report := r.RunAll(context.Background(), strategies)
	require.Equal(t, 0, report.Failed())

	// Prometheus
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsCounter().WithLabelValues("ParallelFor", telemetry.ResultSuccess)))
	assert.Equal(t, 1000.0, testutil.ToFloat64(metrics.RecordsCounter().WithLabelValues("ForLoopParallel")))

	// Tracing
	spans := recorder.Ended()
	byName := map[string]int{}
	var runSpan sdktrace.ReadOnlySpan
	for _, s := range spans {
		byName[s.Name()]++
		if s.Name() == "fanbench.run" {
			runSpan = s
		}
	}
	assert.Equal(t, 2, byName["strategy.run"])
	assert.Equal(t, 1, byName["comparison.record"])
	require.NotNil(t, runSpan)
	assert.Contains(t, runSpan.Attributes(), attribute.String("run.id", report.RunID))
	assert.NotEqual(t, codes.Error, runSpan.Status().Code)

	for _, s := range spans {
		if s.Name() == "strategy.run" {
			assert.Equal(t, runSpan.SpanContext().SpanID(), s.Parent().SpanID())
		}
	}

	// Logging
	out := logs.String()
	assert.Contains(t, out, "run starting")
	assert.Contains(t, out, "strategy finished")
	assert.Contains(t, out, "strategy=ParallelFor")
	assert.Contains(t, out, "run complete")
}

func TestRunner_FailureObserved(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	var logs bytes.Buffer
	r := newTestRunner(t, 10,
		WithMetrics(metrics),
		WithLogger(logging.New(logging.Config{Output: &logs})),
		WithBody(func(int, *fanout.ResultSink) { panic("always") }),
	)

	res := r.Run(context.Background(), fanout.ParallelForEach)
	require.Error(t, res.Err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsCounter().WithLabelValues("ParallelForEach", telemetry.ResultFailure)))
	assert.Contains(t, logs.String(), "strategy failed")
}

func BenchmarkRunner_RunAll(b *testing.B) {
	config := DefaultConfig()
	config.Items = 50000
	r, err := NewRunner(config)
	if err != nil {
		b.Fatal(err)
	}
	strategies := fanout.DefaultStrategies()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RunAll(context.Background(), strategies)
	}
}
