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
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the native Prometheus collectors for strategy runs.
//
// Thread Safety: Safe for concurrent use.
type Metrics struct {
	// runsTotal counts strategy runs by strategy and result
	runsTotal *prometheus.CounterVec

	// runDuration tracks strategy wall-clock time
	runDuration *prometheus.HistogramVec

	// recordsTotal counts records appended by successful runs
	recordsTotal *prometheus.CounterVec
}

// NewMetrics registers the fanbench collectors with reg.
//
// Inputs:
//   - reg: Registerer to register with. nil uses prometheus.DefaultRegisterer.
//
// Outputs:
//   - *Metrics: Ready for use. Never nil.
//
// Limitations:
//   - Panics if the collectors are already registered with reg, like
//     promauto does.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fanbench_strategy_runs_total",
			Help: "Total strategy runs by strategy and result",
		}, []string{"strategy", "result"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fanbench_strategy_duration_seconds",
			Help:    "Strategy run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~33s
		}, []string{"strategy"}),

		recordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fanbench_strategy_records_total",
			Help: "Records appended by successful strategy runs",
		}, []string{"strategy"}),
	}
}

// Observe records one strategy run.
//
// Thread Safety: Safe for concurrent use.
func (m *Metrics) Observe(data StrategyData) {
	if data.Err != "" {
		m.runsTotal.WithLabelValues(data.Name, ResultFailure).Inc()
		return
	}
	m.runsTotal.WithLabelValues(data.Name, ResultSuccess).Inc()
	m.runDuration.WithLabelValues(data.Name).Observe(data.Duration.Seconds())
	m.recordsTotal.WithLabelValues(data.Name).Add(float64(data.Items))
}

// RunsCounter exposes the runs counter, labeled by strategy and result.
func (m *Metrics) RunsCounter() *prometheus.CounterVec {
	return m.runsTotal
}

// RecordsCounter exposes the records counter, labeled by strategy.
func (m *Metrics) RecordsCounter() *prometheus.CounterVec {
	return m.recordsTotal
}

// WriteTextfile writes every metric gathered by g to path in the Prometheus
// text exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
