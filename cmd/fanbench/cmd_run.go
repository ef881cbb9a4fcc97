// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianFanout/cmd/fanbench/config"
	"github.com/AleutianAI/AleutianFanout/pkg/logging"
	"github.com/AleutianAI/AleutianFanout/services/fanout"
	"github.com/AleutianAI/AleutianFanout/services/fanout/benchmark"
	"github.com/AleutianAI/AleutianFanout/services/fanout/telemetry"
)

// errStrategiesFailed makes the process exit non-zero when any run failed.
var errStrategiesFailed = errors.New("strategies failed")

// resolveConfig loads the config file and applies explicitly set flags.
func resolveConfig(cmd *cobra.Command, f *runFlags) (config.FanbenchConfig, error) {
	fs := cmd.Flags()

	var cfg config.FanbenchConfig
	var err error
	if fs.Changed("config") {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return cfg, err
	}

	if fs.Changed("items") {
		cfg.Items = f.items
	}
	if fs.Changed("rounds") {
		cfg.Rounds = f.rounds
	}
	if fs.Changed("warmup") {
		cfg.Warmup = f.warmup
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fs.Changed("isolated") {
		cfg.Isolated = f.isolated
	}
	if fs.Changed("strategy") {
		cfg.Strategies = f.strategies
	}
	if fs.Changed("remove-outliers") {
		cfg.RemoveOutliers = f.removeOutliers
	}
	if fs.Changed("outlier-threshold") {
		cfg.OutlierThreshold = f.outlierThreshold
	}
	if fs.Changed("json") {
		cfg.Output = config.OutputConsole
		if f.jsonOutput {
			cfg.Output = config.OutputJSON
		}
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if fs.Changed("metrics-exporter") {
		cfg.MetricsExporter = f.metricsExporter
	}
	if fs.Changed("trace") {
		cfg.Trace = f.trace
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if fs.Changed("log-dir") {
		cfg.LogDir = f.logDir
	}
	if fs.Changed("quiet") {
		cfg.Quiet = f.quiet
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// runBench is the run command.
//
// Description:
//
//	Resolves configuration, wires logging, Prometheus metrics and
//	OpenTelemetry, runs the selected strategies, prints the report and
//	optionally writes the metrics textfile.
//
// Outputs:
//   - error: Configuration or setup failures, or errStrategiesFailed when
//     any strategy run failed. Reports are printed either way.
func runBench(cmd *cobra.Command, f *runFlags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}

	logCfg := cfg.Logging()
	logCfg.Output = cmd.ErrOrStderr()
	logger := logging.New(logCfg)
	defer logger.Close()

	strategies, err := fanout.NewDefaultRegistry().Select(cfg.Strategies)
	if err != nil {
		return err
	}

	telCfg := telemetry.DefaultConfig()
	telCfg.Output = cmd.ErrOrStderr()
	telCfg.MetricExporter = cfg.MetricsExporter
	if cfg.Trace {
		telCfg.TraceExporter = telemetry.ExporterStdout
	}
	providers, err := telemetry.Setup(telCfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown", "error", err.Error())
		}
	}()

	sink, err := telemetry.NewOTelSink(providers.OTelConfig())
	if err != nil {
		return err
	}
	defer sink.Close()

	runner, err := benchmark.NewRunner(cfg.Benchmark(),
		benchmark.WithLogger(logger),
		benchmark.WithMetrics(telemetry.NewMetrics(providers.Registry)),
		benchmark.WithOTelSink(sink),
	)
	if err != nil {
		return err
	}

	report := runner.RunAll(cmd.Context(), strategies)
	cmp := benchmark.Compare(report)

	var reporter benchmark.Reporter
	if cfg.Output == config.OutputJSON {
		reporter = benchmark.NewJSONReporter(cmd.OutOrStdout(), true)
	} else {
		reporter = benchmark.NewConsoleReporter(cmd.OutOrStdout(), f.verbose)
	}
	if err := reporter.ReportAll(report, cmp); err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := telemetry.WriteTextfile(cfg.MetricsFile, providers.Registry); err != nil {
			return err
		}
		logger.Debug("metrics written", "path", cfg.MetricsFile)
	}

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%w: %d of %d", errStrategiesFailed, failed, len(report.Results))
	}
	return nil
}
