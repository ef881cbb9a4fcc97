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
	"github.com/spf13/cobra"
)

// runFlags holds the raw command-line values for run.
//
// Only flags the user actually set override the config file.
type runFlags struct {
	configPath       string
	items            int
	rounds           int
	warmup           int
	workers          int
	isolated         bool
	strategies       []string
	removeOutliers   bool
	outlierThreshold float64
	jsonOutput       bool
	verbose          bool
	metricsFile      string
	metricsExporter  string
	trace            bool
	logLevel         string
	logFormat        string
	logDir           string
	quiet            bool
}

// newRootCmd builds the command tree.
//
// The root command runs the benchmark when invoked without a subcommand.
func newRootCmd() *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "fanbench",
		Short: "Compare fan-out/fan-in strategies that append to a shared sink",
		Long: `fanbench runs six strategies that each append N records to a
mutex-guarded sink, times every strategy and prints one line per strategy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, flags)
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the selected strategies and report their timings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, flags)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered strategies",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}

	bindRunFlags(rootCmd, flags)
	bindRunFlags(runCmd, flags)

	rootCmd.AddCommand(runCmd, listCmd, initCmd)
	return rootCmd
}

// bindRunFlags registers the benchmark flags on cmd.
func bindRunFlags(cmd *cobra.Command, f *runFlags) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file (default ./fanbench.yaml if present)")
	fs.IntVarP(&f.items, "items", "n", 0, "Records appended per strategy (default 1000000)")
	fs.IntVar(&f.rounds, "rounds", 0, "Measured rounds per strategy (default 1)")
	fs.IntVar(&f.warmup, "warmup", 0, "Discarded rounds before measurement")
	fs.IntVar(&f.workers, "workers", 0, "Bulk batch count (0 = GOMAXPROCS)")
	fs.BoolVar(&f.isolated, "isolated", false, "Run strategies one after another instead of together")
	fs.StringSliceVarP(&f.strategies, "strategy", "s", nil, "Strategy to run (repeatable; default all)")
	fs.BoolVar(&f.removeOutliers, "remove-outliers", false, "Drop IQR outliers before computing statistics")
	fs.Float64Var(&f.outlierThreshold, "outlier-threshold", 0, "IQR multiplier for outlier removal (default 1.5)")
	fs.BoolVar(&f.jsonOutput, "json", false, "Emit JSON instead of text")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Print latency statistics per strategy")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	fs.StringVar(&f.metricsExporter, "metrics-exporter", "", "OpenTelemetry metrics exporter: prometheus, stdout, none (default prometheus)")
	fs.BoolVar(&f.trace, "trace", false, "Print OpenTelemetry spans to stderr")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	fs.StringVar(&f.logFormat, "log-format", "", "Console log format: text, json (default text)")
	fs.StringVar(&f.logDir, "log-dir", "", "Also write JSON logs to this directory")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Suppress console logs")
}
