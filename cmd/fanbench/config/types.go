// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the fanbench YAML configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/AleutianFanout/pkg/logging"
	"github.com/AleutianAI/AleutianFanout/services/fanout/benchmark"
	"github.com/AleutianAI/AleutianFanout/services/fanout/telemetry"
)

// Output formats.
const (
	OutputConsole = "console"
	OutputJSON    = "json"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ErrInvalidConfig indicates the configuration failed validation.
var ErrInvalidConfig = errors.New("invalid fanbench configuration")

// FanbenchConfig is the on-disk configuration of the fanbench CLI.
//
// Every field can be overridden by the matching command-line flag.
type FanbenchConfig struct {
	// Workload
	Items      int      `yaml:"items" validate:"gte=0"`
	Rounds     int      `yaml:"rounds" validate:"gte=1"`
	Warmup     int      `yaml:"warmup" validate:"gte=0"`
	Workers    int      `yaml:"workers" validate:"gte=0"`
	Isolated   bool     `yaml:"isolated"`
	Strategies []string `yaml:"strategies,omitempty" validate:"omitempty,dive,required"`

	// Statistics
	RemoveOutliers   bool    `yaml:"remove_outliers"`
	OutlierThreshold float64 `yaml:"outlier_threshold" validate:"gt=0"`

	// Logging
	LogLevel  string `yaml:"log_level" validate:"loglevel"`
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`
	LogDir    string `yaml:"log_dir,omitempty"`
	Quiet     bool   `yaml:"quiet"`

	// Output
	Output          string `yaml:"output" validate:"oneof=console json"`
	MetricsFile     string `yaml:"metrics_file,omitempty"`
	MetricsExporter string `yaml:"metrics_exporter" validate:"oneof=prometheus stdout none"`
	Trace           bool   `yaml:"trace"`
}

// configValidate is shared by all Validate calls.
// Initialized in init() with custom validators.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("loglevel", validateLogLevel)
}

// validateLogLevel accepts any name logging.ParseLevel understands.
func validateLogLevel(fl validator.FieldLevel) bool {
	_, err := logging.ParseLevel(fl.Field().String())
	return err == nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() FanbenchConfig {
	defaults := benchmark.DefaultConfig()
	return FanbenchConfig{
		Items:            defaults.Items,
		Rounds:           defaults.Rounds,
		Warmup:           defaults.Warmup,
		Workers:          defaults.Workers,
		Isolated:         defaults.Isolated,
		RemoveOutliers:   defaults.RemoveOutliers,
		OutlierThreshold: defaults.OutlierThreshold,
		LogLevel:         "info",
		LogFormat:        LogFormatText,
		Output:           OutputConsole,
		MetricsExporter:  telemetry.ExporterPrometheus,
	}
}

// Validate checks struct tags and custom rules.
//
// Outputs:
//   - error: Wraps ErrInvalidConfig and the validator's field errors.
func (c FanbenchConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Logging converts the logging fields into a logging.Config.
//
// The level must already have passed Validate.
func (c FanbenchConfig) Logging() logging.Config {
	level, _ := logging.ParseLevel(c.LogLevel)
	return logging.Config{
		Level:   level,
		LogDir:  c.LogDir,
		Service: "fanbench",
		JSON:    c.LogFormat == LogFormatJSON,
		Quiet:   c.Quiet,
	}
}

// Benchmark converts the configuration into a benchmark.Config.
func (c FanbenchConfig) Benchmark() *benchmark.Config {
	return &benchmark.Config{
		Items:            c.Items,
		Rounds:           c.Rounds,
		Warmup:           c.Warmup,
		Workers:          c.Workers,
		Isolated:         c.Isolated,
		RemoveOutliers:   c.RemoveOutliers,
		OutlierThreshold: c.OutlierThreshold,
	}
}
