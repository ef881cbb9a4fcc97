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
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrNoSamples indicates that no samples were collected.
	ErrNoSamples = errors.New("no samples collected")

	// ErrInvalidConfig indicates an invalid benchmark configuration.
	ErrInvalidConfig = errors.New("invalid benchmark configuration")

	// ErrIncomplete indicates a run finished with the wrong number of records.
	ErrIncomplete = errors.New("sink incomplete after run")

	// ErrRunPanicked indicates a panic escaped the distributor itself.
	ErrRunPanicked = errors.New("strategy run panicked")
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// DefaultItems is the workload size used when none is configured.
const DefaultItems = 1_000_000

// Config holds benchmark configuration.
//
// Description:
//
//	Config controls the workload size, round counts, scheduling knobs and
//	outlier handling. Use DefaultConfig() to get sensible defaults, then
//	override specific fields as needed.
//
// Thread Safety: Safe for concurrent read access after initialization.
type Config struct {
	// Items is the workload size N.
	// Default: 1,000,000
	Items int

	// Rounds is the number of measured rounds per strategy.
	// Default: 1
	Rounds int

	// Warmup is the number of discarded rounds before measurement.
	// Default: 0
	Warmup int

	// Workers is the bulk batch count. 0 means GOMAXPROCS.
	// Default: 0
	Workers int

	// Isolated runs strategies sequentially instead of concurrently.
	// Default: false
	Isolated bool

	// RemoveOutliers removes statistical outliers from the samples.
	// Default: false
	RemoveOutliers bool

	// OutlierThreshold is the IQR multiplier for outlier detection.
	// Default: 1.5
	OutlierThreshold float64
}

// DefaultConfig returns a configuration with default values.
//
// Outputs:
//   - *Config: Configuration with default values. Never nil.
//
// Example:
//
//	config := DefaultConfig()
//	config.Items = 10_000
//	config.Rounds = 5
func DefaultConfig() *Config {
	return &Config{
		Items:            DefaultItems,
		Rounds:           1,
		Warmup:           0,
		Workers:          0,
		OutlierThreshold: 1.5,
	}
}

// Validate checks that the configuration is valid.
//
// Outputs:
//   - error: Non-nil if configuration is invalid, wrapping ErrInvalidConfig
//     with a message naming the field.
func (c *Config) Validate() error {
	if c.Items < 0 {
		return fmt.Errorf("%w: items must be non-negative", ErrInvalidConfig)
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("%w: rounds must be positive", ErrInvalidConfig)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("%w: warmup must be non-negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative", ErrInvalidConfig)
	}
	if c.RemoveOutliers && c.OutlierThreshold <= 0 {
		return fmt.Errorf("%w: outlier threshold must be positive", ErrInvalidConfig)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Results
// -----------------------------------------------------------------------------

// StrategyResult is the outcome of timing one strategy.
//
// Description:
//
//	Produced exactly once per strategy per RunAll. A failed run carries Err
//	and its duration fields are not meaningful.
//
// Thread Safety: Safe for concurrent read access after creation.
type StrategyResult struct {
	// Strategy is the strategy name.
	Strategy string

	// Enumeration and Scheduling name the strategy's grid cell.
	Enumeration string
	Scheduling  string

	// Items is the workload size N.
	Items int

	// Started is when the strategy's first round began.
	Started time.Time

	// Elapsed is the mean measured round duration.
	Elapsed time.Duration

	// Samples holds every measured round duration, outliers included.
	Samples []time.Duration

	// Latency summarizes Samples after optional outlier removal.
	Latency LatencyStats

	// Err is non-nil if any round failed.
	Err error
}

// OK reports whether the run succeeded.
func (r StrategyResult) OK() bool {
	return r.Err == nil
}

// Report collects the results of one RunAll call.
type Report struct {
	// RunID uniquely identifies this harness run.
	RunID string

	// Items is the workload size N shared by every strategy.
	Items int

	// Rounds is the measured round count per strategy.
	Rounds int

	// Isolated is true if strategies ran sequentially.
	Isolated bool

	// Started is when RunAll began.
	Started time.Time

	// Duration is the wall-clock time of the whole RunAll call.
	Duration time.Duration

	// Results holds one entry per strategy in launch order.
	Results []StrategyResult
}

// Failed returns the number of failed strategy runs.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// Names returns the strategy names in launch order.
func (r *Report) Names() []string {
	names := make([]string, len(r.Results))
	for i, res := range r.Results {
		names[i] = res.Strategy
	}
	return names
}

// LatencyStats holds latency percentile statistics.
//
// Description:
//
//	LatencyStats provides min/max, mean/median, standard deviation, and
//	percentiles over round durations. Percentiles use linear interpolation.
type LatencyStats struct {
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	Median time.Duration
	StdDev time.Duration

	// Variance is StdDev^2 in nanoseconds squared.
	Variance float64

	P90 time.Duration
	P95 time.Duration
	P99 time.Duration
}

// -----------------------------------------------------------------------------
// Statistics
// -----------------------------------------------------------------------------

// CalculateLatencyStats computes latency statistics from samples.
//
// Inputs:
//   - samples: Round durations. Must not be empty.
//
// Outputs:
//   - LatencyStats: Computed statistics.
//   - error: ErrNoSamples if samples is empty.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func CalculateLatencyStats(samples []time.Duration) (LatencyStats, error) {
	if len(samples) == 0 {
		return LatencyStats{}, ErrNoSamples
	}

	sorted := sortedCopy(samples)

	stats := LatencyStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: percentile(sorted, 0.5),
		P90:    percentile(sorted, 0.9),
		P95:    percentile(sorted, 0.95),
		P99:    percentile(sorted, 0.99),
	}

	var sum time.Duration
	for _, s := range samples {
		sum += s
	}
	stats.Mean = sum / time.Duration(len(samples))

	var sumSquaredDiff float64
	meanFloat := float64(stats.Mean)
	for _, s := range samples {
		diff := float64(s) - meanFloat
		sumSquaredDiff += diff * diff
	}
	stats.Variance = sumSquaredDiff / float64(len(samples))
	stats.StdDev = time.Duration(math.Sqrt(stats.Variance))

	return stats, nil
}

func sortedCopy(samples []time.Duration) []time.Duration {
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	return sorted
}

// percentile calculates the p-th percentile of sorted samples using linear interpolation.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	index := p * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	fraction := index - float64(lower)
	return time.Duration(float64(sorted[lower])*(1-fraction) + float64(sorted[upper])*fraction)
}

// RemoveOutliers removes outliers using the IQR method.
//
// Description:
//
//	Values outside [Q1 - threshold*IQR, Q3 + threshold*IQR] are removed.
//	If that would remove more than half the samples, the original samples
//	are returned unchanged.
//
// Inputs:
//   - samples: Duration samples. Fewer than 4 are returned unchanged.
//   - threshold: IQR multiplier (1.5 for mild outliers, 3.0 for extreme).
//
// Thread Safety: This function is stateless and safe for concurrent use.
func RemoveOutliers(samples []time.Duration, threshold float64) []time.Duration {
	if len(samples) < 4 {
		return samples
	}

	sorted := sortedCopy(samples)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1

	lowerBound := q1 - time.Duration(threshold*float64(iqr))
	upperBound := q3 + time.Duration(threshold*float64(iqr))

	var filtered []time.Duration
	for _, s := range samples {
		if s >= lowerBound && s <= upperBound {
			filtered = append(filtered, s)
		}
	}

	if len(filtered) < len(samples)/2 {
		return samples
	}
	return filtered
}
