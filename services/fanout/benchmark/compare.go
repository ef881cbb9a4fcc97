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
	"sort"
	"time"

	"github.com/AleutianAI/AleutianFanout/services/fanout/telemetry"
)

// RankedResult is one successful strategy's position in a Comparison.
type RankedResult struct {
	// Rank is 1 for the fastest strategy.
	Rank int

	// Strategy is the strategy name.
	Strategy string

	// Mean is the strategy's mean round duration.
	Mean time.Duration

	// Relative is Mean divided by the fastest mean. The fastest is 1.0.
	Relative float64
}

// Comparison ranks the successful strategies of a Report.
type Comparison struct {
	// Ranking lists successful strategies fastest first. Ties keep launch order.
	Ranking []RankedResult

	// Fastest and Slowest name the ranking's ends. Empty if nothing succeeded.
	Fastest string
	Slowest string

	// Speedup is the slowest mean divided by the fastest mean.
	// Zero when fewer than one strategy succeeded or the fastest mean is zero.
	Speedup float64

	// Failed lists the strategies that failed, in launch order.
	Failed []string
}

// Compare ranks the results of report.
//
// Description:
//
//	Failed strategies are excluded from the ranking and listed in Failed.
//	The ranking is a stable sort on the mean duration.
//
// Inputs:
//   - report: The report to rank. nil yields an empty Comparison.
//
// Outputs:
//   - *Comparison: Never nil.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func Compare(report *Report) *Comparison {
	cmp := &Comparison{}
	if report == nil {
		return cmp
	}

	for _, res := range report.Results {
		if !res.OK() {
			cmp.Failed = append(cmp.Failed, res.Strategy)
			continue
		}
		cmp.Ranking = append(cmp.Ranking, RankedResult{
			Strategy: res.Strategy,
			Mean:     res.Elapsed,
		})
	}

	if len(cmp.Ranking) == 0 {
		return cmp
	}

	sort.SliceStable(cmp.Ranking, func(i, j int) bool {
		return cmp.Ranking[i].Mean < cmp.Ranking[j].Mean
	})

	fastest := cmp.Ranking[0]
	slowest := cmp.Ranking[len(cmp.Ranking)-1]
	cmp.Fastest = fastest.Strategy
	cmp.Slowest = slowest.Strategy

	for i := range cmp.Ranking {
		cmp.Ranking[i].Rank = i + 1
		if fastest.Mean > 0 {
			cmp.Ranking[i].Relative = float64(cmp.Ranking[i].Mean) / float64(fastest.Mean)
		}
	}
	if fastest.Mean > 0 {
		cmp.Speedup = float64(slowest.Mean) / float64(fastest.Mean)
	}

	return cmp
}

// TelemetryData converts the comparison into the telemetry summary shape.
func (c *Comparison) TelemetryData(report *Report) *telemetry.ComparisonData {
	data := &telemetry.ComparisonData{
		Fastest:   c.Fastest,
		Slowest:   c.Slowest,
		Speedup:   c.Speedup,
		Failed:    len(c.Failed),
		Timestamp: time.Now(),
	}
	if report != nil {
		data.RunID = report.RunID
		data.Strategies = report.Names()
	}
	return data
}
