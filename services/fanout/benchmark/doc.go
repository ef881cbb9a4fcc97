// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package benchmark times fan-out strategies and reports their results.
//
// A Runner executes each selected strategy against a fresh ResultSink,
// measures the wall-clock time of the Distribute call, verifies the sink
// holds exactly Items records and returns a StrategyResult. RunAll launches
// every strategy in its own goroutine and joins them all before returning a
// Report. With Config.Isolated the strategies run one after another instead,
// which removes cross-strategy contention from the measurement.
//
// # Rounds and Statistics
//
// Each strategy runs Warmup discarded rounds followed by Rounds measured
// rounds. The measured samples feed CalculateLatencyStats, optionally after
// IQR outlier removal, and StrategyResult.Elapsed is the resulting mean.
//
// # Reporting
//
// ConsoleReporter prints the classic summary:
//
//	Create 1000000 object
//	ForLoopParallel executed in 412 ms (1000000 items)
//	ParallelFor executed in 61 ms (1000000 items)
//	...
//
// JSONReporter emits the full Report and Comparison for machine consumption.
//
// # Thread Safety
//
// Runner is safe for concurrent use once constructed. Reports are immutable
// after RunAll returns.
package benchmark
