// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fanout implements the work-distribution strategies compared by the
// fanbench harness.
//
// # Overview
//
// Every strategy performs the same embarrassingly-parallel workload: build one
// Record per index in [0, N) and append it to a mutex-guarded ResultSink. The
// strategies differ only in how indices are enumerated and how units of work
// are scheduled onto goroutines.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│                            Distribute                                │
//	├──────────────────────────────────────────────────────────────────────┤
//	│                                                                      │
//	│   Enumeration                     Scheduling                         │
//	│   ┌──────────────┐                ┌──────────────────────────────┐   │
//	│   │ Range        │                │ PerItem  (errgroup.Go/index) │   │
//	│   │ Sequence     │ ──── × ─────── │ Bulk     (parallel.Range)    │   │
//	│   │ Prepared     │                └──────────────────────────────┘   │
//	│   └──────────────┘                               │                   │
//	│                                                  ▼                   │
//	│                       NewRecord(i) ──► ResultSink.Append             │
//	│                                                                      │
//	└──────────────────────────────────────────────────────────────────────┘
//
// The six canonical strategies are the cells of the 3×2 grid above:
//
//	ForLoopParallel            Range     × PerItem
//	ForEachLoopParallel        Sequence  × PerItem
//	ForEachLoopAsParallel      Prepared  × PerItem
//	ParallelFor                Range     × Bulk
//	ParallelForEach            Sequence  × Bulk
//	ParallelForEachAsParallel  Prepared  × Bulk
//
// # Usage
//
//	sink := fanout.NewResultSink(n)
//	if err := fanout.ParallelFor.Distribute(n, sink, fanout.Options{}); err != nil {
//	    return err
//	}
//	fmt.Println(sink.Len()) // n
//
// # Failure Semantics
//
// Distribute never returns before every scheduled unit of work has finished.
// A panic inside a unit of work is recovered at the goroutine boundary and
// reported as ErrWorkFault once the barrier completes. There is no retry and
// no cancellation.
//
// # Thread Safety
//
// ResultSink is safe for concurrent Append. Strategy values are immutable.
package fanout
