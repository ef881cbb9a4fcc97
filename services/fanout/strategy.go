// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fanout

// -----------------------------------------------------------------------------
// Enumeration
// -----------------------------------------------------------------------------

// Enumeration selects how the indices [0, N) are produced before scheduling.
type Enumeration int

const (
	// EnumerateRange walks [0, N) with a counted loop. Nothing is materialized.
	EnumerateRange Enumeration = iota

	// EnumerateSequence materializes []int{0..N-1} sequentially and ranges
	// over the slice.
	EnumerateSequence

	// EnumeratePrepared materializes the same slice using a concurrent fill
	// pass before scheduling begins.
	EnumeratePrepared
)

// String returns the string representation of the enumeration.
func (e Enumeration) String() string {
	switch e {
	case EnumerateRange:
		return "range"
	case EnumerateSequence:
		return "sequence"
	case EnumeratePrepared:
		return "prepared"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Scheduling
// -----------------------------------------------------------------------------

// Scheduling selects how units of work are mapped onto goroutines.
type Scheduling int

const (
	// SchedulePerItem spawns one goroutine per index and joins them all.
	SchedulePerItem Scheduling = iota

	// ScheduleBulk partitions the indices into batches run on a bounded
	// number of goroutines, calling the body directly for each index.
	ScheduleBulk
)

// String returns the string representation of the scheduling mode.
func (s Scheduling) String() string {
	switch s {
	case SchedulePerItem:
		return "per-item"
	case ScheduleBulk:
		return "bulk"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Strategy
// -----------------------------------------------------------------------------

// Strategy is one cell of the enumeration × scheduling grid.
//
// Thread Safety: Immutable value; safe for concurrent use.
type Strategy struct {
	// Name is the identifier used in reports and on the command line.
	Name string

	// Enumeration selects how indices are produced.
	Enumeration Enumeration

	// Scheduling selects how work units are run.
	Scheduling Scheduling
}

// The six canonical strategies.
var (
	ForLoopParallel = Strategy{
		Name:        "ForLoopParallel",
		Enumeration: EnumerateRange,
		Scheduling:  SchedulePerItem,
	}
	ForEachLoopParallel = Strategy{
		Name:        "ForEachLoopParallel",
		Enumeration: EnumerateSequence,
		Scheduling:  SchedulePerItem,
	}
	ForEachLoopAsParallel = Strategy{
		Name:        "ForEachLoopAsParallel",
		Enumeration: EnumeratePrepared,
		Scheduling:  SchedulePerItem,
	}
	ParallelFor = Strategy{
		Name:        "ParallelFor",
		Enumeration: EnumerateRange,
		Scheduling:  ScheduleBulk,
	}
	ParallelForEach = Strategy{
		Name:        "ParallelForEach",
		Enumeration: EnumerateSequence,
		Scheduling:  ScheduleBulk,
	}
	ParallelForEachAsParallel = Strategy{
		Name:        "ParallelForEachAsParallel",
		Enumeration: EnumeratePrepared,
		Scheduling:  ScheduleBulk,
	}
)

// DefaultStrategies returns the six canonical strategies in reporting order.
//
// Outputs:
//   - []Strategy: A fresh slice; callers may modify it.
func DefaultStrategies() []Strategy {
	return []Strategy{
		ForLoopParallel,
		ForEachLoopParallel,
		ForEachLoopAsParallel,
		ParallelFor,
		ParallelForEach,
		ParallelForEachAsParallel,
	}
}

// valid reports whether both modes are known.
func (s Strategy) valid() bool {
	return s.Enumeration >= EnumerateRange && s.Enumeration <= EnumeratePrepared &&
		s.Scheduling >= SchedulePerItem && s.Scheduling <= ScheduleBulk
}
