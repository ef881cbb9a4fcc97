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

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/exascience/pargo/parallel"
	"golang.org/x/sync/errgroup"
)

// Body is the per-index unit of work.
type Body func(index int, sink *ResultSink)

// Options tunes a Distribute call. The zero value is ready to use.
type Options struct {
	// Workers is the number of batches used by bulk scheduling and by the
	// concurrent preparation pass. 0 means runtime.GOMAXPROCS(0).
	Workers int

	// Body replaces the default unit of work (NewRecord then Append).
	// Intended for fault injection in tests.
	Body Body
}

// defaultBody builds the record for index and appends it.
func defaultBody(index int, sink *ResultSink) {
	sink.Append(NewRecord(index))
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) body() Body {
	if o.Body != nil {
		return o.Body
	}
	return defaultBody
}

// Distribute runs the workload for indices [0, items) into sink.
//
// Description:
//
//	Enumerates the indices according to s.Enumeration, schedules one unit of
//	work per index according to s.Scheduling, and blocks until every unit
//	has finished. Each index is processed exactly once. The order in which
//	records reach the sink is unspecified.
//
// Inputs:
//   - items: Workload size N. Must be >= 0. Zero returns immediately.
//   - sink: Destination for the records. Must not be nil.
//   - opts: Optional tuning; the zero value uses defaults.
//
// Outputs:
//   - error: nil on success. ErrInvalidItems, ErrNilSink or
//     ErrUnknownStrategy for bad inputs. An error wrapping ErrWorkFault if
//     any unit of work panicked; the barrier has still completed.
//
// Thread Safety: Safe for concurrent use with distinct sinks.
//
// Example:
//
//	sink := fanout.NewResultSink(1000)
//	err := fanout.ParallelForEach.Distribute(1000, sink, fanout.Options{})
func (s Strategy) Distribute(items int, sink *ResultSink, opts Options) error {
	if items < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidItems, items)
	}
	if sink == nil {
		return ErrNilSink
	}
	if !s.valid() {
		return fmt.Errorf("%w: %s (%s/%s)", ErrUnknownStrategy, s.Name, s.Enumeration, s.Scheduling)
	}
	if items == 0 {
		return nil
	}

	indices := enumerate(s.Enumeration, items, opts.workers())
	body := opts.body()

	switch s.Scheduling {
	case SchedulePerItem:
		return schedulePerItem(indices, sink, body)
	default:
		return scheduleBulk(indices, sink, body, opts.workers())
	}
}

// -----------------------------------------------------------------------------
// Enumeration
// -----------------------------------------------------------------------------

// indexSet is the enumerated workload. seq is nil for EnumerateRange.
type indexSet struct {
	n   int
	seq []int
}

func enumerate(e Enumeration, items, workers int) indexSet {
	switch e {
	case EnumerateSequence:
		seq := make([]int, items)
		for i := range seq {
			seq[i] = i
		}
		return indexSet{n: items, seq: seq}
	case EnumeratePrepared:
		return indexSet{n: items, seq: prepareSequence(items, workers)}
	default:
		return indexSet{n: items}
	}
}

// prepareSequence fills []int{0..items-1} in parallel batches.
func prepareSequence(items, workers int) []int {
	seq := make([]int, items)
	parallel.Range(0, items, workers, func(low, high int) {
		for i := low; i < high; i++ {
			seq[i] = i
		}
	})
	return seq
}

// each calls fn for every index in enumeration order.
func (s indexSet) each(fn func(index int)) {
	if s.seq == nil {
		for i := 0; i < s.n; i++ {
			fn(i)
		}
		return
	}
	for _, i := range s.seq {
		fn(i)
	}
}

// span calls fn for the indices at positions [low, high).
func (s indexSet) span(low, high int, fn func(index int)) {
	if s.seq == nil {
		for i := low; i < high; i++ {
			fn(i)
		}
		return
	}
	for _, i := range s.seq[low:high] {
		fn(i)
	}
}

// -----------------------------------------------------------------------------
// Scheduling
// -----------------------------------------------------------------------------

// schedulePerItem spawns one goroutine per index and waits for all of them.
func schedulePerItem(indices indexSet, sink *ResultSink, body Body) error {
	var g errgroup.Group
	indices.each(func(index int) {
		g.Go(func() (err error) {
			defer recoverFault(index, &err)
			body(index, sink)
			return nil
		})
	})
	return g.Wait()
}

// scheduleBulk runs the indices in batches across a bounded worker count.
// A fault stops the remainder of its own batch only.
func scheduleBulk(indices indexSet, sink *ResultSink, body Body, workers int) error {
	var (
		faultOnce sync.Once
		fault     error
	)

	parallel.Range(0, indices.n, workers, func(low, high int) {
		var err error
		func() {
			current := low
			defer func() {
				if r := recover(); r != nil {
					err = faultError(current, r)
				}
			}()
			indices.span(low, high, func(index int) {
				current = index
				body(index, sink)
			})
		}()
		if err != nil {
			faultOnce.Do(func() { fault = err })
		}
	})

	return fault
}

// recoverFault converts a panic into an ErrWorkFault error.
func recoverFault(index int, err *error) {
	if r := recover(); r != nil {
		*err = faultError(index, r)
	}
}

func faultError(index int, r any) error {
	return fmt.Errorf("%w at index %d: %v", ErrWorkFault, index, r)
}
