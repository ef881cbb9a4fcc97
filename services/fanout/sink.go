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

import "sync"

// ResultSink accumulates records from concurrent writers.
//
// Description:
//
//	An append-only, growable collection guarded by a single mutex. Append
//	order follows lock acquisition order and is not related to record IDs.
//	One sink belongs to exactly one strategy run.
//
// Thread Safety: Append, Len and Records are safe for concurrent use.
// Records is intended to be read after all writers have finished.
type ResultSink struct {
	mu      sync.Mutex
	records []Record
}

// NewResultSink creates an empty sink.
//
// Inputs:
//   - capacityHint: Expected record count. Values <= 0 start with no
//     preallocation.
//
// Outputs:
//   - *ResultSink: The new sink. Never nil.
func NewResultSink(capacityHint int) *ResultSink {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &ResultSink{
		records: make([]Record, 0, capacityHint),
	}
}

// Append adds one record to the sink.
//
// Thread Safety: Safe for concurrent use. Never drops a record.
func (s *ResultSink) Append(r Record) {
	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()
}

// Len returns the number of records appended so far.
func (s *ResultSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a copy of the accumulated records in append order.
func (s *ResultSink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
