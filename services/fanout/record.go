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
	"errors"
	"strconv"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrInvalidItems indicates a negative workload size.
	ErrInvalidItems = errors.New("item count must be non-negative")

	// ErrNilSink indicates Distribute was called without a sink.
	ErrNilSink = errors.New("result sink must not be nil")

	// ErrWorkFault indicates a unit of work panicked.
	ErrWorkFault = errors.New("unit of work faulted")

	// ErrUnknownStrategy indicates a strategy has an unsupported
	// enumeration or scheduling mode.
	ErrUnknownStrategy = errors.New("unknown strategy configuration")

	// ErrAlreadyRegistered indicates a strategy name is already taken.
	ErrAlreadyRegistered = errors.New("strategy already registered")

	// ErrNotFound indicates a strategy was not found in the registry.
	ErrNotFound = errors.New("strategy not found")
)

// -----------------------------------------------------------------------------
// Record
// -----------------------------------------------------------------------------

// Record is the value produced for each index of the workload.
//
// Records are created once by NewRecord and never mutated afterwards.
type Record struct {
	// ID is the index the record was built from.
	ID int `json:"id"`

	// Label is "Item " followed by the decimal ID.
	Label string `json:"label"`
}

// NewRecord builds the Record for index.
//
// Description:
//
//	Pure and deterministic: the same index always yields an equal Record.
//	Touches no shared state, so it needs no synchronization.
//
// Inputs:
//   - index: The workload index.
//
// Outputs:
//   - Record: {ID: index, Label: "Item <index>"}.
//
// Thread Safety: Safe for concurrent use.
func NewRecord(index int) Record {
	return Record{
		ID:    index,
		Label: "Item " + strconv.Itoa(index),
	}
}
