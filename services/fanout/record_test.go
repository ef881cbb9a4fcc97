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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	tests := []struct {
		index int
		want  Record
	}{
		{0, Record{ID: 0, Label: "Item 0"}},
		{7, Record{ID: 7, Label: "Item 7"}},
		{999999, Record{ID: 999999, Label: "Item 999999"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NewRecord(tt.index))
	}
}

func TestNewRecord_Idempotent(t *testing.T) {
	first := NewRecord(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, NewRecord(42))
	}
}

// -----------------------------------------------------------------------------
// ResultSink Tests
// -----------------------------------------------------------------------------

func TestNewResultSink(t *testing.T) {
	t.Run("negative hint", func(t *testing.T) {
		sink := NewResultSink(-5)
		require.NotNil(t, sink)
		assert.Equal(t, 0, sink.Len())
	})

	t.Run("preallocates", func(t *testing.T) {
		sink := NewResultSink(64)
		assert.Equal(t, 64, cap(sink.records))
		assert.Equal(t, 0, sink.Len())
	})
}

func TestResultSink_ConcurrentAppend(t *testing.T) {
	const (
		writers   = 32
		perWriter = 1000
	)

	sink := NewResultSink(0)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				sink.Append(NewRecord(w*perWriter + i))
			}
		}(w)
	}
	wg.Wait()

	requireExactIDs(t, sink, writers*perWriter)
}

func TestResultSink_RecordsIsCopy(t *testing.T) {
	sink := NewResultSink(1)
	sink.Append(NewRecord(1))

	got := sink.Records()
	got[0].Label = "mutated"

	assert.Equal(t, "Item 1", sink.Records()[0].Label)
}
