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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	require.Equal(t, 6, r.Count())
	assert.Equal(t, DefaultStrategies(), r.Strategies())
	assert.Equal(t, []string{
		"ForEachLoopAsParallel",
		"ForEachLoopParallel",
		"ForLoopParallel",
		"ParallelFor",
		"ParallelForEach",
		"ParallelForEachAsParallel",
	}, r.List())
}

func TestRegistry_Register(t *testing.T) {
	t.Run("duplicate", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(ParallelFor))
		err := r.Register(ParallelFor)
		assert.True(t, errors.Is(err, ErrAlreadyRegistered))
	})

	t.Run("empty name", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(Strategy{Enumeration: EnumerateRange, Scheduling: ScheduleBulk})
		assert.True(t, errors.Is(err, ErrUnknownStrategy))
	})

	t.Run("unknown scheduling", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(Strategy{Name: "x", Scheduling: Scheduling(9)})
		assert.True(t, errors.Is(err, ErrUnknownStrategy))
	})

	t.Run("must register panics", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(ParallelFor)
		assert.Panics(t, func() { r.MustRegister(ParallelFor) })
	})
}

func TestRegistry_Get(t *testing.T) {
	r := NewDefaultRegistry()

	s, ok := r.Get("ParallelForEach")
	require.True(t, ok)
	assert.Equal(t, ParallelForEach, s)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_Select(t *testing.T) {
	r := NewDefaultRegistry()

	t.Run("empty selects all", func(t *testing.T) {
		got, err := r.Select(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultStrategies(), got)
	})

	t.Run("keeps requested order and drops duplicates", func(t *testing.T) {
		got, err := r.Select([]string{"ParallelFor", "ForLoopParallel", "ParallelFor"})
		require.NoError(t, err)
		assert.Equal(t, []Strategy{ParallelFor, ForLoopParallel}, got)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := r.Select([]string{"ParallelFor", "Nope"})
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "Nope")
	})
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(Strategy{Name: string(rune('a' + i%26)), Scheduling: ScheduleBulk})
		}(i)
		go func() {
			defer wg.Done()
			_ = r.List()
			_ = r.Strategies()
		}()
	}
	wg.Wait()

	assert.Equal(t, 26, r.Count())
}
