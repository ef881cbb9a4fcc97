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
	"sort"
	"sync"
)

// Registry manages the strategies available to the harness.
//
// Description:
//
//	The Registry maps strategy names to Strategy values and remembers
//	registration order, which is the order reports use.
//
// Thread Safety: Safe for concurrent use via read-write mutex.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	order      []string
}

// NewRegistry creates a new empty registry.
//
// Outputs:
//   - *Registry: The new registry. Never nil.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
		order:      make([]string, 0),
	}
}

// NewDefaultRegistry creates a registry holding DefaultStrategies.
//
// Outputs:
//   - *Registry: Registry with the six canonical strategies. Never nil.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range DefaultStrategies() {
		r.MustRegister(s)
	}
	return r
}

// Register adds a strategy to the registry.
//
// Description:
//
//	Registers the strategy under its Name. The name must be non-empty and
//	unique within the registry, and the strategy's modes must be known.
//
// Inputs:
//   - s: The strategy to register.
//
// Outputs:
//   - error: nil on success, ErrUnknownStrategy for an empty name or unknown
//     modes, ErrAlreadyRegistered if the name is taken.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) Register(s Strategy) error {
	if s.Name == "" || !s.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, s.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[s.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, s.Name)
	}

	r.strategies[s.Name] = s
	r.order = append(r.order, s.Name)
	return nil
}

// MustRegister registers a strategy and panics on error.
//
// Should only be used during initialization.
func (r *Registry) MustRegister(s Strategy) {
	if err := r.Register(s); err != nil {
		panic(fmt.Sprintf("fanout: failed to register %v: %v", s.Name, err))
	}
}

// Get retrieves a strategy by name.
//
// Outputs:
//   - Strategy: The strategy, or the zero value if not found.
//   - bool: true if found.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) Get(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[name]
	return s, ok
}

// Select resolves names to strategies in the order given.
//
// Description:
//
//	An empty names slice selects every registered strategy in registration
//	order. Duplicated names are returned once.
//
// Outputs:
//   - []Strategy: The resolved strategies.
//   - error: Wraps ErrNotFound naming the first unknown strategy.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) Select(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		return r.Strategies(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(names))
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		s, ok := r.strategies[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		seen[name] = true
		out = append(out, s)
	}
	return out, nil
}

// List returns all registered strategy names sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Strategies returns all registered strategies in registration order.
func (r *Registry) Strategies() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Strategy, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.strategies[name])
	}
	return out
}

// Count returns the number of registered strategies.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.strategies)
}
