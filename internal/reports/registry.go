//-------------------------------------------------------------------------
//
// RideMart Booking Warehouse
//
// Copyright (c) 2025 - 2026, the RideMart authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package reports implements the fixed read-only query catalog over the
// fact and dimension tables, including the diagnostic queries that
// surface rows the pipeline could not load.
package reports

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/urbanfleet/ridemart/internal/db"
)

// Options parameterizes the top-N reports; everything else in the catalog
// is parameterless.
type Options struct {
	TopN int
}

// Result is a tabular result set, formatted for presentation: monetary
// and ratio values carry two decimals.
type Result struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Definition describes one named report in the catalog.
type Definition struct {
	// Name is the report identifier.
	Name string

	// Description describes what the report answers.
	Description string

	// Kind groups the report: summary, ranking, trend or diagnostic.
	Kind string

	// Run executes the report. Read-only, no side effects.
	Run func(ctx context.Context, q db.Querier, opts Options) (*Result, error)
}

var (
	registry = make(map[string]Definition)
	mu       sync.RWMutex
)

// Register adds a report to the catalog.
func Register(def Definition) {
	mu.Lock()
	defer mu.Unlock()
	registry[def.Name] = def
}

// Get retrieves a report by name.
func Get(name string) (Definition, error) {
	mu.RLock()
	defer mu.RUnlock()

	def, ok := registry[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown report: %s", name)
	}
	return def, nil
}

// All returns every registered report, sorted by name for deterministic
// catalog runs.
func All() []Definition {
	mu.RLock()
	defer mu.RUnlock()

	defs := make([]Definition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// List returns all registered report names, sorted.
func List() []string {
	defs := All()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}
