//-------------------------------------------------------------------------
//
// RideMart Booking Warehouse
//
// Copyright (c) 2025 - 2026, the RideMart authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanfleet/ridemart/internal/db"
	"github.com/urbanfleet/ridemart/internal/logging"
)

// PipelineConfig holds knobs for one pipeline run.
type PipelineConfig struct {
	// Workers is the fact-insert worker count.
	Workers int
}

// RunStats is the outcome of one full pipeline run.
type RunStats struct {
	Dimensions []DimensionStats
	Load       LoadStats
	Duration   time.Duration
}

// Run executes the full batch pipeline: dimension builds in parallel,
// a strict barrier, then key resolution and the idempotent fact load.
// The whole run is safe to repeat: both phases are upsert-or-skip, so a
// second run over the same staging input changes nothing.
func Run(ctx context.Context, pool *pgxpool.Pool, cfg PipelineConfig) (*RunStats, error) {
	start := time.Now()

	logging.Info().Int("workers", cfg.Workers).Msg("Starting warehouse load")

	dimStats, err := BuildDimensions(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("dimension build failed: %w", err)
	}

	// Barrier: every dimension is complete, keys are now resolvable.
	ks, err := LoadKeySet(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to load key maps: %w", err)
	}

	loader := NewLoader(pool, cfg.Workers)
	loadStats, err := loader.Run(ctx, ks)
	if err != nil {
		return nil, fmt.Errorf("fact load failed: %w", err)
	}

	stats := &RunStats{
		Dimensions: dimStats,
		Load:       *loadStats,
		Duration:   time.Since(start),
	}

	if err := db.SaveLoadMetadata(ctx, pool, map[string]string{
		"last_load_rows_read":       strconv.FormatInt(stats.Load.RowsRead, 10),
		"last_load_inserted":        strconv.FormatInt(stats.Load.Inserted, 10),
		"last_load_already_present": strconv.FormatInt(stats.Load.AlreadyPresent, 10),
		"last_load_failed":          strconv.FormatInt(stats.Load.Failed, 10),
	}); err != nil {
		return stats, fmt.Errorf("failed to save load metadata: %w", err)
	}

	logging.Info().
		Dur("duration", stats.Duration).
		Int64("inserted", stats.Load.Inserted).
		Int64("already_present", stats.Load.AlreadyPresent).
		Int64("failed", stats.Load.Failed).
		Msg("Warehouse load finished")

	return stats, nil
}
