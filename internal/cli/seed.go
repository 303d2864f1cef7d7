package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urbanfleet/ridemart/internal/datagen"
	"github.com/urbanfleet/ridemart/internal/db"
	"github.com/urbanfleet/ridemart/internal/logging"
	"github.com/urbanfleet/ridemart/internal/warehouse"
)

var (
	seedRows             int
	seedRandSeed         uint64
	seedDirtyPercent     float64
	seedDuplicatePercent float64
	seedTruncate         bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate staging booking data",
	Long: `Fill the staging table with generated ride bookings. Intended for
testing and demos; in production the staging table is populated by the
upstream cleaning step.

A configurable fraction of rows is given data-quality defects (empty
natural keys, malformed measures) or duplicate booking ids so the
pipeline's diagnostic paths can be exercised.

Example:
  ridemart seed --rows 100000 --dirty-percent 2 --duplicate-percent 1`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedRows, "rows", 0,
		"number of staging rows to generate")
	seedCmd.Flags().Uint64Var(&seedRandSeed, "rand-seed", 0,
		"RNG seed for reproducible datasets (0 = random)")
	seedCmd.Flags().Float64Var(&seedDirtyPercent, "dirty-percent", -1,
		"share of rows (0-100) with a data-quality defect")
	seedCmd.Flags().Float64Var(&seedDuplicatePercent, "duplicate-percent", -1,
		"share of rows (0-100) reusing an earlier booking id")
	seedCmd.Flags().BoolVar(&seedTruncate, "truncate", false,
		"truncate the staging table before seeding")
}

func runSeed(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if seedRows > 0 {
		cfg.Seed.Rows = seedRows
	}
	if seedRandSeed != 0 {
		cfg.Seed.RandSeed = seedRandSeed
	}
	if seedDirtyPercent >= 0 {
		cfg.Seed.DirtyPercent = seedDirtyPercent
	}
	if seedDuplicatePercent >= 0 {
		cfg.Seed.DuplicatePercent = seedDuplicatePercent
	}

	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.CheckSchemaVersion(ctx, pool); err != nil {
		return err
	}

	if seedTruncate {
		logging.Warn().Msg("Truncating staging table")
		if err := warehouse.TruncateStaging(ctx, pool); err != nil {
			return fmt.Errorf("failed to truncate staging: %w", err)
		}
	}

	gen := datagen.NewBookingGenerator(datagen.BookingConfig{
		Rows:             cfg.Seed.Rows,
		RandSeed:         cfg.Seed.RandSeed,
		DirtyPercent:     cfg.Seed.DirtyPercent,
		DuplicatePercent: cfg.Seed.DuplicatePercent,
	})

	total, err := gen.Seed(ctx, pool)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	logging.Info().Int64("rows", total).Msg("Staging table seeded")
	return nil
}
