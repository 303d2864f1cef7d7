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

	"golang.org/x/sync/errgroup"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanfleet/ridemart/internal/db"
	"github.com/urbanfleet/ridemart/internal/logging"
)

// Dimension describes one dimension table and the set-based SQL that
// upserts its distinct natural keys out of staging. The insert is
// ON CONFLICT DO NOTHING against the natural_key unique index, so a
// re-run inserts nothing and reassigns no keys.
type Dimension struct {
	Name      string
	Table     string
	insertSQL string
}

// Dimensions is the fixed dimension catalog, in no required order: the
// builders are independent of each other and run in parallel.
var Dimensions = []Dimension{
	{
		Name:  "customers",
		Table: "customers",
		insertSQL: `
            INSERT INTO customers (natural_key)
            SELECT DISTINCT customer_id FROM staging_bookings
            WHERE customer_id IS NOT NULL AND customer_id <> ''
            ON CONFLICT (natural_key) DO NOTHING`,
	},
	{
		Name:  "vehicles",
		Table: "vehicles",
		insertSQL: `
            INSERT INTO vehicles (natural_key)
            SELECT DISTINCT vehicle_type FROM staging_bookings
            WHERE vehicle_type IS NOT NULL AND vehicle_type <> ''
            ON CONFLICT (natural_key) DO NOTHING`,
	},
	{
		// Pickup and drop share one namespace: a location seen only as a
		// drop point still gets exactly one row.
		Name:  "locations",
		Table: "locations",
		insertSQL: `
            INSERT INTO locations (natural_key)
            SELECT DISTINCT loc FROM (
                SELECT pickup_location AS loc FROM staging_bookings
                UNION
                SELECT drop_location FROM staging_bookings
            ) src
            WHERE loc IS NOT NULL AND loc <> ''
            ON CONFLICT (natural_key) DO NOTHING`,
	},
	{
		Name:  "payment_methods",
		Table: "payment_methods",
		insertSQL: `
            INSERT INTO payment_methods (natural_key)
            SELECT DISTINCT payment_method FROM staging_bookings
            WHERE payment_method IS NOT NULL AND payment_method <> ''
            ON CONFLICT (natural_key) DO NOTHING`,
	},
}

// DimensionStats reports one dimension build.
type DimensionStats struct {
	Name     string
	Inserted int64
	Total    int64
}

// Build upserts the dimension's distinct natural keys and returns how many
// rows were new versus the resulting table size.
func (d Dimension) Build(ctx context.Context, q db.Querier) (DimensionStats, error) {
	stats := DimensionStats{Name: d.Name}

	tag, err := q.Exec(ctx, d.insertSQL)
	if err != nil {
		return stats, fmt.Errorf("failed to build dimension %s: %w", d.Name, err)
	}
	stats.Inserted = tag.RowsAffected()

	err = q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", d.Table)).Scan(&stats.Total)
	if err != nil {
		return stats, fmt.Errorf("failed to count dimension %s: %w", d.Name, err)
	}

	logging.Info().
		Str("dimension", d.Name).
		Int64("inserted", stats.Inserted).
		Int64("total", stats.Total).
		Msg("Dimension built")

	return stats, nil
}

// BuildDimensions runs all dimension builders in parallel and waits for
// every one to finish. The fact load must not start before this returns:
// every natural key has to be resolvable first.
func BuildDimensions(ctx context.Context, pool *pgxpool.Pool) ([]DimensionStats, error) {
	stats := make([]DimensionStats, len(Dimensions))

	g, ctx := errgroup.WithContext(ctx)
	for i, dim := range Dimensions {
		g.Go(func() error {
			s, err := dim.Build(ctx, pool)
			if err != nil {
				return err
			}
			stats[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
