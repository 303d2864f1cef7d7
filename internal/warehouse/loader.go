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
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/urbanfleet/ridemart/internal/logging"
)

// insertFactSQL is the idempotent fact insert. The primary key on
// booking_id makes the check-and-insert atomic per row: a duplicate is a
// no-op (RowsAffected 0), never an error, so parallel workers and re-runs
// cannot create duplicate facts.
const insertFactSQL = `
INSERT INTO fact_bookings (
    booking_id, status, booking_datetime,
    customer_key, vehicle_key, pickup_location_key, drop_location_key,
    payment_method_key,
    booking_value, ride_distance, driver_rating, customer_rating,
    is_cancelled
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (booking_id) DO NOTHING`

// LoadFailure identifies one staging row that the loader rejected and
// which fields failed. Surfaced through the run summary and mirrored by
// the rows-not-loaded diagnostic report.
type LoadFailure struct {
	BookingID string
	Fields    []string
}

// LoadStats is the audit record of one fact-load phase.
type LoadStats struct {
	RowsRead       int64
	Inserted       int64
	AlreadyPresent int64
	Failed         int64
	Failures       []LoadFailure
}

// Loader inserts resolved staging rows into the fact table across a pool
// of workers. Rows failing the all-keys-present policy never reach a
// worker; they are recorded and the pipeline continues.
type Loader struct {
	pool    *pgxpool.Pool
	workers int

	rowsRead       atomic.Int64
	inserted       atomic.Int64
	alreadyPresent atomic.Int64

	mu       sync.Mutex
	failures []LoadFailure
}

// NewLoader creates a fact loader with the given worker count.
func NewLoader(pool *pgxpool.Pool, workers int) *Loader {
	if workers < 1 {
		workers = 1
	}
	return &Loader{pool: pool, workers: workers}
}

// Run streams the staging table, resolves every row against ks and loads
// the resolvable ones. It returns only on storage-level errors; per-row
// data problems are collected in the returned stats.
func (l *Loader) Run(ctx context.Context, ks *KeySet) (*LoadStats, error) {
	rowCh := make(chan ResolvedRow, l.workers*4)

	g, ctx := errgroup.WithContext(ctx)

	for range l.workers {
		g.Go(func() error {
			for r := range rowCh {
				if err := l.insert(ctx, r); err != nil {
					return err
				}
			}
			return nil
		})
	}

	// Producer: stream staging rows, resolve, dispatch or reject.
	g.Go(func() error {
		defer close(rowCh)

		rows, err := l.pool.Query(ctx, `
            SELECT
                COALESCE(booking_id, ''), COALESCE(booking_status, ''),
                COALESCE(booking_datetime, ''), COALESCE(customer_id, ''),
                COALESCE(vehicle_type, ''), COALESCE(pickup_location, ''),
                COALESCE(drop_location, ''), COALESCE(payment_method, ''),
                COALESCE(booking_value, ''), COALESCE(ride_distance, ''),
                COALESCE(driver_ratings, ''), COALESCE(customer_rating, ''),
                COALESCE(is_cancelled, '')
            FROM staging_bookings`)
		if err != nil {
			return fmt.Errorf("failed to read staging table: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var s StagingRow
			if err := rows.Scan(
				&s.BookingID, &s.Status, &s.Datetime, &s.CustomerID,
				&s.VehicleType, &s.PickupLocation, &s.DropLocation,
				&s.PaymentMethod, &s.BookingValue, &s.RideDistance,
				&s.DriverRating, &s.CustomerRating, &s.IsCancelled,
			); err != nil {
				return fmt.Errorf("failed to scan staging row: %w", err)
			}
			l.rowsRead.Add(1)

			r := ks.Resolve(s)
			if !r.Loadable() {
				l.reject(r)
				continue
			}

			select {
			case rowCh <- r:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &LoadStats{
		RowsRead:       l.rowsRead.Load(),
		Inserted:       l.inserted.Load(),
		AlreadyPresent: l.alreadyPresent.Load(),
		Failed:         int64(len(l.failures)),
		Failures:       l.failures,
	}

	logging.Info().
		Int64("rows_read", stats.RowsRead).
		Int64("inserted", stats.Inserted).
		Int64("already_present", stats.AlreadyPresent).
		Int64("failed", stats.Failed).
		Msg("Fact load complete")

	return stats, nil
}

func (l *Loader) insert(ctx context.Context, r ResolvedRow) error {
	tag, err := l.pool.Exec(ctx, insertFactSQL,
		r.Row.BookingID, r.Row.Status, r.When,
		r.CustomerKey, r.VehicleKey, r.PickupKey, r.DropKey,
		r.PaymentMethodKey,
		r.Measures.BookingValue, r.Measures.RideDistance,
		r.Measures.DriverRating, r.Measures.CustomerRating,
		r.Measures.IsCancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking %s: %w", r.Row.BookingID, err)
	}

	if tag.RowsAffected() == 0 {
		l.alreadyPresent.Add(1)
	} else {
		l.inserted.Add(1)
	}
	return nil
}

func (l *Loader) reject(r ResolvedRow) {
	l.mu.Lock()
	l.failures = append(l.failures, LoadFailure{
		BookingID: r.Row.BookingID,
		Fields:    r.MissingFields,
	})
	l.mu.Unlock()

	logging.Debug().
		Str("booking_id", r.Row.BookingID).
		Strs("fields", r.MissingFields).
		Msg("Staging row not loadable")
}
