//-------------------------------------------------------------------------
//
// RideMart Booking Warehouse
//
// Copyright (c) 2025 - 2026, the RideMart authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/urbanfleet/ridemart/internal/db"
)

// The diagnostic queries are the pipeline's error-observability surface:
// skipped rows are not logged to a separate channel, they are queryable.

// NotLoadedRow identifies one staging row absent from the fact table and
// the reasons it was excluded.
type NotLoadedRow struct {
	BookingID string
	Reasons   []string
}

// RowsNotLoaded lists staging rows that never made it into the fact
// table, with which identity or key field failed. A row whose keys all
// resolve but is still absent failed on its booking timestamp, the one
// remaining strict requirement. That attribution assumes a completed
// pipeline run over the current staging input; before any load every
// staging row is absent and would carry the timestamp reason.
func RowsNotLoaded(ctx context.Context, q db.Querier) ([]NotLoadedRow, error) {
	rows, err := q.Query(ctx, `
        SELECT
            COALESCE(s.booking_id, ''),
            (s.booking_id IS NULL OR s.booking_id = ''),
            c.surrogate_key IS NULL,
            v.surrogate_key IS NULL,
            pl.surrogate_key IS NULL,
            dl.surrogate_key IS NULL,
            pm.surrogate_key IS NULL
        FROM staging_bookings s
        LEFT JOIN customers c        ON c.natural_key  = s.customer_id
        LEFT JOIN vehicles v         ON v.natural_key  = s.vehicle_type
        LEFT JOIN locations pl       ON pl.natural_key = s.pickup_location
        LEFT JOIN locations dl       ON dl.natural_key = s.drop_location
        LEFT JOIN payment_methods pm ON pm.natural_key = s.payment_method
        LEFT JOIN fact_bookings f    ON f.booking_id   = s.booking_id
        WHERE f.booking_id IS NULL
        ORDER BY s.booking_id NULLS FIRST
    `)
	if err != nil {
		return nil, fmt.Errorf("rows-not-loaded query failed: %w", err)
	}
	defer rows.Close()

	var out []NotLoadedRow
	for rows.Next() {
		var r NotLoadedRow
		var missingID, missingCustomer, missingVehicle, missingPickup,
			missingDrop, missingPayment bool
		if err := rows.Scan(&r.BookingID, &missingID, &missingCustomer,
			&missingVehicle, &missingPickup, &missingDrop, &missingPayment); err != nil {
			return nil, err
		}
		if missingID {
			r.Reasons = append(r.Reasons, "booking_id")
		}
		if missingCustomer {
			r.Reasons = append(r.Reasons, "customer_id")
		}
		if missingVehicle {
			r.Reasons = append(r.Reasons, "vehicle_type")
		}
		if missingPickup {
			r.Reasons = append(r.Reasons, "pickup_location")
		}
		if missingDrop {
			r.Reasons = append(r.Reasons, "drop_location")
		}
		if missingPayment {
			r.Reasons = append(r.Reasons, "payment_method")
		}
		if len(r.Reasons) == 0 {
			r.Reasons = append(r.Reasons, "booking_datetime")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MissingKeyCounts reports, per natural-key field, how many staging rows
// fail to resolve against the corresponding dimension. After a dimension
// build this counts exactly the NULL/empty natural keys; any surplus
// means a dimension build was skipped or ran against different staging
// input.
type MissingKeyCounts struct {
	Customer int64
	Vehicle  int64
	Pickup   int64
	Drop     int64
	Payment  int64
}

// Total returns the sum over all fields.
func (m MissingKeyCounts) Total() int64 {
	return m.Customer + m.Vehicle + m.Pickup + m.Drop + m.Payment
}

// MissingKeys runs the left-join resolution diagnostic over staging.
func MissingKeys(ctx context.Context, q db.Querier) (*MissingKeyCounts, error) {
	var m MissingKeyCounts
	err := q.QueryRow(ctx, `
        SELECT
            COUNT(*) FILTER (WHERE c.surrogate_key IS NULL),
            COUNT(*) FILTER (WHERE v.surrogate_key IS NULL),
            COUNT(*) FILTER (WHERE pl.surrogate_key IS NULL),
            COUNT(*) FILTER (WHERE dl.surrogate_key IS NULL),
            COUNT(*) FILTER (WHERE pm.surrogate_key IS NULL)
        FROM staging_bookings s
        LEFT JOIN customers c        ON c.natural_key  = s.customer_id
        LEFT JOIN vehicles v         ON v.natural_key  = s.vehicle_type
        LEFT JOIN locations pl       ON pl.natural_key = s.pickup_location
        LEFT JOIN locations dl       ON dl.natural_key = s.drop_location
        LEFT JOIN payment_methods pm ON pm.natural_key = s.payment_method
    `).Scan(&m.Customer, &m.Vehicle, &m.Pickup, &m.Drop, &m.Payment)
	if err != nil {
		return nil, fmt.Errorf("missing-keys query failed: %w", err)
	}
	return &m, nil
}

// OrphanCount counts fact rows whose surrogate keys do not join back to a
// dimension row. Referential integrity is enforced at write time, so any
// value other than zero is an invariant violation.
func OrphanCount(ctx context.Context, q db.Querier) (int64, error) {
	var n int64
	err := q.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM fact_bookings f
        LEFT JOIN customers c        ON c.surrogate_key  = f.customer_key
        LEFT JOIN vehicles v         ON v.surrogate_key  = f.vehicle_key
        LEFT JOIN locations pl       ON pl.surrogate_key = f.pickup_location_key
        LEFT JOIN locations dl       ON dl.surrogate_key = f.drop_location_key
        LEFT JOIN payment_methods pm ON pm.surrogate_key = f.payment_method_key
        WHERE c.surrogate_key IS NULL
           OR v.surrogate_key IS NULL
           OR pl.surrogate_key IS NULL
           OR dl.surrogate_key IS NULL
           OR pm.surrogate_key IS NULL
    `).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("orphan-count query failed: %w", err)
	}
	return n, nil
}

func joinReasons(reasons []string) string {
	return strings.Join(reasons, ",")
}
