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
	"time"

	"github.com/urbanfleet/ridemart/internal/db"
	"github.com/urbanfleet/ridemart/internal/logging"
)

// Field names used in load-failure diagnostics. They match the staging
// column names so failures read the same in reports and in the schema.
const (
	FieldBookingID      = "booking_id"
	FieldDatetime       = "booking_datetime"
	FieldCustomerID     = "customer_id"
	FieldVehicleType    = "vehicle_type"
	FieldPickupLocation = "pickup_location"
	FieldDropLocation   = "drop_location"
	FieldPaymentMethod  = "payment_method"
)

// KeySet holds the natural-to-surrogate dictionaries for all dimensions,
// built once per pipeline run after the dimension barrier. Lookups are
// exact and case-sensitive. Read-only after construction, so safe to
// share across loader workers.
type KeySet struct {
	Customers map[string]int64
	Vehicles  map[string]int64
	Locations map[string]int64
	Payments  map[string]int64
}

// LoadKeySet reads every dimension into memory.
func LoadKeySet(ctx context.Context, q db.Querier) (*KeySet, error) {
	ks := &KeySet{}

	for _, d := range []struct {
		table string
		dest  *map[string]int64
	}{
		{"customers", &ks.Customers},
		{"vehicles", &ks.Vehicles},
		{"locations", &ks.Locations},
		{"payment_methods", &ks.Payments},
	} {
		m, err := loadKeyMap(ctx, q, d.table)
		if err != nil {
			return nil, err
		}
		*d.dest = m
	}

	logging.Debug().
		Int("customers", len(ks.Customers)).
		Int("vehicles", len(ks.Vehicles)).
		Int("locations", len(ks.Locations)).
		Int("payment_methods", len(ks.Payments)).
		Msg("Loaded dimension key maps")

	return ks, nil
}

func loadKeyMap(ctx context.Context, q db.Querier, table string) (map[string]int64, error) {
	rows, err := q.Query(ctx, fmt.Sprintf("SELECT natural_key, surrogate_key FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read dimension %s: %w", table, err)
	}
	defer rows.Close()

	m := make(map[string]int64)
	for rows.Next() {
		var nk string
		var sk int64
		if err := rows.Scan(&nk, &sk); err != nil {
			return nil, fmt.Errorf("failed to scan dimension %s: %w", table, err)
		}
		m[nk] = sk
	}
	return m, rows.Err()
}

// ResolvedRow is a staging row after key resolution. Resolution is a left
// lookup: the row survives with MissingFields recording every identity or
// key field that could not be satisfied, so diagnostics can report it.
// Only rows with no missing fields are eligible for the fact load.
type ResolvedRow struct {
	Row      StagingRow
	When     time.Time
	Measures Measures

	CustomerKey      int64
	VehicleKey       int64
	PickupKey        int64
	DropKey          int64
	PaymentMethodKey int64

	MissingFields []string
}

// Loadable reports whether the row satisfies the fact loader's strict
// all-keys-present policy.
func (r *ResolvedRow) Loadable() bool {
	return len(r.MissingFields) == 0
}

// Resolve maps a staging row's natural keys to surrogate keys and parses
// its timestamp and measures. Empty natural keys and keys absent from the
// dictionaries both resolve as missing; the latter should not occur after
// the dimension build but is defended against.
func (ks *KeySet) Resolve(row StagingRow) ResolvedRow {
	r := ResolvedRow{Row: row, Measures: ParseMeasures(row)}

	if row.BookingID == "" {
		r.MissingFields = append(r.MissingFields, FieldBookingID)
	}

	when, ok := ParseDatetime(row.Datetime)
	if !ok {
		r.MissingFields = append(r.MissingFields, FieldDatetime)
	}
	r.When = when

	r.CustomerKey = ks.lookup(ks.Customers, row.CustomerID, FieldCustomerID, &r)
	r.VehicleKey = ks.lookup(ks.Vehicles, row.VehicleType, FieldVehicleType, &r)
	r.PickupKey = ks.lookup(ks.Locations, row.PickupLocation, FieldPickupLocation, &r)
	r.DropKey = ks.lookup(ks.Locations, row.DropLocation, FieldDropLocation, &r)
	r.PaymentMethodKey = ks.lookup(ks.Payments, row.PaymentMethod, FieldPaymentMethod, &r)

	return r
}

func (ks *KeySet) lookup(m map[string]int64, natural, field string, r *ResolvedRow) int64 {
	if natural == "" {
		r.MissingFields = append(r.MissingFields, field)
		return 0
	}
	sk, ok := m[natural]
	if !ok {
		r.MissingFields = append(r.MissingFields, field)
		return 0
	}
	return sk
}
