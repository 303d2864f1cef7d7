//-------------------------------------------------------------------------
//
// RideMart Booking Warehouse
//
// Copyright (c) 2025 - 2026, the RideMart authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse implements the star-schema ETL pipeline: staging
// table, dimension builders, natural-to-surrogate key resolution and the
// idempotent fact load.
package warehouse

import (
	"context"

	"github.com/urbanfleet/ridemart/internal/db"
)

// Schema SQL for the staging table, the four dimensions and the fact
// table. Staging measure columns are raw TEXT: the upstream cleaning step
// is outside this tool, so the loader parses and validates on the way in.
// Dimension surrogate keys are identity columns: assigned once, never
// reused, rows never deleted.
const createSchemaSQL = `
-- Staging: denormalized bookings as delivered by the upstream cleaner
CREATE TABLE IF NOT EXISTS staging_bookings (
    booking_id       TEXT,
    booking_status   TEXT,
    booking_datetime TEXT,
    customer_id      TEXT,
    vehicle_type     TEXT,
    pickup_location  TEXT,
    drop_location    TEXT,
    payment_method   TEXT,
    booking_value    TEXT,
    ride_distance    TEXT,
    driver_ratings   TEXT,
    customer_rating  TEXT,
    is_cancelled     TEXT
);

-- Dimensions: one row per distinct natural key, append-only
CREATE TABLE IF NOT EXISTS customers (
    surrogate_key BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    natural_key   TEXT NOT NULL UNIQUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS vehicles (
    surrogate_key BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    natural_key   TEXT NOT NULL UNIQUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- Locations is shared by pickup and drop roles; one namespace
CREATE TABLE IF NOT EXISTS locations (
    surrogate_key BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    natural_key   TEXT NOT NULL UNIQUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS payment_methods (
    surrogate_key BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    natural_key   TEXT NOT NULL UNIQUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- Fact: one immutable row per booking_id
CREATE TABLE IF NOT EXISTS fact_bookings (
    booking_id         TEXT PRIMARY KEY,
    status             TEXT NOT NULL,
    booking_datetime   TIMESTAMPTZ NOT NULL,
    customer_key       BIGINT NOT NULL REFERENCES customers(surrogate_key),
    vehicle_key        BIGINT NOT NULL REFERENCES vehicles(surrogate_key),
    pickup_location_key BIGINT NOT NULL REFERENCES locations(surrogate_key),
    drop_location_key  BIGINT NOT NULL REFERENCES locations(surrogate_key),
    payment_method_key BIGINT NOT NULL REFERENCES payment_methods(surrogate_key),
    booking_value      NUMERIC(12,2),
    ride_distance      NUMERIC(10,2),
    driver_rating      NUMERIC(3,1),
    customer_rating    NUMERIC(3,1),
    is_cancelled       BOOLEAN NOT NULL DEFAULT FALSE,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_fact_bookings_datetime ON fact_bookings(booking_datetime);
CREATE INDEX IF NOT EXISTS idx_fact_bookings_customer ON fact_bookings(customer_key);
CREATE INDEX IF NOT EXISTS idx_fact_bookings_vehicle ON fact_bookings(vehicle_key);
CREATE INDEX IF NOT EXISTS idx_fact_bookings_pickup ON fact_bookings(pickup_location_key);
CREATE INDEX IF NOT EXISTS idx_fact_bookings_drop ON fact_bookings(drop_location_key);
CREATE INDEX IF NOT EXISTS idx_fact_bookings_payment ON fact_bookings(payment_method_key);
CREATE INDEX IF NOT EXISTS idx_staging_bookings_id ON staging_bookings(booking_id);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS fact_bookings CASCADE;
DROP TABLE IF EXISTS customers CASCADE;
DROP TABLE IF EXISTS vehicles CASCADE;
DROP TABLE IF EXISTS locations CASCADE;
DROP TABLE IF EXISTS payment_methods CASCADE;
DROP TABLE IF EXISTS staging_bookings CASCADE;
`

// CreateSchema creates the staging, dimension and fact tables.
func CreateSchema(ctx context.Context, q db.Querier) error {
	_, err := q.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops all warehouse tables.
func DropSchema(ctx context.Context, q db.Querier) error {
	_, err := q.Exec(ctx, dropSchemaSQL)
	return err
}

// TruncateStaging clears the staging table ahead of a fresh seed.
func TruncateStaging(ctx context.Context, q db.Querier) error {
	_, err := q.Exec(ctx, `TRUNCATE staging_bookings`)
	return err
}
