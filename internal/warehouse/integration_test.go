//-------------------------------------------------------------------------
//
// RideMart Booking Warehouse
//
// Copyright (c) 2025 - 2026, the RideMart authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// End-to-end pipeline tests against a throwaway database.
// Run with: go test -tags=integration ./internal/warehouse/...
// Requires PostgreSQL to be available.
// Set RIDEMART_TEST_CONN environment variable to override connection string.

package warehouse_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanfleet/ridemart/internal/db"
	"github.com/urbanfleet/ridemart/internal/reports"
	"github.com/urbanfleet/ridemart/internal/testutil"
	"github.com/urbanfleet/ridemart/internal/warehouse"
)

// stagingFixture is a small handmade dataset covering the loader's
// decision paths: three loadable rows (one a cancellation), one row per
// rejection reason, and one duplicate booking id.
var stagingFixture = [][]string{
	// booking_id, status, datetime, customer, vehicle, pickup, drop,
	// payment, value, distance, driver_rating, customer_rating, cancelled
	{"CNR00000001", "Completed", "2024-06-01 08:00:00", "CID1000001",
		"Go Sedan", "Rohini", "Saket", "UPI", "200.00", "10.0", "4.5", "4.0", "false"},
	{"CNR00000002", "Completed", "2024-06-01 09:30:00", "CID1000002",
		"Auto", "Rohini", "Dwarka", "Cash", "100.00", "5.0", "4.0", "5.0", "false"},
	{"CNR00000003", "Cancelled by Customer", "2024-06-02 08:15:00", "CID1000001",
		"Auto", "Saket", "Rohini", "UPI", "", "", "", "", "true"},
	// Rejected: empty pickup location.
	{"CNR00000004", "Completed", "2024-06-02 10:00:00", "CID1000001",
		"Auto", "", "Saket", "Cash", "50.00", "2.0", "", "", "false"},
	// Rejected: unparseable timestamp.
	{"CNR00000005", "Completed", "15/06/2024", "CID1000001",
		"Auto", "Rohini", "Saket", "Cash", "75.00", "3.0", "", "", "false"},
	// Rejected: no booking id.
	{"", "Completed", "2024-06-02 11:00:00", "CID1000002",
		"Auto", "Rohini", "Saket", "Cash", "60.00", "2.5", "", "", "false"},
	// Duplicate booking id with a different fare; the first insert wins.
	{"CNR00000001", "Completed", "2024-06-01 08:00:00", "CID1000001",
		"Go Sedan", "Rohini", "Saket", "UPI", "999.99", "10.0", "", "", "false"},
}

func setupWarehouse(t *testing.T) *pgxpool.Pool {
	t.Helper()

	baseConnStr := testutil.SkipIfNoPostgres(t)

	testConnStr := testutil.CreateTestDB(t, baseConnStr)
	dbName := testutil.GetDBNameFromConnStr(testConnStr)

	cleanup := testutil.NewTestCleanup(t, baseConnStr, dbName)
	t.Cleanup(cleanup.Cleanup)

	pool := testutil.ConnectTestDB(t, testConnStr)
	cleanup.SetPool(pool)

	ctx := context.Background()
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	for _, row := range stagingFixture {
		args := make([]any, len(row))
		for i, v := range row {
			if v == "" {
				args[i] = nil
			} else {
				args[i] = v
			}
		}
		_, err := pool.Exec(ctx, `
            INSERT INTO staging_bookings (
                booking_id, booking_status, booking_datetime, customer_id,
                vehicle_type, pickup_location, drop_location, payment_method,
                booking_value, ride_distance, driver_ratings, customer_rating,
                is_cancelled
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			args...)
		if err != nil {
			t.Fatalf("Failed to seed staging fixture: %v", err)
		}
	}

	return pool
}

func TestPipelineIntegration(t *testing.T) {
	pool := setupWarehouse(t)
	ctx := context.Background()

	stats, err := warehouse.Run(ctx, pool, warehouse.PipelineConfig{Workers: 4})
	if err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	// Dimension builds: distinct non-empty natural keys only, pickup and
	// drop pooled into one locations dimension.
	wantDims := map[string]int64{
		"customers":       2,
		"vehicles":        2,
		"locations":       3,
		"payment_methods": 2,
	}
	for _, d := range stats.Dimensions {
		if d.Inserted != wantDims[d.Name] {
			t.Errorf("dimension %s inserted %d rows, want %d", d.Name, d.Inserted, wantDims[d.Name])
		}
		if d.Total != wantDims[d.Name] {
			t.Errorf("dimension %s total %d rows, want %d", d.Name, d.Total, wantDims[d.Name])
		}
	}

	if stats.Load.RowsRead != 7 {
		t.Errorf("RowsRead = %d, want 7", stats.Load.RowsRead)
	}
	if stats.Load.Inserted != 3 {
		t.Errorf("Inserted = %d, want 3", stats.Load.Inserted)
	}
	if stats.Load.AlreadyPresent != 1 {
		t.Errorf("AlreadyPresent = %d, want 1 (duplicate booking id)", stats.Load.AlreadyPresent)
	}
	if stats.Load.Failed != 3 {
		t.Errorf("Failed = %d, want 3; failures: %+v", stats.Load.Failed, stats.Load.Failures)
	}

	// The run records its audit counters in metadata.
	inserted, err := db.GetMetadataValue(ctx, pool, "last_load_inserted")
	if err != nil {
		t.Fatalf("Failed to read load metadata: %v", err)
	}
	if inserted != "3" {
		t.Errorf("last_load_inserted = %q, want \"3\"", inserted)
	}
}

func TestPipelineIdempotent(t *testing.T) {
	pool := setupWarehouse(t)
	ctx := context.Background()

	if _, err := warehouse.Run(ctx, pool, warehouse.PipelineConfig{Workers: 4}); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	stats, err := warehouse.Run(ctx, pool, warehouse.PipelineConfig{Workers: 4})
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	for _, d := range stats.Dimensions {
		if d.Inserted != 0 {
			t.Errorf("dimension %s inserted %d rows on re-run, want 0", d.Name, d.Inserted)
		}
	}
	if stats.Load.Inserted != 0 {
		t.Errorf("Inserted = %d on re-run, want 0", stats.Load.Inserted)
	}
	if stats.Load.AlreadyPresent != 4 {
		t.Errorf("AlreadyPresent = %d on re-run, want 4", stats.Load.AlreadyPresent)
	}

	var facts int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM fact_bookings").Scan(&facts); err != nil {
		t.Fatalf("Failed to count facts: %v", err)
	}
	if facts != 3 {
		t.Errorf("fact_bookings has %d rows after re-run, want 3", facts)
	}
}

func TestReportsIntegration(t *testing.T) {
	pool := setupWarehouse(t)
	ctx := context.Background()

	if _, err := warehouse.Run(ctx, pool, warehouse.PipelineConfig{Workers: 4}); err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	s, err := reports.Summary(ctx, pool)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if s.TotalRides != 3 {
		t.Errorf("TotalRides = %d, want 3", s.TotalRides)
	}
	// The cancelled booking carries NULL measures, so revenue comes from
	// the two completed rides only.
	if s.TotalRevenue != 300.00 {
		t.Errorf("TotalRevenue = %v, want 300.00", s.TotalRevenue)
	}
	if s.AvgFare != 150.00 {
		t.Errorf("AvgFare = %v, want 150.00", s.AvgFare)
	}

	c, err := reports.Cancellations(ctx, pool)
	if err != nil {
		t.Fatalf("Cancellations failed: %v", err)
	}
	if c.Cancelled != 1 {
		t.Errorf("Cancelled = %d, want 1", c.Cancelled)
	}
	if c.RatePercent != 33.33 {
		t.Errorf("RatePercent = %v, want 33.33", c.RatePercent)
	}

	top, err := reports.TopPickupLocations(ctx, pool, 10)
	if err != nil {
		t.Fatalf("TopPickupLocations failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("TopPickupLocations returned %d rows, want 2", len(top))
	}
	if top[0].Location != "Rohini" || top[0].Rides != 2 {
		t.Errorf("top location = %s/%d, want Rohini/2", top[0].Location, top[0].Rides)
	}
	if top[1].Location != "Saket" || top[1].Rides != 1 {
		t.Errorf("second location = %s/%d, want Saket/1", top[1].Location, top[1].Rides)
	}

	limited, err := reports.TopPickupLocations(ctx, pool, 1)
	if err != nil {
		t.Fatalf("TopPickupLocations limited failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d rows", len(limited))
	}
}

func TestDiagnosticsIntegration(t *testing.T) {
	pool := setupWarehouse(t)
	ctx := context.Background()

	if _, err := warehouse.Run(ctx, pool, warehouse.PipelineConfig{Workers: 4}); err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	missing, err := reports.MissingKeys(ctx, pool)
	if err != nil {
		t.Fatalf("MissingKeys failed: %v", err)
	}
	if missing.Pickup != 1 {
		t.Errorf("missing pickup keys = %d, want 1", missing.Pickup)
	}
	if missing.Total() != 1 {
		t.Errorf("total missing keys = %d, want 1", missing.Total())
	}

	notLoaded, err := reports.RowsNotLoaded(ctx, pool)
	if err != nil {
		t.Fatalf("RowsNotLoaded failed: %v", err)
	}
	if len(notLoaded) != 3 {
		t.Fatalf("RowsNotLoaded returned %d rows, want 3: %+v", len(notLoaded), notLoaded)
	}

	wantReasons := map[string][]string{
		"":            {"booking_id"},
		"CNR00000004": {"pickup_location"},
		"CNR00000005": {"booking_datetime"},
	}
	for _, r := range notLoaded {
		want, ok := wantReasons[r.BookingID]
		if !ok {
			t.Errorf("unexpected not-loaded row %q", r.BookingID)
			continue
		}
		if len(r.Reasons) != len(want) || r.Reasons[0] != want[0] {
			t.Errorf("row %q reasons = %v, want %v", r.BookingID, r.Reasons, want)
		}
	}

	orphans, err := reports.OrphanCount(ctx, pool)
	if err != nil {
		t.Fatalf("OrphanCount failed: %v", err)
	}
	if orphans != 0 {
		t.Errorf("orphan facts = %d, want 0", orphans)
	}
}
