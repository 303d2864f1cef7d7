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
	"strconv"
	"time"

	"github.com/urbanfleet/ridemart/internal/db"
)

// SummaryRow aggregates the whole fact table with no grouping.
type SummaryRow struct {
	TotalRides   int64
	TotalRevenue float64
	AvgFare      float64
	AvgDistance  float64
}

// Summary returns total rides, total revenue, average fare and average
// distance over all bookings.
func Summary(ctx context.Context, q db.Querier) (*SummaryRow, error) {
	var s SummaryRow
	err := q.QueryRow(ctx, `
        SELECT
            COUNT(*),
            ROUND(COALESCE(SUM(booking_value), 0), 2),
            ROUND(COALESCE(AVG(booking_value), 0), 2),
            ROUND(COALESCE(AVG(ride_distance), 0), 2)
        FROM fact_bookings
    `).Scan(&s.TotalRides, &s.TotalRevenue, &s.AvgFare, &s.AvgDistance)
	if err != nil {
		return nil, fmt.Errorf("summary query failed: %w", err)
	}
	return &s, nil
}

// CancellationRow reports cancellation volume and rate.
type CancellationRow struct {
	TotalRides  int64
	Cancelled   int64
	RatePercent float64
}

// Cancellations returns the cancelled booking count and the cancellation
// rate as a 0-100 percentage rounded to two decimals. An empty fact table
// reports a rate of 0.
func Cancellations(ctx context.Context, q db.Querier) (*CancellationRow, error) {
	var c CancellationRow
	err := q.QueryRow(ctx, `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE is_cancelled),
            COALESCE(ROUND(
                100.0 * (COUNT(*) FILTER (WHERE is_cancelled))::numeric
                    / NULLIF(COUNT(*), 0),
                2), 0)
        FROM fact_bookings
    `).Scan(&c.TotalRides, &c.Cancelled, &c.RatePercent)
	if err != nil {
		return nil, fmt.Errorf("cancellations query failed: %w", err)
	}
	return &c, nil
}

// LocationRides is one row of the pickup-location ranking.
type LocationRides struct {
	Location string
	Rides    int64
}

// TopPickupLocations ranks pickup locations by ride count descending,
// tie-broken by location name ascending so the ranking is deterministic.
func TopPickupLocations(ctx context.Context, q db.Querier, n int) ([]LocationRides, error) {
	rows, err := q.Query(ctx, `
        SELECT l.natural_key, COUNT(*) AS rides
        FROM fact_bookings f
        JOIN locations l ON l.surrogate_key = f.pickup_location_key
        GROUP BY l.natural_key
        ORDER BY rides DESC, l.natural_key ASC
        LIMIT $1
    `, n)
	if err != nil {
		return nil, fmt.Errorf("top pickup locations query failed: %w", err)
	}
	defer rows.Close()

	var out []LocationRides
	for rows.Next() {
		var r LocationRides
		if err := rows.Scan(&r.Location, &r.Rides); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// VehicleRevenue is one row of the per-vehicle-type revenue breakdown.
type VehicleRevenue struct {
	VehicleType string
	Rides       int64
	Revenue     float64
	AvgFare     float64
}

// RevenueByVehicle returns revenue and average fare per vehicle type,
// sorted by revenue descending.
func RevenueByVehicle(ctx context.Context, q db.Querier) ([]VehicleRevenue, error) {
	rows, err := q.Query(ctx, `
        SELECT
            v.natural_key,
            COUNT(*),
            ROUND(COALESCE(SUM(f.booking_value), 0), 2) AS revenue,
            ROUND(COALESCE(AVG(f.booking_value), 0), 2)
        FROM fact_bookings f
        JOIN vehicles v ON v.surrogate_key = f.vehicle_key
        GROUP BY v.natural_key
        ORDER BY revenue DESC, v.natural_key ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("revenue by vehicle query failed: %w", err)
	}
	defer rows.Close()

	var out []VehicleRevenue
	for rows.Next() {
		var r VehicleRevenue
		if err := rows.Scan(&r.VehicleType, &r.Rides, &r.Revenue, &r.AvgFare); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CustomerSpend is one row of the top-customers ranking.
type CustomerSpend struct {
	CustomerID string
	Rides      int64
	TotalSpend float64
}

// TopCustomers ranks customers by total booking value descending,
// tie-broken by customer id ascending.
func TopCustomers(ctx context.Context, q db.Querier, n int) ([]CustomerSpend, error) {
	rows, err := q.Query(ctx, `
        SELECT
            c.natural_key,
            COUNT(*),
            ROUND(COALESCE(SUM(f.booking_value), 0), 2) AS spend
        FROM fact_bookings f
        JOIN customers c ON c.surrogate_key = f.customer_key
        GROUP BY c.natural_key
        ORDER BY spend DESC, c.natural_key ASC
        LIMIT $1
    `, n)
	if err != nil {
		return nil, fmt.Errorf("top customers query failed: %w", err)
	}
	defer rows.Close()

	var out []CustomerSpend
	for rows.Next() {
		var r CustomerSpend
		if err := rows.Scan(&r.CustomerID, &r.Rides, &r.TotalSpend); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DailyTrendRow is one calendar-day bucket of the booking trend.
type DailyTrendRow struct {
	Day     time.Time
	Rides   int64
	Revenue float64
}

// DailyTrend returns ride count and revenue per calendar date, ascending.
func DailyTrend(ctx context.Context, q db.Querier) ([]DailyTrendRow, error) {
	rows, err := q.Query(ctx, `
        SELECT
            booking_datetime::date AS day,
            COUNT(*),
            ROUND(COALESCE(SUM(booking_value), 0), 2)
        FROM fact_bookings
        GROUP BY day
        ORDER BY day ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("daily trend query failed: %w", err)
	}
	defer rows.Close()

	var out []DailyTrendRow
	for rows.Next() {
		var r DailyTrendRow
		if err := rows.Scan(&r.Day, &r.Rides, &r.Revenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// HourlyTrendRow is one hour-of-day bucket of the booking trend.
type HourlyTrendRow struct {
	Hour    int
	Rides   int64
	Revenue float64
}

// HourlyTrend returns ride count and revenue per hour of day (0-23),
// ascending.
func HourlyTrend(ctx context.Context, q db.Querier) ([]HourlyTrendRow, error) {
	rows, err := q.Query(ctx, `
        SELECT
            EXTRACT(HOUR FROM booking_datetime)::int AS hour,
            COUNT(*),
            ROUND(COALESCE(SUM(booking_value), 0), 2)
        FROM fact_bookings
        GROUP BY hour
        ORDER BY hour ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("hourly trend query failed: %w", err)
	}
	defer rows.Close()

	var out []HourlyTrendRow
	for rows.Next() {
		var r HourlyTrendRow
		if err := rows.Scan(&r.Hour, &r.Rides, &r.Revenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PaymentRevenue is one row of the per-payment-method breakdown.
type PaymentRevenue struct {
	PaymentMethod string
	Rides         int64
	Revenue       float64
}

// RevenueByPayment returns revenue and ride count per payment method,
// sorted by revenue descending.
func RevenueByPayment(ctx context.Context, q db.Querier) ([]PaymentRevenue, error) {
	rows, err := q.Query(ctx, `
        SELECT
            p.natural_key,
            COUNT(*),
            ROUND(COALESCE(SUM(f.booking_value), 0), 2) AS revenue
        FROM fact_bookings f
        JOIN payment_methods p ON p.surrogate_key = f.payment_method_key
        GROUP BY p.natural_key
        ORDER BY revenue DESC, p.natural_key ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("revenue by payment query failed: %w", err)
	}
	defer rows.Close()

	var out []PaymentRevenue
	for rows.Next() {
		var r PaymentRevenue
		if err := rows.Scan(&r.PaymentMethod, &r.Rides, &r.Revenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// money formats a monetary or ratio value with two decimals.
func money(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func count(n int64) string {
	return strconv.FormatInt(n, 10)
}
