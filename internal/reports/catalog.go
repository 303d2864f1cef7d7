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

	"github.com/urbanfleet/ridemart/internal/db"
)

// The catalog wraps the typed query functions into the registry so the
// CLI (and anything else consuming tabular output) can run reports by
// name. Dashboards wanting typed rows call the functions directly.

func init() {
	Register(Definition{
		Name:        "summary",
		Description: "Total rides, revenue, average fare and average distance",
		Kind:        "summary",
		Run: func(ctx context.Context, q db.Querier, _ Options) (*Result, error) {
			s, err := Summary(ctx, q)
			if err != nil {
				return nil, err
			}
			return &Result{
				Name:    "summary",
				Columns: []string{"total_rides", "total_revenue", "avg_fare", "avg_distance"},
				Rows: [][]string{{
					count(s.TotalRides), money(s.TotalRevenue),
					money(s.AvgFare), money(s.AvgDistance),
				}},
			}, nil
		},
	})

	Register(Definition{
		Name:        "cancellations",
		Description: "Cancelled booking count and cancellation rate percentage",
		Kind:        "summary",
		Run: func(ctx context.Context, q db.Querier, _ Options) (*Result, error) {
			c, err := Cancellations(ctx, q)
			if err != nil {
				return nil, err
			}
			return &Result{
				Name:    "cancellations",
				Columns: []string{"total_rides", "cancelled", "rate_percent"},
				Rows: [][]string{{
					count(c.TotalRides), count(c.Cancelled), money(c.RatePercent),
				}},
			}, nil
		},
	})

	Register(Definition{
		Name:        "top-pickup-locations",
		Description: "Pickup locations ranked by ride count",
		Kind:        "ranking",
		Run: func(ctx context.Context, q db.Querier, opts Options) (*Result, error) {
			locs, err := TopPickupLocations(ctx, q, opts.TopN)
			if err != nil {
				return nil, err
			}
			res := &Result{
				Name:    "top-pickup-locations",
				Columns: []string{"pickup_location", "rides"},
			}
			for _, l := range locs {
				res.Rows = append(res.Rows, []string{l.Location, count(l.Rides)})
			}
			return res, nil
		},
	})

	Register(Definition{
		Name:        "revenue-by-vehicle",
		Description: "Revenue and average fare per vehicle type",
		Kind:        "ranking",
		Run: func(ctx context.Context, q db.Querier, _ Options) (*Result, error) {
			rows, err := RevenueByVehicle(ctx, q)
			if err != nil {
				return nil, err
			}
			res := &Result{
				Name:    "revenue-by-vehicle",
				Columns: []string{"vehicle_type", "rides", "revenue", "avg_fare"},
			}
			for _, r := range rows {
				res.Rows = append(res.Rows, []string{
					r.VehicleType, count(r.Rides), money(r.Revenue), money(r.AvgFare),
				})
			}
			return res, nil
		},
	})

	Register(Definition{
		Name:        "top-customers",
		Description: "Customers ranked by total spend",
		Kind:        "ranking",
		Run: func(ctx context.Context, q db.Querier, opts Options) (*Result, error) {
			rows, err := TopCustomers(ctx, q, opts.TopN)
			if err != nil {
				return nil, err
			}
			res := &Result{
				Name:    "top-customers",
				Columns: []string{"customer_id", "rides", "total_spend"},
			}
			for _, r := range rows {
				res.Rows = append(res.Rows, []string{
					r.CustomerID, count(r.Rides), money(r.TotalSpend),
				})
			}
			return res, nil
		},
	})

	Register(Definition{
		Name:        "daily-trend",
		Description: "Ride count and revenue per calendar date",
		Kind:        "trend",
		Run: func(ctx context.Context, q db.Querier, _ Options) (*Result, error) {
			rows, err := DailyTrend(ctx, q)
			if err != nil {
				return nil, err
			}
			res := &Result{
				Name:    "daily-trend",
				Columns: []string{"day", "rides", "revenue"},
			}
			for _, r := range rows {
				res.Rows = append(res.Rows, []string{
					r.Day.Format("2006-01-02"), count(r.Rides), money(r.Revenue),
				})
			}
			return res, nil
		},
	})

	Register(Definition{
		Name:        "hourly-trend",
		Description: "Ride count and revenue per hour of day",
		Kind:        "trend",
		Run: func(ctx context.Context, q db.Querier, _ Options) (*Result, error) {
			rows, err := HourlyTrend(ctx, q)
			if err != nil {
				return nil, err
			}
			res := &Result{
				Name:    "hourly-trend",
				Columns: []string{"hour", "rides", "revenue"},
			}
			for _, r := range rows {
				res.Rows = append(res.Rows, []string{
					count(int64(r.Hour)), count(r.Rides), money(r.Revenue),
				})
			}
			return res, nil
		},
	})

	Register(Definition{
		Name:        "revenue-by-payment",
		Description: "Revenue and ride count per payment method",
		Kind:        "ranking",
		Run: func(ctx context.Context, q db.Querier, _ Options) (*Result, error) {
			rows, err := RevenueByPayment(ctx, q)
			if err != nil {
				return nil, err
			}
			res := &Result{
				Name:    "revenue-by-payment",
				Columns: []string{"payment_method", "rides", "revenue"},
			}
			for _, r := range rows {
				res.Rows = append(res.Rows, []string{
					r.PaymentMethod, count(r.Rides), money(r.Revenue),
				})
			}
			return res, nil
		},
	})

	Register(Definition{
		Name:        "rows-not-loaded",
		Description: "Staging rows excluded from the fact table and why",
		Kind:        "diagnostic",
		Run: func(ctx context.Context, q db.Querier, _ Options) (*Result, error) {
			rows, err := RowsNotLoaded(ctx, q)
			if err != nil {
				return nil, err
			}
			res := &Result{
				Name:    "rows-not-loaded",
				Columns: []string{"booking_id", "reasons"},
			}
			for _, r := range rows {
				res.Rows = append(res.Rows, []string{r.BookingID, joinReasons(r.Reasons)})
			}
			return res, nil
		},
	})

	Register(Definition{
		Name:        "missing-keys",
		Description: "Per-field unresolved foreign key counts over staging",
		Kind:        "diagnostic",
		Run: func(ctx context.Context, q db.Querier, _ Options) (*Result, error) {
			m, err := MissingKeys(ctx, q)
			if err != nil {
				return nil, err
			}
			return &Result{
				Name: "missing-keys",
				Columns: []string{
					"missing_customer", "missing_vehicle", "missing_pickup",
					"missing_drop", "missing_payment", "total",
				},
				Rows: [][]string{{
					count(m.Customer), count(m.Vehicle), count(m.Pickup),
					count(m.Drop), count(m.Payment), count(m.Total()),
				}},
			}, nil
		},
	})

	Register(Definition{
		Name:        "orphans",
		Description: "Fact rows with surrogate keys missing from a dimension (must be 0)",
		Kind:        "diagnostic",
		Run: func(ctx context.Context, q db.Querier, _ Options) (*Result, error) {
			n, err := OrphanCount(ctx, q)
			if err != nil {
				return nil, err
			}
			return &Result{
				Name:    "orphans",
				Columns: []string{"orphan_facts"},
				Rows:    [][]string{{count(n)}},
			}, nil
		},
	})
}
